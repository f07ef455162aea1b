package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"learno_backend/internal/config"
	"learno_backend/internal/llm"
	"learno_backend/internal/model"
)

// ErrGenerationTimeout is returned when the model does not answer within ai.timeout.
var ErrGenerationTimeout = errors.New("AI generation timed out")

type AIService struct {
	provider llm.Provider

	mu        sync.RWMutex
	timeout   time.Duration
	maxTokens int
}

func NewAIService(provider llm.Provider, cfg config.AIConfig) *AIService {
	return &AIService{
		provider:  provider,
		timeout:   cfg.Timeout,
		maxTokens: cfg.MaxTokens,
	}
}

// UpdateConfig applies hot-reloadable settings.
func (s *AIService) UpdateConfig(cfg config.AIConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = cfg.Timeout
	s.maxTokens = cfg.MaxTokens
}

func (s *AIService) settings() (time.Duration, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeout, s.maxTokens
}

// Generate sends a single prompt and returns the raw text. purpose labels
// logs, metrics and spans.
func (s *AIService) Generate(ctx context.Context, purpose, prompt string) (string, error) {
	timeout, maxTokens := s.settings()
	ctx = llm.WithPurpose(ctx, purpose)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := s.provider.Generate(ctx, llm.UserPrompt(prompt, maxTokens))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("%w after %s", ErrGenerationTimeout, timeout)
		}
		return "", err
	}
	if resp.Text == "" {
		return "", &llm.ErrInvalidResponse{Err: errors.New("no response received from AI model")}
	}
	return resp.Text, nil
}

func QuizPrompt(topic string, level model.SkillLevel, count int) string {
	return fmt.Sprintf(`Generate a quiz of %d questions for a topic %q suitable for a %q level.
Instruction to be followed: no punctuation should be added in the options.

IMPORTANT: Return ONLY a valid JSON array in this exact format, with no additional text, explanations, or markdown formatting:
[
  {
    "id": "1",
    "text": "Question text here",
    "options": ["Option 1", "Option 2", "Option 3", "Option 4"],
    "correctAnswer": "Correct option"
  }
]`, count, topic, string(level))
}

func RoadmapPrompt(topic string, level model.SkillLevel, percentage int) string {
	return fmt.Sprintf(`Create a learning path for %s at %s level. The user scored %d%% on the assessment. Return a JSON array of learning milestones. Each milestone should have these properties:
{
  "id": "unique-string",
  "title": "short title",
  "description": "brief description",
  "duration": "estimated time",
  "prerequisites": ["array-of-previous-milestone-ids"]
}`, topic, string(level), percentage)
}
