package service

import (
	"context"
	"fmt"

	"learno_backend/internal/model"
	"learno_backend/internal/normalize"
	"learno_backend/pkg/monitoring"
)

type QuizService struct {
	ai            *AIService
	questionCount int
}

func NewQuizService(ai *AIService, questionCount int) *QuizService {
	if questionCount < 1 {
		questionCount = 10
	}
	return &QuizService{ai: ai, questionCount: questionCount}
}

// Generate asks the model for a quiz and normalizes it. Any failure is fatal
// for the caller's action; no partial quiz is returned.
func (s *QuizService) Generate(ctx context.Context, topic model.Topic, level model.SkillLevel) (*normalize.QuestionSet, error) {
	raw, err := s.ai.Generate(ctx, "quiz", QuizPrompt(topic.Name, level, s.questionCount))
	if err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	set, err := normalize.Questions(raw)
	if err != nil {
		monitoring.AIGenerations.WithLabelValues("quiz", "parse_error").Inc()
		return nil, err
	}
	if n := len(set.Warnings); n > 0 {
		monitoring.AnswerKeyFallbacks.Add(float64(n))
	}
	return set, nil
}
