package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learno_backend/internal/config"
	"learno_backend/internal/llm"
	"learno_backend/internal/model"
	"learno_backend/internal/normalize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIService_Generate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "hello"})
	svc := NewAIService(mock, testAIConfig())

	text, err := svc.Generate(context.Background(), "quiz", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	require.Len(t, mock.Calls, 1)
	assert.Equal(t, 1024, mock.Calls[0].MaxTokens)
}

func TestAIService_EmptyResponse(t *testing.T) {
	svc := NewAIService(llm.NewMockProvider(llm.MockResponse{Text: ""}), testAIConfig())

	_, err := svc.Generate(context.Background(), "quiz", "prompt")
	var invalid *llm.ErrInvalidResponse
	assert.ErrorAs(t, err, &invalid)
}

func TestAIService_Timeout(t *testing.T) {
	slow := providerFunc(func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	cfg := testAIConfig()
	cfg.Timeout = 20 * time.Millisecond
	svc := NewAIService(slow, cfg)

	_, err := svc.Generate(context.Background(), "quiz", "prompt")
	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestAIService_UpdateConfig(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: "ok"})
	svc := NewAIService(mock, testAIConfig())

	svc.UpdateConfig(config.AIConfig{Timeout: time.Minute, MaxTokens: 99})
	_, err := svc.Generate(context.Background(), "quiz", "prompt")
	require.NoError(t, err)
	assert.Equal(t, 99, mock.Calls[0].MaxTokens)
}

func TestQuizPrompt(t *testing.T) {
	prompt := QuizPrompt("Rust", model.Intermediate, 10)
	assert.Contains(t, prompt, `Generate a quiz of 10 questions for a topic "Rust" suitable for a "intermediate" level.`)
	assert.Contains(t, prompt, "Return ONLY a valid JSON array")
}

func TestQuizService_Generate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: quizJSON})
	svc := NewQuizService(NewAIService(mock, testAIConfig()), 2)

	set, err := svc.Generate(context.Background(), model.Topic{ID: "go", Name: "Go"}, model.Beginner)
	require.NoError(t, err)
	require.Len(t, set.Questions, 2)
	assert.Equal(t, "1", set.Questions[0].ID)
	assert.Equal(t, 0, set.Questions[0].CorrectAnswer)
	assert.Empty(t, set.Warnings)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Generate a quiz of 2 questions")
}

func TestQuizService_ParseErrorIsFatal(t *testing.T) {
	svc := NewQuizService(NewAIService(llm.NewMockProvider(llm.MockResponse{Text: "no quiz today"}), testAIConfig()), 2)

	set, err := svc.Generate(context.Background(), model.Topic{Name: "Go"}, model.Beginner)
	assert.Nil(t, set)
	var perr *normalize.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, normalize.StageExtract, perr.Stage)
}

func TestQuizService_WarnsOnUnknownAnswer(t *testing.T) {
	raw := `[{"id":"1","text":"Pick","options":["a","b"],"correctAnswer":"c"}]`
	svc := NewQuizService(NewAIService(llm.NewMockProvider(llm.MockResponse{Text: raw}), testAIConfig()), 1)

	set, err := svc.Generate(context.Background(), model.Topic{Name: "Go"}, model.Beginner)
	require.NoError(t, err)
	assert.Equal(t, 0, set.Questions[0].CorrectAnswer)
	require.Len(t, set.Warnings, 1)
	assert.Equal(t, normalize.Warning{QuestionID: "1", Given: "c"}, set.Warnings[0])
}
