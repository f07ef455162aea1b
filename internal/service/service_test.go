package service

import (
	"context"
	"testing"
	"time"

	"learno_backend/internal/config"
	"learno_backend/internal/llm"
	"learno_backend/internal/repository"
	"learno_backend/internal/wizard"
	"learno_backend/pkg/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const quizJSON = "```json\n" + `[
  {"id": 1, "text": "What does len return?", "options": ["Length", "Capacity"], "correctAnswer": "Length"},
  {"id": 2, "text": "Which keyword starts a goroutine?", "options": ["go", "async"], "correctAnswer": "go"}
]` + "\n```"

const roadmapJSON = `Here is your path:
[
  {"id": "syntax", "title": "Syntax", "description": "Basics", "duration": "1 week", "prerequisites": []},
  {"id": "concurrency", "title": "Concurrency", "description": "Goroutines", "duration": "2 weeks", "prerequisites": ["syntax", "missing"]}
]`

func testAIConfig() config.AIConfig {
	return config.AIConfig{Provider: "mock", Timeout: time.Second, MaxTokens: 1024}
}

func newCourseService(t *testing.T) *CourseService {
	t.Helper()
	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)
	storage := NewStorageService(&config.StorageConfig{Type: "local", LocalPath: t.TempDir()})
	return NewCourseService(repository.NewCourseRepository(db), storage)
}

type learnFixture struct {
	mock    *llm.MockProvider
	learn   *LearnService
	courses *CourseService
}

func newLearnFixture(t *testing.T, provider llm.Provider, quizPages int) *learnFixture {
	t.Helper()
	mock, _ := provider.(*llm.MockProvider)
	ai := NewAIService(provider, testAIConfig())
	courses := newCourseService(t)
	learn := NewLearnService(
		repository.NewMemorySessionRepository(time.Hour),
		NewQuizService(ai, 2),
		NewRoadmapService(ai, 3),
		courses,
		wizard.New(quizPages),
	)
	return &learnFixture{mock: mock, learn: learn, courses: courses}
}

// providerFunc adapts a function to llm.Provider.
type providerFunc func(ctx context.Context, req llm.Request) (*llm.Response, error)

func (f providerFunc) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return f(ctx, req)
}

func (f providerFunc) ModelID() string { return "func" }
