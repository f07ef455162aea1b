package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"learno_backend/internal/config"
	"learno_backend/internal/llm"
	"learno_backend/internal/middleware"
	"learno_backend/internal/repository"
	"learno_backend/internal/service"
	"learno_backend/internal/util"
	"learno_backend/internal/wizard"
	"learno_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-test-secret-test-secret"

type testServer struct {
	router    *gin.Engine
	mock      *llm.MockProvider
	provider  *gatedProvider
	cfg       *config.Config
	courseCtl *CourseController
}

// gatedProvider serves the mock's queue but lets a test hold a call in flight.
type gatedProvider struct {
	*llm.MockProvider

	mu   sync.Mutex
	gate func()
}

func (p *gatedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	gate := p.gate
	p.mu.Unlock()
	if gate != nil {
		gate()
	}
	return p.MockProvider.Generate(ctx, req)
}

func (p *gatedProvider) hold(gate func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate = gate
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory(uuid.NewString())
	require.NoError(t, err)

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: testSecret, SignInURL: "/sign-in"},
		Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		AI:      config.AIConfig{Provider: "mock", Timeout: time.Second, MaxTokens: 512},
	}

	mock := llm.NewMockProvider()
	provider := &gatedProvider{MockProvider: mock}
	ai := service.NewAIService(provider, cfg.AI)
	courses := service.NewCourseService(repository.NewCourseRepository(db), service.NewStorageService(&cfg.Storage))
	learn := service.NewLearnService(
		repository.NewMemorySessionRepository(time.Hour),
		service.NewQuizService(ai, 2),
		service.NewRoadmapService(ai, 3),
		courses,
		wizard.New(1),
	)

	courseCtl := NewCourseController(courses)
	learnCtl := NewLearnController(learn)
	healthCtl := NewHealthController(db, nil, mock)

	router := gin.New()
	router.GET("/health", healthCtl.HealthCheck)
	api := router.Group("/api", middleware.ConfigMiddleware(func() *config.Config { return cfg }))

	c := api.Group("/courses")
	c.POST("/save-course", courseCtl.SaveCourse)
	c.GET("/get-courses/:username", courseCtl.GetCourses)
	c.GET("/get-course/:username/:courseName", courseCtl.GetCourse)
	c.DELETE("/delete-course/:username/:courseName", courseCtl.DeleteCourse)
	c.GET("/export/:username/:courseName", courseCtl.ExportCourse)

	l := api.Group("/learn", middleware.TryAuthMiddleware())
	l.POST("/sessions", learnCtl.CreateSession)
	l.GET("/sessions/:id", learnCtl.GetSession)
	l.DELETE("/sessions/:id", learnCtl.DeleteSession)
	l.PUT("/sessions/:id/topic", learnCtl.SetTopic)
	l.PUT("/sessions/:id/skill-level", learnCtl.SetSkillLevel)
	l.POST("/sessions/:id/answers", learnCtl.SubmitAnswers)
	l.GET("/sessions/:id/results", learnCtl.Results)
	l.POST("/sessions/:id/roadmap/regenerate", learnCtl.RegenerateRoadmap)
	l.POST("/sessions/:id/save", learnCtl.Save)
	l.POST("/sessions/:id/reset", learnCtl.Reset)

	return &testServer{router: router, mock: mock, provider: provider, cfg: cfg, courseCtl: courseCtl}
}

func (s *testServer) token(t *testing.T, username string) string {
	t.Helper()
	token, err := util.GenerateJWT(username, username+"@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// envelope is util.Response with a typed payload.
type envelope[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}
