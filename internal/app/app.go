package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"learno_backend/internal/config"
	"learno_backend/internal/controller"
	"learno_backend/internal/llm"
	"learno_backend/internal/repository"
	"learno_backend/internal/service"
	"learno_backend/internal/wizard"
	"learno_backend/pkg/configwatcher"
	"learno_backend/pkg/database"
	"learno_backend/pkg/logger"
	"learno_backend/pkg/monitoring"
	"learno_backend/pkg/security"
	"learno_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type App struct {
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Provider llm.Provider

	config     atomic.Pointer[config.Config]
	configFile string
	services   *services
	tracer     *sdktrace.TracerProvider
	sweeper    *repository.MemorySessionRepository

	callbackMu      sync.Mutex
	configCallbacks []func(*config.Config)
}

// Options overrides infrastructure that NewApp would otherwise build from config.
type Options struct {
	DB       *gorm.DB
	Provider llm.Provider
	// ConfigFile enables hot reload when set.
	ConfigFile string
}

type repositories struct {
	course   *repository.CourseRepository
	sessions repository.SessionRepository
}

type services struct {
	ai      *service.AIService
	storage *service.StorageService
	course  *service.CourseService
	quiz    *service.QuizService
	roadmap *service.RoadmapService
	learn   *service.LearnService
}

type controllers struct {
	course *controller.CourseController
	learn  *controller.LearnController
	health *controller.HealthController
}

// Config returns the live configuration.
func (a *App) Config() *config.Config {
	return a.config.Load()
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.callbackMu.Lock()
	defer a.callbackMu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.config.Store(cfg)

	a.callbackMu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.callbackMu.Unlock()

	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	repos := &repositories{course: repository.NewCourseRepository(db)}
	if rdb != nil {
		repos.sessions = repository.NewRedisSessionRepository(rdb, cfg.Session.TTL)
	} else {
		repos.sessions = repository.NewMemorySessionRepository(cfg.Session.TTL)
	}
	return repos
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.ai = service.NewAIService(a.Provider, cfg.AI)
	s.storage = service.NewStorageService(&cfg.Storage)
	s.course = service.NewCourseService(repos.course, s.storage)
	s.quiz = service.NewQuizService(s.ai, cfg.Quiz.QuestionCount)
	s.roadmap = service.NewRoadmapService(s.ai, cfg.Wizard.RowWidth)
	s.learn = service.NewLearnService(repos.sessions, s.quiz, s.roadmap, s.course, wizard.New(cfg.Wizard.QuizPages))

	return s
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		course: controller.NewCourseController(s.course),
		learn:  controller.NewLearnController(s.learn),
		health: controller.NewHealthController(a.DB, a.Redis, a.Provider),
	}
}

// setupMiddlewares 的 ctx 控制限流器清理协程的生命周期
func (a *App) setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	app := &App{configFile: opts.ConfigFile, DB: opts.DB, Provider: opts.Provider}
	app.config.Store(cfg)

	var err error
	if app.DB == nil {
		app.DB, err = database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			return nil, fmt.Errorf("initialize database: %w", err)
		}
	}

	if cfg.Session.Store == "redis" {
		app.Redis, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("initialize redis: %w", err)
		}
	}

	if app.Provider == nil {
		app.Provider, err = llm.NewProvider(ctx, cfg.AI)
		if err != nil {
			return nil, err
		}
	}
	logger.Log.Info("AI provider ready",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", app.Provider.ModelID()))

	if cfg.Tracing.Enabled {
		app.tracer, err = tracing.InitTracer(ctx, "learno-backend", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			return nil, fmt.Errorf("initialize tracing: %w", err)
		}
	}

	repos := app.initRepositories(app.DB, app.Redis, cfg)
	app.services = app.initServices(repos, cfg)
	controllers := app.initControllers(app.services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	app.Router = router

	app.setupMiddlewares(ctx, router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetLevel(cfg.Server.Mode)
		app.services.ai.UpdateConfig(cfg.AI)
		logger.Log.Info("Applied reloaded settings",
			zap.Duration("aiTimeout", cfg.AI.Timeout),
			zap.String("mode", cfg.Server.Mode))
	})

	if memory, ok := repos.sessions.(*repository.MemorySessionRepository); ok {
		app.sweeper = memory
	}

	return app, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	cfg := a.Config()
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: a.Router,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Log.Info("Server running", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Log.Info("Shutting down server...")

		// 关闭服务（5秒超时）
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		if a.tracer != nil {
			if err := a.tracer.Shutdown(shutdownCtx); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		}
		return nil
	})

	if a.configFile != "" {
		g.Go(func() error {
			// 热更新失败不影响服务
			if err := configwatcher.WatchConfig(ctx, a.configFile, a.applyConfig); err != nil {
				logger.Log.Warn("Config watcher stopped", zap.Error(err))
			}
			return nil
		})
	}

	if a.sweeper != nil {
		g.Go(func() error {
			a.sweepSessions(ctx, time.Minute)
			return nil
		})
	}

	err := g.Wait()
	logger.Log.Info("Server exiting")
	return err
}

// sweepSessions drops expired in-memory sessions until ctx is done.
func (a *App) sweepSessions(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.sweeper.Sweep(); n > 0 {
				logger.Log.Debug("Expired learn sessions removed", zap.Int("count", n))
			}
		}
	}
}
