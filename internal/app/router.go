package app

import (
	"learno_backend/docs"
	"learno_backend/internal/config"
	"learno_backend/internal/middleware"
	"learno_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())
	router.GET("/health", c.health.HealthCheck)

	api := router.Group("/api")
	api.Use(middleware.ConfigMiddleware(a.Config))
	{
		api.GET("/health", c.health.HealthCheck)

		// 1. 课程接口
		a.registerCourseRoutes(api, c, cfg)

		// 2. 学习向导
		a.registerLearnRoutes(api, c)
	}
}

func (a *App) registerCourseRoutes(api *gin.RouterGroup, c *controllers, cfg *config.Config) {
	courses := api.Group("/courses")
	if cfg.JWT.ProtectCourses {
		courses.Use(middleware.AuthMiddleware(), middleware.OwnerMiddleware())
	}
	{
		courses.POST("/save-course", c.course.SaveCourse)
		courses.GET("/get-courses/:username", c.course.GetCourses)
		courses.GET("/get-course/:username/:courseName", c.course.GetCourse)
		courses.DELETE("/delete-course/:username/:courseName", c.course.DeleteCourse)
		courses.GET("/export/:username/:courseName", c.course.ExportCourse)
	}
}

func (a *App) registerLearnRoutes(api *gin.RouterGroup, c *controllers) {
	learn := api.Group("/learn")
	learn.Use(middleware.TryAuthMiddleware())
	{
		learn.POST("/sessions", c.learn.CreateSession)
		learn.GET("/sessions/:id", c.learn.GetSession)
		learn.DELETE("/sessions/:id", c.learn.DeleteSession)
		learn.PUT("/sessions/:id/topic", c.learn.SetTopic)
		learn.PUT("/sessions/:id/skill-level", c.learn.SetSkillLevel)
		learn.POST("/sessions/:id/answers", c.learn.SubmitAnswers)
		learn.GET("/sessions/:id/results", c.learn.Results)
		learn.POST("/sessions/:id/roadmap/regenerate", c.learn.RegenerateRoadmap)
		learn.POST("/sessions/:id/save", c.learn.Save)
		learn.POST("/sessions/:id/reset", c.learn.Reset)
	}
}
