package controller

import (
	"context"
	"net/http"
	"time"

	"learno_backend/internal/llm"
	"learno_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Provider llm.Provider
}

func NewHealthController(db *gorm.DB, rdb *redis.Client, provider llm.Provider) *HealthController {
	return &HealthController{DB: db, Redis: rdb, Provider: provider}
}

// @Summary 健康检查
// @Description 检查数据库、会话缓存与AI模型配置
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	// 检查数据库连接
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(pingCtx); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	components := gin.H{"database": "up", "sessions": "memory"}
	if c.Redis != nil {
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Session store unavailable")
			return
		}
		components["sessions"] = "redis"
	}
	if c.Provider != nil {
		components["model"] = c.Provider.ModelID()
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
