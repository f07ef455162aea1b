package middleware

import (
	"strings"

	"learno_backend/internal/config"
	"learno_backend/internal/util"
	"learno_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const ContextConfigKey = "config"

// ConfigMiddleware exposes the live config to handlers. The getter lets
// hot-reloaded values take effect without rebuilding the router.
func ConfigMiddleware(get func() *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextConfigKey, get())
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	return tokenString
}

// TryAuthMiddleware attaches claims when a valid token is present and never
// rejects; the wizard decides what an anonymous user may see.
func TryAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			cfg := c.MustGet(ContextConfigKey).(*config.Config)
			claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
			if err != nil {
				logger.Log.Debug("Ignoring invalid token", zap.Error(err))
			} else {
				c.Set(util.ContextUserKey, claims)
			}
		}
		c.Next()
	}
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		cfg := c.MustGet(ContextConfigKey).(*config.Config)
		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		c.Set(util.ContextUserKey, claims)
		c.Next()
	}
}

// OwnerMiddleware rejects requests whose :username does not match the token.
func OwnerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := util.GetUserFromContext(c)
		if user == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		if name := c.Param("username"); name != "" && name != user.Username {
			util.Forbidden(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
