package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/midi-parser/internal/api/middleware"
)

// RegisterParseRoutes 注册解析路由
func RegisterParseRoutes(
	r *gin.Engine,
	handler *ParseHandler,
	authCfg middleware.AuthConfig,
	limiter *middleware.RateLimiter,
	logger *zap.Logger,
) {
	if r == nil || handler == nil {
		return
	}

	api := r.Group("/api")
	api.Use(middleware.CORS())
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}
	api.Use(middleware.RateLimit(limiter))

	api.POST("/parse", handler.ParseOnce)

	api.POST("/sessions", handler.CreateSession)
	api.POST("/sessions/:id/parse", handler.ParseSession)
	api.GET("/sessions/:id/buffer", handler.GetBuffer)
	api.DELETE("/sessions/:id/buffer", handler.ClearBuffer)
	api.DELETE("/sessions/:id", handler.DeleteSession)

	logger.Info("parse routes registered", zap.Int("endpoints", 6))
}
