package api

import (
	"time"

	"cooksy/internal/api/handlers/chat"
	"cooksy/internal/api/handlers/health"
	recipeHandler "cooksy/internal/api/handlers/recipe"
	"cooksy/internal/api/middleware"
	"cooksy/internal/core/assistant"
	"cooksy/internal/infrastructure/config"
	"cooksy/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由；回傳的 stop 用於關閉背景清理
func SetupRouter(cfg *config.Config, svc *assistant.Service) (*gin.Engine, func()) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	// 健康檢查路由
	healthHandler := health.NewHandler(svc)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		chatHandler := chat.NewHandler(svc)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", chatHandler.CreateSession)
			sessions.DELETE("/:id", chatHandler.DeleteSession)
			sessions.GET("/:id/messages", chatHandler.ListMessages)
			sessions.POST("/:id/messages", dedup.Middleware(), chatHandler.PostMessage)
			sessions.GET("/:id/messages/:index/download", chatHandler.Download)
		}

		res := svc.Resources()
		recipes := recipeHandler.NewHandler(res.Index, cfg.Corpus.MinimalistMax)
		api.POST("/recipes/search", recipes.Search)
		api.GET("/substitutions", recipes.Substitutions)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, dedup.Stop
}
