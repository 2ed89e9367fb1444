// Package router 组装 HTTP 路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agent-writer-api/internal/config"
	redisinfra "agent-writer-api/internal/infrastructure/persistence/redis"
	"agent-writer-api/internal/interfaces/http/handler"
	"agent-writer-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health  *handler.HealthHandler
	Chat    *handler.ChatHandler
	Content *handler.ContentHandler
}

// New 构建 gin 引擎并注册全部路由
func New(cfg *config.Config, handlers *Handlers, limiter *redisinfra.RateLimiter) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Trace(cfg.App.Name))
	engine.Use(middleware.TraceContext())
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: cfg.Security.CORS.AllowedHeaders,
	}))

	// 系统端点不限流
	engine.GET("/health", handlers.Health.Health)
	engine.GET("/ready", handlers.Health.Ready)
	engine.GET("/live", handlers.Health.Live)
	if cfg.Observability.Metrics.Enabled {
		path := cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	v1 := engine.Group("/v1")
	v1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Enabled:           cfg.Security.RateLimit.Enabled,
		RequestsPerSecond: cfg.Security.RateLimit.RequestsPerSecond,
		Burst:             cfg.Security.RateLimit.Burst,
	}, limiter))

	chat := v1.Group("/chat")
	{
		chat.POST("/route", handlers.Chat.Route)
		chat.POST("/route/stream", handlers.Chat.RouteStream)
	}

	v1.GET("/plots", handlers.Content.ListPlots)
	v1.GET("/authors", handlers.Content.ListAuthors)
	v1.GET("/worlds", handlers.Content.ListWorlds)
	v1.GET("/characters", handlers.Content.ListCharacters)
	v1.GET("/improvements/:id", handlers.Content.GetImprovement)
	v1.GET("/content/search", handlers.Content.SearchContent)

	return engine
}
