package api

import (
	"fmt"
	"time"

	"recipe-suggester/internal/api/handlers/admin"
	"recipe-suggester/internal/api/handlers/health"
	recipeHandler "recipe-suggester/internal/api/handlers/recipe"
	"recipe-suggester/internal/api/middleware"
	"recipe-suggester/internal/core/cache"
	"recipe-suggester/internal/core/index"
	recipeService "recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/metrics"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Services 路由需要的服務
type Services struct {
	Suggestion *recipeService.SuggestionService
	Reloader   *recipeService.Reloader
	Holder     *index.Holder
	Cache      cache.Cache // 可為 nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, svc Services) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if svc.Suggestion == nil || svc.Reloader == nil || svc.Holder == nil {
		common.LogError("Failed to initialize router: service missing",
			zap.Bool("suggestion_service_initialized", svc.Suggestion != nil),
			zap.Bool("reloader_initialized", svc.Reloader != nil),
			zap.Bool("holder_initialized", svc.Holder != nil),
		)
		return nil, fmt.Errorf("failed to initialize router: service missing")
	}

	// 設置 gin 模式
	if !cfg.App.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	if cfg.Metrics.Enabled {
		router.Use(metrics.Middleware())
	}

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// 健康檢查路由
	checker := health.NewChecker(cfg, svc.Holder, svc.Cache)
	router.GET("/health", checker.HealthCheck)
	router.GET("/ready", checker.ReadinessCheck)
	router.GET("/live", checker.LivenessCheck)

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		handler := recipeHandler.NewHandler(svc.Suggestion, svc.Holder, cfg.App.Debug)

		recipeGroup := api.Group("/recipe")
		{
			// 依食材推薦食譜
			recipeGroup.GET("/suggest", handler.HandleSuggest)
			recipeGroup.POST("/suggest", handler.HandleSuggest)

			// 食譜清單
			recipeGroup.GET("/recipes", handler.HandleListRecipes)
		}

		adminGroup := api.Group("/admin")
		{
			adminGroup.POST("/reload", admin.HandleReload(svc.Reloader, cfg.App.Debug))
		}
	}

	router.NoRoute(func(c *gin.Context) {
		common.WriteError(c, common.ErrNotFound, cfg.App.Debug)
	})

	common.LogInfo("Router setup completed successfully",
		zap.Bool("cache_enabled", svc.Cache != nil),
		zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
