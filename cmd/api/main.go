package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-suggester/internal/api"
	"recipe-suggester/internal/core/cache"
	"recipe-suggester/internal/core/corpus"
	"recipe-suggester/internal/core/index"
	"recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/core/watcher"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// fileLoader 以本機檔案為來源的 loader
type fileLoader interface {
	Path() string
}

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("env", cfg.App.Env),
		zap.String("corpus_source", cfg.Corpus.Source),
		zap.String("cache_driver", cfg.Cache.Driver),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 建立資料來源與索引，讀取失敗直接結束
	loader, err := corpus.NewLoader(cfg.Corpus)
	if err != nil {
		common.LogFatal("Invalid corpus configuration", zap.Error(err))
	}
	holder := index.NewHolder()
	reloader := recipe.NewReloader(loader, holder)
	if _, err := reloader.ReloadFrom(ctx, recipe.TriggerStartup); err != nil {
		common.LogFatal("Failed to load recipe corpus",
			zap.String("source", loader.Source()),
			zap.Error(err),
		)
	}

	// 初始化快取
	resultCache, err := cache.New(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if resultCache != nil {
		defer resultCache.Close()
	}

	suggestionSvc := recipe.NewSuggestionService(holder, resultCache, cfg.Suggest)

	// 檔案來源可選擇監看變更
	if fl, ok := loader.(fileLoader); ok && cfg.Corpus.Watch {
		w, err := watcher.New(fl.Path(), cfg.Corpus.WatchDebounce, func(ctx context.Context) {
			// 失敗時已記錄，沿用舊索引
			_, _ = reloader.ReloadFrom(ctx, recipe.TriggerWatch)
		})
		if err != nil {
			common.LogFatal("Failed to create corpus watcher", zap.Error(err))
		}
		if err := w.Start(ctx); err != nil {
			common.LogFatal("Failed to start corpus watcher", zap.Error(err))
		}
		defer w.Stop()
	} else if cfg.Corpus.Watch {
		common.LogWarn("Corpus watch ignored: source is not a local file",
			zap.String("source", loader.Source()),
		)
	}

	// 設置路由
	router, err := api.SetupRouter(cfg, api.Services{
		Suggestion: suggestionSvc,
		Reloader:   reloader,
		Holder:     holder,
		Cache:      resultCache,
	})
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")
	stop()

	// 設置關閉超時
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		return
	}

	common.LogInfo("Server exited")
}
