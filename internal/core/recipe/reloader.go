package recipe

import (
	"context"
	"sync"
	"time"

	"recipe-suggester/internal/core/corpus"
	"recipe-suggester/internal/core/index"
	"recipe-suggester/internal/metrics"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// 重新載入的觸發來源
const (
	TriggerStartup = "startup"
	TriggerManual  = "manual"
	TriggerWatch   = "watch"
)

// Reloader 重新讀取資料來源並替換索引
type Reloader struct {
	loader corpus.Loader
	holder *index.Holder
	mu     sync.Mutex
}

// NewReloader 創建 Reloader
func NewReloader(loader corpus.Loader, holder *index.Holder) *Reloader {
	return &Reloader{loader: loader, holder: holder}
}

// Source 資料來源描述
func (r *Reloader) Source() string {
	return r.loader.Source()
}

// Reload 手動重新載入
func (r *Reloader) Reload(ctx context.Context) (*index.Snapshot, error) {
	return r.ReloadFrom(ctx, TriggerManual)
}

// ReloadFrom 載入資料、建立索引並替換。失敗時保留原本的索引
func (r *Reloader) ReloadFrom(ctx context.Context, trigger string) (*index.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	c, err := corpus.Load(ctx, r.loader)
	if err != nil {
		metrics.IndexReloadsTotal.WithLabelValues(trigger, "error").Inc()
		common.LogError("Recipe index build failed",
			zap.String("trigger", trigger),
			zap.String("source", r.loader.Source()),
			zap.Error(err),
		)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		metrics.IndexReloadsTotal.WithLabelValues(trigger, "canceled").Inc()
		return nil, err
	}

	snap := r.holder.BuildSnapshot(c)
	old := r.holder.Store(snap)
	metrics.IndexReloadsTotal.WithLabelValues(trigger, "ok").Inc()
	metrics.ObserveIndex(c.Len(), snap.Index.VocabularySize(), snap.Version)

	fields := []zap.Field{
		zap.String("trigger", trigger),
		zap.Uint64("version", snap.Version),
		zap.Int("recipes", c.Len()),
		zap.Int("vocabulary", snap.Index.VocabularySize()),
		zap.Duration("duration", time.Since(start)),
	}
	if old != nil {
		fields = append(fields, zap.Uint64("previous_version", old.Version))
	}
	common.LogInfo("Recipe index swapped", fields...)
	return snap, nil
}
