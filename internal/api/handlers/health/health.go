package health

import (
	"net/http"
	"runtime"
	"time"

	"recipe-suggester/internal/core/cache"
	"recipe-suggester/internal/core/index"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Index     *IndexStatus           `json:"index,omitempty"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// IndexStatus 索引狀態
type IndexStatus struct {
	Version    uint64    `json:"version"`
	Recipes    int       `json:"recipes"`
	Vocabulary int       `json:"vocabulary"`
	Source     string    `json:"source"`
	BuiltAt    time.Time `json:"built_at"`
}

// Checker 健康檢查處理器
type Checker struct {
	config *config.Config
	holder *index.Holder
	cache  cache.Cache
}

// NewChecker 創建健康檢查處理器，cache 可為 nil
func NewChecker(cfg *config.Config, holder *index.Holder, c cache.Cache) *Checker {
	return &Checker{config: cfg, holder: holder, cache: c}
}

// HealthCheck 健康檢查處理器
func (h *Checker) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.config.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if snap, err := h.holder.Load(); err == nil {
		response.Index = &IndexStatus{
			Version:    snap.Version,
			Recipes:    snap.Corpus.Len(),
			Vocabulary: snap.Index.VocabularySize(),
			Source:     snap.Corpus.Source(),
			BuiltAt:    snap.BuiltAt,
		}
	} else {
		response.Status = "degraded"
	}
	if h.cache != nil {
		response.Cache = h.cache.Stats()
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 索引建立前回傳 503
func (h *Checker) ReadinessCheck(c *gin.Context) {
	if !h.holder.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": common.ErrIndexNotBuilt.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Checker) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
