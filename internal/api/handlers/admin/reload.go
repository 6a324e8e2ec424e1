// Package admin 管理用端點
package admin

import (
	"net/http"
	"time"

	recipeService "recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReloadResponse 重新載入結果
type ReloadResponse struct {
	Status     string    `json:"status"`
	Version    uint64    `json:"version"`
	Recipes    int       `json:"recipes"`
	Vocabulary int       `json:"vocabulary"`
	Source     string    `json:"source"`
	BuiltAt    time.Time `json:"built_at"`
}

// HandleReload 重新讀取資料來源並替換索引，失敗時沿用舊索引
func HandleReload(reloader *recipeService.Reloader, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := common.RequestID(c)

		snap, err := reloader.Reload(c.Request.Context())
		if err != nil {
			common.LogError("手動重新載入失敗",
				zap.String("request_id", requestID),
				zap.String("source", reloader.Source()),
				zap.Error(err),
			)
			common.WriteError(c, err, debug)
			return
		}

		c.JSON(http.StatusOK, ReloadResponse{
			Status:     "reloaded",
			Version:    snap.Version,
			Recipes:    snap.Corpus.Len(),
			Vocabulary: snap.Index.VocabularySize(),
			Source:     snap.Corpus.Source(),
			BuiltAt:    snap.BuiltAt,
		})
	}
}
