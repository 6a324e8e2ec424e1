package recipe

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"recipe-suggester/internal/core/cache"
	"recipe-suggester/internal/core/index"
	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/core/ranking"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/metrics"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// SuggestionService 食譜推薦服務
type SuggestionService struct {
	holder *index.Holder
	cache  cache.Cache
	config config.SuggestConfig
}

// NewSuggestionService 創建新的食譜推薦服務，cache 可為 nil
func NewSuggestionService(holder *index.Holder, c cache.Cache, cfg config.SuggestConfig) *SuggestionService {
	return &SuggestionService{
		holder: holder,
		cache:  c,
		config: cfg,
	}
}

// Defaults 預設的 top_k 與 min_score
func (s *SuggestionService) Defaults() (int, float64) {
	return s.config.DefaultTopK, s.config.DefaultMinScore
}

// ParseIngredients 將逗號分隔的文字切成食材清單，空白項目會被移除
func ParseIngredients(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Suggest 依使用者食材回傳最相近的食譜
//
// 流程：正規化 → 建立查詢文件 → 向量化 → 排序取前 topK → 以 minScore 過濾 → 組成結果。
// 查詢沒有任何有效食材時回傳空清單。
func (s *SuggestionService) Suggest(ctx context.Context, userIngredients []string, topK int, minScore float64) (results []ResultRecord, err error) {
	start := time.Now()
	var tokens []string
	defer func() {
		metrics.SuggestDuration.Observe(time.Since(start).Seconds())
		metrics.SuggestRequestsTotal.WithLabelValues(suggestStatus(err)).Inc()
		if err == nil {
			metrics.SuggestResults.Observe(float64(len(results)))
		}
		common.LogSuggestion(len(tokens), len(results), time.Since(start), err)
	}()

	if topK < 1 {
		return nil, common.NewValidationError("top_k must be >= 1")
	}
	if math.IsNaN(minScore) || math.IsInf(minScore, 0) {
		return nil, common.NewValidationError("min_score must be a finite number")
	}
	if s.config.MaxTopK > 0 && topK > s.config.MaxTopK {
		topK = s.config.MaxTopK
	}

	snap, err := s.holder.Load()
	if err != nil {
		return nil, err
	}

	raw := make([]string, 0, len(userIngredients))
	for _, x := range userIngredients {
		if strings.TrimSpace(x) != "" {
			raw = append(raw, x)
		}
	}
	tokens = ingredient.CanonicalSet(raw)
	if len(tokens) == 0 && minScore > 0 {
		return []ResultRecord{}, nil
	}
	doc := ingredient.BuildDocument(tokens)

	key := cache.BuildKey(snap.Version, doc, topK, minScore)
	if cached, ok := s.fromCache(ctx, key); ok {
		return cached, nil
	}

	query, err := snap.Index.Transform(doc)
	if err != nil {
		return nil, err
	}
	vectors, err := snap.Index.Vectors()
	if err != nil {
		return nil, err
	}
	candidates, err := ranking.Rank(query, vectors, topK, minScore)
	if err != nil {
		return nil, err
	}

	results = Compose(snap.Corpus, ingredient.NewSet(tokens), candidates)
	s.toCache(ctx, key, results)
	return results, nil
}

// fromCache 讀取快取，快取錯誤一律視為未命中
func (s *SuggestionService) fromCache(ctx context.Context, key string) ([]ResultRecord, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.SuggestCacheTotal.WithLabelValues("miss").Inc()
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("讀取推薦快取失敗", zap.Error(err))
		}
		return nil, false
	}
	var results []ResultRecord
	if err := common.ParseJSONStrict(raw, &results); err != nil {
		metrics.SuggestCacheTotal.WithLabelValues("miss").Inc()
		common.LogWarn("推薦快取內容無法解析", zap.Error(err))
		return nil, false
	}
	metrics.SuggestCacheTotal.WithLabelValues("hit").Inc()
	return results, true
}

// toCache 寫入快取，失敗只記錄
func (s *SuggestionService) toCache(ctx context.Context, key string, results []ResultRecord) {
	if s.cache == nil {
		return
	}
	data, err := common.ToJSON(results)
	if err != nil {
		common.LogWarn("推薦結果序列化失敗", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data); err != nil {
		common.LogWarn("寫入推薦快取失敗", zap.Error(err))
	}
}

func suggestStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case common.IsValidationError(err):
		return "invalid"
	case errors.Is(err, common.ErrIndexNotBuilt):
		return "unavailable"
	default:
		return "error"
	}
}
