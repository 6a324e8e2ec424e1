package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// Loader 食譜資料來源
type Loader interface {
	// Load 讀取所有食譜，順序即為索引順序
	Load(ctx context.Context) ([]Record, error)
	// Source 資料來源描述，用於日誌與錯誤
	Source() string
}

// 資料來源類型
const (
	SourceSample = "sample"
	SourceCSV    = "csv"
	SourceYAML   = "yaml"
	SourceRemote = "remote"
)

// StaticLoader 記憶體中的固定食譜清單
type StaticLoader struct {
	records []Record
}

// NewStaticLoader 建立固定清單來源
func NewStaticLoader(records []Record) *StaticLoader {
	return &StaticLoader{records: records}
}

// Load 回傳清單副本
func (l *StaticLoader) Load(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(l.records))
	for i, r := range l.records {
		ings := make([]string, len(r.Ingredients))
		copy(ings, r.Ingredients)
		out[i] = Record{ID: r.ID, Title: r.Title, Ingredients: ings}
	}
	return out, nil
}

// Source 資料來源描述
func (l *StaticLoader) Source() string {
	return SourceSample
}

// SampleRecipes 內建的範例食譜
func SampleRecipes() []Record {
	return []Record{
		{ID: 1, Title: "Tomato Omelette", Ingredients: []string{"egg", "tomato", "salt", "pepper", "oil"}},
		{ID: 2, Title: "Tomato Soup", Ingredients: []string{"tomato", "water", "salt", "butter"}},
		{ID: 3, Title: "Milkshake", Ingredients: []string{"milk", "sugar", "ice cream"}},
		{ID: 4, Title: "Pancakes", Ingredients: []string{"flour", "milk", "egg", "salt", "sugar"}},
		{ID: 5, Title: "Grilled Cheese", Ingredients: []string{"bread", "cheese", "butter"}},
	}
}

// NewLoader 依設定建立資料來源
func NewLoader(cfg config.CorpusConfig) (Loader, error) {
	switch strings.ToLower(cfg.Source) {
	case "", SourceSample:
		return NewStaticLoader(SampleRecipes()), nil
	case SourceCSV:
		if cfg.Path == "" {
			return nil, fmt.Errorf("corpus.path is required for csv source")
		}
		return NewCSVLoader(cfg.Path, cfg.Delimiter), nil
	case SourceYAML:
		if cfg.Path == "" {
			return nil, fmt.Errorf("corpus.path is required for yaml source")
		}
		return NewYAMLLoader(cfg.Path), nil
	case SourceRemote:
		if cfg.URL == "" {
			return nil, fmt.Errorf("corpus.url is required for remote source")
		}
		return NewRemoteLoader(cfg.URL, cfg.Format, cfg.Delimiter, cfg.RemoteTimeout), nil
	default:
		return nil, fmt.Errorf("unknown corpus source %q", cfg.Source)
	}
}

// Load 讀取並建立 Corpus，所有失敗都包成 CorpusLoadError
func Load(ctx context.Context, loader Loader) (*Corpus, error) {
	start := time.Now()
	records, err := loader.Load(ctx)
	if err != nil {
		return nil, common.NewCorpusLoadError(loader.Source(), err)
	}
	c, err := New(loader.Source(), records)
	if err != nil {
		return nil, common.NewCorpusLoadError(loader.Source(), err)
	}

	common.LogInfo("Recipe corpus loaded",
		zap.String("source", loader.Source()),
		zap.Int("recipes", c.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return c, nil
}

// formatFromPath 由副檔名判斷格式
func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return SourceYAML
	default:
		return SourceCSV
	}
}
