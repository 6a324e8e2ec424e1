package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// yamlDocument YAML 資料格式
//
//	recipes:
//	  - id: 1
//	    title: Tomato Omelette
//	    ingredients: [egg, tomato, salt]
type yamlDocument struct {
	Recipes []yamlRecord `yaml:"recipes"`
}

// yamlRecord id 可省略，nil 表示未提供
type yamlRecord struct {
	ID          *int     `yaml:"id"`
	Title       string   `yaml:"title"`
	Ingredients []string `yaml:"ingredients"`
}

// YAMLLoader 讀取 YAML 食譜檔
type YAMLLoader struct {
	path string
}

// NewYAMLLoader 建立 YAML 來源
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{path: path}
}

// Load 讀取檔案
func (l *YAMLLoader) Load(ctx context.Context) ([]Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open yaml: %w", err)
	}
	defer f.Close()
	return ParseYAML(f)
}

// Source 資料來源描述
func (l *YAMLLoader) Source() string {
	return "yaml:" + l.path
}

// Path 檔案路徑
func (l *YAMLLoader) Path() string {
	return l.path
}

// ParseYAML 解析 YAML 食譜清單，未提供 id 的食譜依序接在最大的 id 之後編號
func ParseYAML(r io.Reader) ([]Record, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc yamlDocument
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("yaml is empty")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Recipes == nil {
		return nil, errors.New(`yaml missing required key "recipes"`)
	}

	next := 0
	for _, r := range doc.Recipes {
		if r.ID != nil && *r.ID > next {
			next = *r.ID
		}
	}
	records := make([]Record, len(doc.Recipes))
	for i, r := range doc.Recipes {
		records[i] = Record{Title: r.Title, Ingredients: r.Ingredients}
		if r.ID != nil {
			records[i].ID = *r.ID
		} else {
			next++
			records[i].ID = next
		}
	}
	return records, nil
}
