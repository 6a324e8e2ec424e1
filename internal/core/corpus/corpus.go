// Package corpus 食譜資料集：載入來源、正規化後的食材集合與索引文件
package corpus

import (
	"errors"
	"fmt"
	"strings"

	"recipe-suggester/internal/core/ingredient"
)

// Record 食譜原始資料，載入後不可變
type Record struct {
	ID          int      `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Ingredients []string `json:"ingredients" yaml:"ingredients"`
}

// Entry 載入時預先計算好的食譜
type Entry struct {
	Record
	// Canonical 正規化、去重且遞增排序的食材
	Canonical []string
	// Document 向量化用的文件字串
	Document string
}

// Corpus 固定的食譜集合，建立後只讀，可並發讀取
type Corpus struct {
	source  string
	entries []Entry
}

var (
	errEmptyCorpus = errors.New("corpus has no recipes")
)

// New 由原始資料建立 Corpus，每筆食譜只正規化一次
func New(source string, records []Record) (*Corpus, error) {
	if len(records) == 0 {
		return nil, errEmptyCorpus
	}

	seen := make(map[int]int, len(records))
	entries := make([]Entry, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return nil, fmt.Errorf("recipe %d has empty title", r.ID)
		}
		if prev, ok := seen[r.ID]; ok {
			return nil, fmt.Errorf("duplicate recipe id %d (rows %d and %d)", r.ID, prev+1, i+1)
		}
		seen[r.ID] = i

		ings := make([]string, len(r.Ingredients))
		copy(ings, r.Ingredients)
		canonical := ingredient.CanonicalSet(ings)
		entries[i] = Entry{
			Record: Record{
				ID:          r.ID,
				Title:       strings.TrimSpace(r.Title),
				Ingredients: ings,
			},
			Canonical: canonical,
			Document:  ingredient.BuildDocument(canonical),
		}
	}

	return &Corpus{source: source, entries: entries}, nil
}

// Len 食譜數量
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Source 資料來源描述
func (c *Corpus) Source() string {
	return c.source
}

// Entry 依索引取得食譜
func (c *Corpus) Entry(i int) Entry {
	return c.entries[i]
}

// Entries 回傳所有食譜的副本切片
func (c *Corpus) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Documents 依資料集順序回傳索引文件
func (c *Corpus) Documents() []string {
	docs := make([]string, len(c.entries))
	for i, e := range c.entries {
		docs[i] = e.Document
	}
	return docs
}
