// Package index 食材文件的 TF-IDF 向量空間
//
// 權重採平滑 IDF：idf(t) = ln((1+n)/(1+df(t))) + 1，tf 為詞在文件中的出現次數，
// 向量最後做 L2 正規化，因此兩向量內積即為 cosine 相似度。
package index

import (
	"math"
	"sort"
	"unicode"

	"recipe-suggester/internal/pkg/common"
)

// Index 訓練完成的 TF-IDF 模型與資料集矩陣，建立後不可變
type Index struct {
	vocab   map[string]int
	terms   []string
	idf     []float64
	vectors [][]float64
}

// Tokenize 以連續的字母、數字或底線為一個特徵，多字詞食材的每個字各自計分
func Tokenize(document string) []string {
	var tokens []string
	start := -1
	for i, r := range document {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
		switch {
		case isWord && start < 0:
			start = i
		case !isWord && start >= 0:
			tokens = append(tokens, document[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, document[start:])
	}
	return tokens
}

// Build 以資料集文件訓練模型，並依輸入順序產生每份文件的向量
func Build(documents []string) *Index {
	df := make(map[string]int)
	tokenized := make([][]string, len(documents))
	for i, doc := range documents {
		tokens := Tokenize(doc)
		tokenized[i] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// 詞彙排序，座標可重現
	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(documents))
	vocab := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, t := range terms {
		vocab[t] = i
		idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}

	idx := &Index{
		vocab: vocab,
		terms: terms,
		idf:   idf,
	}
	idx.vectors = make([][]float64, len(documents))
	for i, tokens := range tokenized {
		idx.vectors[i] = idx.vectorize(tokens)
	}
	return idx
}

// Transform 將新文件映射到已訓練的空間，未知詞直接忽略
func (idx *Index) Transform(document string) ([]float64, error) {
	if idx == nil || idx.vocab == nil {
		return nil, common.ErrIndexNotBuilt
	}
	return idx.vectorize(Tokenize(document)), nil
}

func (idx *Index) vectorize(tokens []string) []float64 {
	vec := make([]float64, len(idx.terms))
	for _, t := range tokens {
		if i, ok := idx.vocab[t]; ok {
			vec[i]++
		}
	}

	var norm float64
	for i, tf := range vec {
		if tf == 0 {
			continue
		}
		vec[i] = tf * idx.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// Vectors 資料集矩陣，依資料集順序。呼叫端不得修改
func (idx *Index) Vectors() ([][]float64, error) {
	if idx == nil || idx.vocab == nil {
		return nil, common.ErrIndexNotBuilt
	}
	return idx.vectors, nil
}

// Len 已建立向量的文件數
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.vectors)
}

// VocabularySize 詞彙數
func (idx *Index) VocabularySize() int {
	if idx == nil {
		return 0
	}
	return len(idx.terms)
}

// Terms 排序後的詞彙副本
func (idx *Index) Terms() []string {
	if idx == nil {
		return nil
	}
	out := make([]string, len(idx.terms))
	copy(out, idx.terms)
	return out
}
