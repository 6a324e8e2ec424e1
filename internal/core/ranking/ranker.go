// Package ranking 以 cosine 相似度排序食譜
package ranking

import (
	"fmt"
	"math"
	"sort"

	"recipe-suggester/internal/pkg/common"
)

// Candidate 排序後的候選食譜
type Candidate struct {
	Index int
	Score float64
}

// Cosine 兩向量的 cosine 相似度，任一為零向量時為 0，結果限制在 [0,1]
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, x := range a {
		na += x * x
	}
	for _, x := range b {
		nb += x * x
	}
	if na == 0 || nb == 0 {
		return 0
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	switch {
	case s < 0:
		return 0
	case s > 1:
		return 1
	}
	return s
}

// Rank 對所有食譜計分並排序，先取前 topK 筆再以 minScore 過濾
//
// 分數相同時依原始索引遞增。被 minScore 濾掉的位置不會由後面的候選補上。
func Rank(query []float64, vectors [][]float64, topK int, minScore float64) ([]Candidate, error) {
	if topK < 1 {
		return nil, common.NewValidationError(fmt.Sprintf("top_k must be >= 1, got %d", topK))
	}

	scored := make([]Candidate, len(vectors))
	for i, v := range vectors {
		scored[i] = Candidate{Index: i, Score: Cosine(query, v)}
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Index < scored[j].Index
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	out := make([]Candidate, 0, len(scored))
	for _, c := range scored {
		if c.Score < minScore {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
