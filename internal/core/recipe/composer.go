package recipe

import (
	"math"

	"recipe-suggester/internal/core/corpus"
	"recipe-suggester/internal/core/index"
	"recipe-suggester/internal/core/ingredient"
	"recipe-suggester/internal/core/ranking"
)

// RoundScore 四捨五入到小數第三位，0.5 遠離零
func RoundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}

// Compose 將排序後的候選組成推薦結果，順序沿用 candidates
func Compose(c *corpus.Corpus, user ingredient.Set, candidates []ranking.Candidate) []ResultRecord {
	results := make([]ResultRecord, 0, len(candidates))
	for _, cand := range candidates {
		entry := c.Entry(cand.Index)
		// Canonical 已排序，切出的兩組也維持遞增
		have, missing := user.Split(entry.Canonical)
		results = append(results, ResultRecord{
			ID:          entry.ID,
			Title:       entry.Title,
			Score:       RoundScore(cand.Score),
			Have:        have,
			Missing:     missing,
			Ingredients: append([]string(nil), entry.Canonical...),
		})
	}
	return results
}

// Summaries 列出快照中的所有食譜
func Summaries(s *index.Snapshot) []RecipeSummary {
	entries := s.Corpus.Entries()
	out := make([]RecipeSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, RecipeSummary{
			ID:          e.ID,
			Title:       e.Title,
			Ingredients: append([]string(nil), e.Canonical...),
		})
	}
	return out
}
