// Package recipe 依使用者現有食材推薦食譜
package recipe

// ResultRecord 一筆推薦結果
type ResultRecord struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Score       float64  `json:"score"`
	Have        []string `json:"have"`
	Missing     []string `json:"missing"`
	Ingredients []string `json:"ingredients"`
}

// RecipeSummary 食譜清單項目
type RecipeSummary struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
}
