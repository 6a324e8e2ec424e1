// Package ingredient 食材字串正規化，索引建立與查詢共用同一套規則
package ingredient

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// 數字與分數符號，例如 "2"、"1/2"
	quantityPattern = regexp.MustCompile(`[\d/]+`)
	// 單位字詞，整字比對避免把 "egg" 切成 "e"；邊界以 Unicode 字母數字判斷
	unitPattern = regexp.MustCompile(`(?i)(^|[^\p{L}\p{N}_])(?:ml|g|kg|cups?|tbsp|tsp)([^\p{L}\p{N}_]|$)`)
)

// Canonicalize 將原始食材字串轉為可比較的 token
//
// 去除數量與單位、轉小寫、合併空白。被移除的片段以空白取代，
// 因此前後文字不會黏成新的單位字詞，重複套用結果不變。
func Canonicalize(raw string) string {
	s := strings.ToLower(raw)
	s = quantityPattern.ReplaceAllString(s, " ")
	// 相鄰單位如 "g g" 共用邊界字元，單次替換只會移除一個
	for {
		next := unitPattern.ReplaceAllString(s, "${1} ${2}")
		if next == s {
			break
		}
		s = next
	}
	return strings.Join(strings.Fields(s), " ")
}

// CanonicalSet 正規化一組食材，丟棄空字串並去重，回傳遞增排序的結果
func CanonicalSet(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	tokens := make([]string, 0, len(raw))
	for _, r := range raw {
		t := Canonicalize(r)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tokens = append(tokens, t)
	}
	sort.Strings(tokens)
	return tokens
}

// BuildDocument 將 token 集合排序去重後以單一空白串接
func BuildDocument(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	sorted := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		sorted = append(sorted, t)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, " ")
}

// Set 以 map 表示的食材集合
type Set map[string]struct{}

// NewSet 由 token 切片建立集合
func NewSet(tokens []string) Set {
	s := make(Set, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

// Has 判斷 token 是否在集合中
func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Split 將 recipe 的食材依使用者集合切成已有與缺少兩組，順序沿用輸入
func (s Set) Split(recipe []string) (have, missing []string) {
	have = make([]string, 0, len(recipe))
	missing = make([]string, 0, len(recipe))
	for _, t := range recipe {
		if s.Has(t) {
			have = append(have, t)
		} else {
			missing = append(missing, t)
		}
	}
	return have, missing
}
