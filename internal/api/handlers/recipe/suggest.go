package recipe

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"recipe-suggester/internal/core/index"
	"recipe-suggester/internal/core/ingredient"
	recipeService "recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// Handler 食譜推薦處理器
type Handler struct {
	suggestionService *recipeService.SuggestionService
	holder            *index.Holder
	debug             bool
}

// NewHandler 創建食譜推薦處理器
func NewHandler(suggestionService *recipeService.SuggestionService, holder *index.Holder, debug bool) *Handler {
	return &Handler{
		suggestionService: suggestionService,
		holder:            holder,
		debug:             debug,
	}
}

// IngredientList 食材清單，JSON 可以是字串陣列或逗號分隔的字串
type IngredientList []string

// UnmarshalJSON 同時接受 "egg, milk" 與 ["egg", "milk"]
func (l *IngredientList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*l = recipeService.ParseIngredients(text)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*l = items
	return nil
}

// SuggestRequest JSON 推薦請求
type SuggestRequest struct {
	Ingredients IngredientList `json:"ingredients"`
	TopK        *int           `json:"top_k"`
	MinScore    *float64       `json:"min_score"`
}

// suggestForm query string 或表單推薦請求
type suggestForm struct {
	Ingredients string   `form:"ingredients"`
	TopK        *int     `form:"top_k"`
	MinScore    *float64 `form:"min_score"`
}

// SuggestResponse 推薦結果
type SuggestResponse struct {
	Results  []recipeService.ResultRecord `json:"results"`
	Count    int                          `json:"count"`
	Query    []string                     `json:"query"`
	TopK     int                          `json:"top_k"`
	MinScore float64                      `json:"min_score"`
}

// HandleSuggest 依食材推薦食譜
func (h *Handler) HandleSuggest(c *gin.Context) {
	requestID := common.RequestID(c)

	req, err := h.bindSuggest(c)
	if err != nil {
		common.LogWarn("推薦請求格式錯誤",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		common.WriteError(c, common.NewValidationError(err.Error()), h.debug)
		return
	}

	topK, minScore := h.suggestionService.Defaults()
	if req.TopK != nil {
		topK = *req.TopK
	}
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	results, err := h.suggestionService.Suggest(c.Request.Context(), req.Ingredients, topK, minScore)
	if err != nil {
		common.LogError("推薦失敗",
			zap.String("request_id", requestID),
			zap.Strings("ingredients", req.Ingredients),
			zap.Error(err),
		)
		common.WriteError(c, err, h.debug)
		return
	}

	common.LogInfo("推薦完成",
		zap.String("request_id", requestID),
		zap.String("ingredients", common.StringSliceToString(req.Ingredients)),
		zap.Int("count", len(results)),
	)

	c.JSON(http.StatusOK, SuggestResponse{
		Results:  results,
		Count:    len(results),
		Query:    nonNil(ingredient.CanonicalSet(req.Ingredients)),
		TopK:     topK,
		MinScore: minScore,
	})
}

// bindSuggest JSON 內容走 JSON 綁定，其餘從 query string 或表單讀取
func (h *Handler) bindSuggest(c *gin.Context) (*SuggestRequest, error) {
	if c.Request.Method == http.MethodPost && strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		var req SuggestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	var form suggestForm
	if err := c.ShouldBind(&form); err != nil {
		return nil, err
	}
	return &SuggestRequest{
		Ingredients: recipeService.ParseIngredients(form.Ingredients),
		TopK:        form.TopK,
		MinScore:    form.MinScore,
	}, nil
}

// RecipesResponse 食譜清單
type RecipesResponse struct {
	Recipes []recipeService.RecipeSummary `json:"recipes"`
	Count   int                           `json:"count"`
	Source  string                        `json:"source"`
	Version uint64                        `json:"version"`
}

// HandleListRecipes 列出目前索引中的食譜
func (h *Handler) HandleListRecipes(c *gin.Context) {
	snap, err := h.holder.Load()
	if err != nil {
		common.WriteError(c, err, h.debug)
		return
	}
	recipes := recipeService.Summaries(snap)
	c.JSON(http.StatusOK, RecipesResponse{
		Recipes: recipes,
		Count:   len(recipes),
		Source:  snap.Corpus.Source(),
		Version: snap.Version,
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
