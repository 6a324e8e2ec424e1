package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"recipe-suggester/internal/api/handlers/recipe"
	"recipe-suggester/internal/core/cache"
	"recipe-suggester/internal/core/corpus"
	"recipe-suggester/internal/core/index"
	recipeService "recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "test", Version: "test"},
		Server:  config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		Suggest: config.SuggestConfig{DefaultTopK: 5, DefaultMinScore: 0.1, MaxTopK: 50},
		Cache:   config.CacheConfig{Enabled: true, Driver: cache.DriverMemory, MaxSize: 100, TTL: time.Minute},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// newTestRouter 建立路由，built 為 false 時索引尚未建立
func newTestRouter(t *testing.T, built bool) *gin.Engine {
	t.Helper()
	cfg := testConfig()
	holder := index.NewHolder()
	reloader := recipeService.NewReloader(corpus.NewStaticLoader(corpus.SampleRecipes()), holder)
	if built {
		if _, err := reloader.ReloadFrom(context.Background(), recipeService.TriggerStartup); err != nil {
			t.Fatal(err)
		}
	}
	mc := cache.NewManager(cfg.Cache)
	t.Cleanup(func() { _ = mc.Close() })

	r, err := SetupRouter(cfg, Services{
		Suggestion: recipeService.NewSuggestionService(holder, mc, cfg.Suggest),
		Reloader:   reloader,
		Holder:     holder,
		Cache:      mc,
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeSuggest(t *testing.T, rr *httptest.ResponseRecorder) recipe.SuggestResponse {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp recipe.SuggestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body %q: %v", rr.Body.String(), err)
	}
	return resp
}

func TestSuggest_Query(t *testing.T) {
	r := newTestRouter(t, true)

	rr := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/recipe/suggest?ingredients="+url.QueryEscape("egg, tomato, salt"), http.NoBody))
	resp := decodeSuggest(t, rr)

	if resp.Count != 3 || len(resp.Results) != 3 {
		t.Fatalf("count = %d, results = %+v", resp.Count, resp.Results)
	}
	if resp.Results[0].Title != "Tomato Omelette" || resp.Results[0].Score != 0.683 {
		t.Errorf("top = %+v", resp.Results[0])
	}
	if strings.Join(resp.Query, " ") != "egg salt tomato" {
		t.Errorf("query = %v", resp.Query)
	}
	if resp.TopK != 5 || resp.MinScore != 0.1 {
		t.Errorf("defaults not applied: top_k=%d min_score=%v", resp.TopK, resp.MinScore)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestSuggest_JSON(t *testing.T) {
	r := newTestRouter(t, true)

	bodies := []string{
		`{"ingredients":["egg","tomato","salt"],"top_k":1}`,
		`{"ingredients":"egg, tomato, salt","top_k":1}`,
	}
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/recipe/suggest", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp := decodeSuggest(t, do(r, req))
		if resp.Count != 1 || resp.Results[0].Title != "Tomato Omelette" {
			t.Errorf("%s: %+v", body, resp)
		}
	}
}

func TestSuggest_Form(t *testing.T) {
	r := newTestRouter(t, true)

	form := url.Values{"ingredients": {"2 cups milk, sugar, ice cream"}, "min_score": {"0.5"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipe/suggest", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := decodeSuggest(t, do(r, req))

	if resp.Count != 1 || resp.Results[0].Title != "Milkshake" || len(resp.Results[0].Missing) != 0 {
		t.Errorf("got %+v", resp)
	}
}

func TestSuggest_EmptyInput(t *testing.T) {
	r := newTestRouter(t, true)

	resp := decodeSuggest(t, do(r, httptest.NewRequest(http.MethodGet, "/api/v1/recipe/suggest?ingredients=", http.NoBody)))
	if resp.Count != 0 || resp.Results == nil {
		t.Errorf("expected empty results array, got %+v", resp)
	}
}

func TestSuggest_InvalidParams(t *testing.T) {
	r := newTestRouter(t, true)

	for _, q := range []string{"ingredients=egg&top_k=0", "ingredients=egg&top_k=abc", "ingredients=egg&min_score=x", "ingredients=zzz&min_score=NaN", "ingredients=egg&min_score=-Inf"} {
		rr := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/recipe/suggest?"+q, http.NoBody))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", q, rr.Code)
			continue
		}
		if e := decodeError(t, rr); e.Code != common.ErrCodeInvalidRequest {
			t.Errorf("%s: code = %s", q, e.Code)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recipe/suggest", strings.NewReader(`{"ingredients":42}`))
	req.Header.Set("Content-Type", "application/json")
	if rr := do(r, req); rr.Code != http.StatusBadRequest {
		t.Errorf("bad JSON: status = %d", rr.Code)
	}
}

func TestNotBuilt_ThenReload(t *testing.T) {
	r := newTestRouter(t, false)

	if rr := do(r, httptest.NewRequest(http.MethodGet, "/ready", http.NoBody)); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready before build = %d", rr.Code)
	}
	rr := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/recipe/suggest?ingredients=egg", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("suggest before build = %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != common.ErrCodeIndexNotBuilt {
		t.Errorf("code = %s", e.Code)
	}

	rr = do(r, httptest.NewRequest(http.MethodPost, "/api/v1/admin/reload", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("reload = %d %s", rr.Code, rr.Body.String())
	}
	var reload struct {
		Version uint64 `json:"version"`
		Recipes int    `json:"recipes"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &reload); err != nil {
		t.Fatal(err)
	}
	if reload.Recipes != 5 || reload.Version == 0 {
		t.Errorf("reload = %+v", reload)
	}

	if rr := do(r, httptest.NewRequest(http.MethodGet, "/ready", http.NoBody)); rr.Code != http.StatusOK {
		t.Errorf("/ready after reload = %d", rr.Code)
	}
}

func TestListRecipes(t *testing.T) {
	r := newTestRouter(t, true)

	rr := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/recipe/recipes", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp recipe.RecipesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 5 || resp.Source != corpus.SourceSample || resp.Recipes[0].Title != "Tomato Omelette" {
		t.Errorf("got %+v", resp)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, true)

	rr := do(r, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Fatalf("/health = %d", rr.Code)
	}
	var h struct {
		Status string `json:"status"`
		Index  struct {
			Recipes int `json:"recipes"`
		} `json:"index"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &h); err != nil {
		t.Fatal(err)
	}
	if h.Status != "ok" || h.Index.Recipes != 5 {
		t.Errorf("health = %+v", h)
	}

	if rr := do(r, httptest.NewRequest(http.MethodGet, "/live", http.NoBody)); rr.Code != http.StatusOK {
		t.Errorf("/live = %d", rr.Code)
	}

	_ = do(r, httptest.NewRequest(http.MethodGet, "/api/v1/recipe/suggest?ingredients=egg", http.NoBody))
	rr = do(r, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "recipe_suggester_suggest_requests_total") {
		t.Errorf("/metrics = %d", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	r := newTestRouter(t, true)

	rr := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/recipe/unknown", http.NoBody))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != common.ErrCodeNotFound {
		t.Errorf("code = %s", e.Code)
	}
}

func TestSetupRouter_MissingService(t *testing.T) {
	if _, err := SetupRouter(testConfig(), Services{}); err == nil {
		t.Error("expected error for missing services")
	}
}
