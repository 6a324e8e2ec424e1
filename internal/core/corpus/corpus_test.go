package corpus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"
)

func TestNew_PrecomputesCanonicalSets(t *testing.T) {
	c, err := New("test", []Record{
		{ID: 1, Title: " Omelette ", Ingredients: []string{"Egg", "2 eggs", "salt", "egg", "1 tsp Pepper"}},
		{ID: 2, Title: "Soup", Ingredients: []string{"water", "", "Tomato"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	e := c.Entry(0)
	if e.Title != "Omelette" {
		t.Errorf("title = %q, want trimmed", e.Title)
	}
	if !reflect.DeepEqual(e.Canonical, []string{"egg", "eggs", "pepper", "salt"}) {
		t.Errorf("canonical = %v", e.Canonical)
	}
	if e.Document != "egg eggs pepper salt" {
		t.Errorf("document = %q", e.Document)
	}
	if got := c.Documents(); !reflect.DeepEqual(got, []string{"egg eggs pepper salt", "tomato water"}) {
		t.Errorf("Documents() = %v", got)
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New("test", nil); err == nil {
		t.Error("expected error for empty corpus")
	}
	if _, err := New("test", []Record{{ID: 1, Title: "A"}, {ID: 1, Title: "B"}}); err == nil {
		t.Error("expected error for duplicate ids")
	}
	if _, err := New("test", []Record{{ID: 1, Title: "  "}}); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestLoad_WrapsCorpusLoadError(t *testing.T) {
	_, err := Load(context.Background(), NewCSVLoader(filepath.Join(t.TempDir(), "missing.csv"), ""))
	if err == nil {
		t.Fatal("expected error")
	}
	if !common.IsCorpusLoadError(err) {
		t.Errorf("expected CorpusLoadError, got %T: %v", err, err)
	}

	_, err = Load(context.Background(), NewStaticLoader(nil))
	if !common.IsCorpusLoadError(err) {
		t.Errorf("empty static corpus should be CorpusLoadError, got %v", err)
	}
}

func TestStaticLoader_Sample(t *testing.T) {
	c, err := Load(context.Background(), NewStaticLoader(SampleRecipes()))
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 5 {
		t.Fatalf("sample corpus has %d recipes, want 5", c.Len())
	}
	if c.Entry(2).Document != "ice cream milk sugar" {
		t.Errorf("milkshake document = %q", c.Entry(2).Document)
	}
}

func TestParseCSV(t *testing.T) {
	data := "id,title,ingredients\n" +
		"1,Tomato Omelette,\"egg, tomato, salt, pepper, oil\"\n" +
		"7,Pancakes,\"2 cups flour,milk,egg\"\n"
	recs, err := ParseCSV(strings.NewReader(data), ',')
	if err != nil {
		t.Fatal(err)
	}
	want := []Record{
		{ID: 1, Title: "Tomato Omelette", Ingredients: []string{"egg", "tomato", "salt", "pepper", "oil"}},
		{ID: 7, Title: "Pancakes", Ingredients: []string{"2 cups flour", "milk", "egg"}},
	}
	if !reflect.DeepEqual(recs, want) {
		t.Errorf("ParseCSV = %+v, want %+v", recs, want)
	}
}

func TestParseCSV_NoIDColumn(t *testing.T) {
	data := "Title;Ingredients\nSoup;\"tomato, water\"\nToast;bread\n"
	recs, err := ParseCSV(strings.NewReader(data), ';')
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[0].ID != 1 || recs[1].ID != 2 {
		t.Errorf("expected row-number ids, got %+v", recs)
	}
}

func TestParseCSV_Malformed(t *testing.T) {
	cases := map[string]string{
		"empty":           "",
		"missing title":   "id,ingredients\n1,egg\n",
		"missing ings":    "id,title\n1,Soup\n",
		"bad id":          "id,title,ingredients\nx,Soup,water\n",
		"ragged row":      "id,title,ingredients\n1,Soup\n",
		"unterminated qs": "title,ingredients\nSoup,\"water\n",
	}
	for name, data := range cases {
		if _, err := ParseCSV(strings.NewReader(data), ','); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestCSVLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recipes.csv")
	if err := os.WriteFile(path, []byte("title\tingredients\nSoup\ttomato, water\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(context.Background(), NewCSVLoader(path, `\t`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Entry(0).Document != "tomato water" {
		t.Errorf("document = %q", c.Entry(0).Document)
	}
}

func TestParseYAML(t *testing.T) {
	data := `recipes:
  - id: 10
    title: Milkshake
    ingredients: [milk, sugar, ice cream]
  - title: Toast
    ingredients:
      - bread
      - 10 g butter
`
	recs, err := ParseYAML(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}
	if recs[0].ID != 10 || recs[1].ID != 11 {
		t.Errorf("ids = %d, %d", recs[0].ID, recs[1].ID)
	}
	if !reflect.DeepEqual(recs[1].Ingredients, []string{"bread", "10 g butter"}) {
		t.Errorf("ingredients = %v", recs[1].Ingredients)
	}

	if _, err := ParseYAML(strings.NewReader("other: 1\n")); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := ParseYAML(strings.NewReader("")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestParseYAML_AssignedIDsAvoidExplicit(t *testing.T) {
	data := `recipes:
  - title: A
    ingredients: [egg]
  - id: 1
    title: B
    ingredients: [milk]
  - id: 0
    title: C
    ingredients: [rice]
  - title: D
    ingredients: [salt]
`
	recs, err := ParseYAML(strings.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	var ids []int
	for _, r := range recs {
		ids = append(ids, r.ID)
	}
	if want := []int{2, 1, 0, 3}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if _, err := New(SourceSample, recs); err != nil {
		t.Errorf("assigned ids should not collide: %v", err)
	}
}

func TestRemoteLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/recipes.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("title,ingredients\nSoup,\"tomato,water\"\n"))
		case "/recipes":
			w.Header().Set("Content-Type", "application/yaml")
			_, _ = w.Write([]byte("recipes:\n  - title: Toast\n    ingredients: [bread]\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	recs, err := NewRemoteLoader(srv.URL+"/recipes.csv", "", "", time.Second).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Title != "Soup" {
		t.Errorf("csv records = %+v", recs)
	}

	recs, err = NewRemoteLoader(srv.URL+"/recipes", "", "", time.Second).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Title != "Toast" {
		t.Errorf("yaml records = %+v", recs)
	}

	_, err = Load(context.Background(), NewRemoteLoader(srv.URL+"/missing", "", "", time.Second))
	if !common.IsCorpusLoadError(err) {
		t.Errorf("404 should be CorpusLoadError, got %v", err)
	}
}

func TestNewLoader(t *testing.T) {
	cases := []struct {
		cfg     config.CorpusConfig
		wantErr bool
		want    string
	}{
		{cfg: config.CorpusConfig{}, want: SourceSample},
		{cfg: config.CorpusConfig{Source: "csv", Path: "r.csv"}, want: "csv:r.csv"},
		{cfg: config.CorpusConfig{Source: "yaml", Path: "r.yaml"}, want: "yaml:r.yaml"},
		{cfg: config.CorpusConfig{Source: "remote", URL: "http://x/r.csv"}, want: "remote:http://x/r.csv"},
		{cfg: config.CorpusConfig{Source: "csv"}, wantErr: true},
		{cfg: config.CorpusConfig{Source: "remote"}, wantErr: true},
		{cfg: config.CorpusConfig{Source: "mongo"}, wantErr: true},
	}
	for _, tc := range cases {
		l, err := NewLoader(tc.cfg)
		if tc.wantErr {
			if err == nil {
				t.Errorf("NewLoader(%+v): expected error", tc.cfg)
			}
			continue
		}
		if err != nil {
			t.Errorf("NewLoader(%+v): %v", tc.cfg, err)
			continue
		}
		if l.Source() != tc.want {
			t.Errorf("Source() = %q, want %q", l.Source(), tc.want)
		}
	}
}
