package index

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"

	"recipe-suggester/internal/core/corpus"
	"recipe-suggester/internal/pkg/common"
)

func norm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func TestTokenize(t *testing.T) {
	got := Tokenize("ice cream milk  sugar, olive-oil crème_fraîche")
	want := []string{"ice", "cream", "milk", "sugar", "olive", "oil", "crème_fraîche"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v", got)
	}
}

func TestBuild_WeightsAndNormalization(t *testing.T) {
	idx := Build([]string{
		"egg oil pepper salt tomato",
		"butter salt tomato water",
		"cream ice milk sugar",
	})
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d", idx.Len())
	}
	want := []string{"butter", "cream", "egg", "ice", "milk", "oil", "pepper", "salt", "sugar", "tomato", "water"}
	if !reflect.DeepEqual(idx.Terms(), want) {
		t.Errorf("Terms() = %v", idx.Terms())
	}

	vecs, err := idx.Vectors()
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range vecs {
		if math.Abs(norm(v)-1) > 1e-9 {
			t.Errorf("vector %d norm = %v, want 1", i, norm(v))
		}
	}

	// salt 出現在兩份文件，權重低於只出現一次的 egg
	v0 := vecs[0]
	if !(v0[idx.vocab["egg"]] > v0[idx.vocab["salt"]]) {
		t.Errorf("rare term should outweigh common term: egg=%v salt=%v", v0[idx.vocab["egg"]], v0[idx.vocab["salt"]])
	}
	wantIDF := math.Log(4.0/3.0) + 1
	if got := idx.idf[idx.vocab["salt"]]; math.Abs(got-wantIDF) > 1e-12 {
		t.Errorf("idf(salt) = %v, want %v", got, wantIDF)
	}
}

func TestTransform(t *testing.T) {
	idx := Build([]string{"egg salt", "milk sugar"})

	v, err := idx.Transform("egg salt")
	if err != nil {
		t.Fatal(err)
	}
	vecs, _ := idx.Vectors()
	if math.Abs(dot(v, vecs[0])-1) > 1e-9 {
		t.Errorf("self transform should match stored vector, cos = %v", dot(v, vecs[0]))
	}

	unknown, err := idx.Transform("caviar truffle")
	if err != nil {
		t.Fatal(err)
	}
	if norm(unknown) != 0 {
		t.Errorf("unknown terms should give zero vector, got %v", unknown)
	}

	empty, _ := idx.Transform("")
	if len(empty) != idx.VocabularySize() || norm(empty) != 0 {
		t.Errorf("empty document should give zero vector of vocab size, got %v", empty)
	}
}

func TestTransform_NotBuilt(t *testing.T) {
	var idx *Index
	if _, err := idx.Transform("egg"); !errors.Is(err, common.ErrIndexNotBuilt) {
		t.Errorf("nil index: err = %v", err)
	}
	if _, err := (&Index{}).Transform("egg"); !errors.Is(err, common.ErrIndexNotBuilt) {
		t.Errorf("zero index: err = %v", err)
	}
	if _, err := (&Index{}).Vectors(); !errors.Is(err, common.ErrIndexNotBuilt) {
		t.Errorf("zero index vectors: err = %v", err)
	}
}

func TestHolder(t *testing.T) {
	h := NewHolder()
	if h.Ready() {
		t.Fatal("new holder should not be ready")
	}
	if _, err := h.Load(); !errors.Is(err, common.ErrIndexNotBuilt) {
		t.Fatalf("Load() err = %v", err)
	}

	c1, err := corpus.New("a", corpus.SampleRecipes())
	if err != nil {
		t.Fatal(err)
	}
	s1 := h.Rebuild(c1)
	got, err := h.Load()
	if err != nil || got != s1 {
		t.Fatalf("Load() = %v, %v", got, err)
	}

	c2, err := corpus.New("b", []corpus.Record{{ID: 1, Title: "Toast", Ingredients: []string{"bread"}}})
	if err != nil {
		t.Fatal(err)
	}
	s2 := h.BuildSnapshot(c2)
	if cur, _ := h.Load(); cur != s1 {
		t.Fatal("BuildSnapshot must not publish")
	}
	if old := h.Store(s2); old != s1 {
		t.Errorf("Store returned %v, want previous snapshot", old)
	}
	if s2.Version <= s1.Version {
		t.Errorf("versions not increasing: %d then %d", s1.Version, s2.Version)
	}
}

func TestHolder_ConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	h := NewHolder()
	small, _ := corpus.New("small", []corpus.Record{{ID: 1, Title: "Toast", Ingredients: []string{"bread"}}})
	large, _ := corpus.New("large", corpus.SampleRecipes())
	h.Rebuild(small)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				s, err := h.Load()
				if err != nil {
					t.Error(err)
					return
				}
				if s.Index.Len() != s.Corpus.Len() {
					t.Errorf("snapshot mismatch: index %d corpus %d", s.Index.Len(), s.Corpus.Len())
					return
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			h.Rebuild(large)
		} else {
			h.Rebuild(small)
		}
	}
	wg.Wait()
}
