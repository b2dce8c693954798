package genre

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"deepcut/internal/logger"
)

func newTestResolver(t *testing.T, genres ...string) *Resolver {
	t.Helper()
	c, err := NewCatalog(genres)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return NewResolver(c, rand.New(rand.NewPCG(1, 2)), logger.Discard())
}

func TestNewCatalogNormalizes(t *testing.T) {
	c, err := NewCatalog([]string{"  Indie Pop ", "classical", "indie pop", "", "   "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"indie pop", "classical"}
	got := c.Genres()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
	if c.Corpus() != "indie pop classical" {
		t.Errorf("Corpus() = %q", c.Corpus())
	}
}

func TestNewCatalogEmpty(t *testing.T) {
	if _, err := NewCatalog([]string{" ", ""}); !errors.Is(err, ErrCatalogEmpty) {
		t.Errorf("expected ErrCatalogEmpty, got %v", err)
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "genres.json")
	if err := os.WriteFile(path, []byte(`["Shoegaze", "dream pop"]`), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if !c.Contains("shoegaze") || c.Len() != 2 {
		t.Errorf("unexpected catalog %v", c.Genres())
	}

	if _, err := LoadCatalog(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrCatalogMissing) {
		t.Errorf("expected ErrCatalogMissing, got %v", err)
	}

	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte(`{"not": "a list"}`), 0644)
	if _, err := LoadCatalog(bad); err == nil {
		t.Error("expected parse error for non-array catalog")
	}

	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte(`[]`), 0644)
	if _, err := LoadCatalog(empty); !errors.Is(err, ErrCatalogEmpty) {
		t.Errorf("expected ErrCatalogEmpty, got %v", err)
	}
}

func TestFindNearMatches(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		text     string
		wantSpan string
		wantDist int
		wantNone bool
	}{
		{
			name:     "exact substring",
			pattern:  "pop",
			text:     "indie pop classical",
			wantSpan: "pop",
			wantDist: 0,
		},
		{
			name:     "substitution and insertion",
			pattern:  "indy pop",
			text:     "indie pop",
			wantSpan: "indie pop",
			wantDist: 2,
		},
		{
			name:     "single substitution",
			pattern:  "clasical",
			text:     "indie pop classical",
			wantSpan: "classical",
			wantDist: 1,
		},
		{
			name:     "too far",
			pattern:  "zzzzzz",
			text:     "indie pop classical",
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindNearMatches(tt.pattern, tt.text, MaxEditDistance)
			if tt.wantNone {
				if len(got) != 0 {
					t.Fatalf("expected no matches, got %+v", got)
				}
				return
			}
			if len(got) == 0 {
				t.Fatal("expected a match")
			}
			if got[0].Matched != tt.wantSpan {
				t.Errorf("span = %q, want %q", got[0].Matched, tt.wantSpan)
			}
			if got[0].Distance != tt.wantDist {
				t.Errorf("distance = %d, want %d", got[0].Distance, tt.wantDist)
			}
		})
	}
}

func TestFindNearMatchesOrderedByPosition(t *testing.T) {
	got := FindNearMatches("rock", "punk rock hard rock", 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %+v", got)
	}
	if got[0].Start != 5 || got[1].Start != 15 {
		t.Errorf("unexpected positions %+v", got)
	}
}

func TestFindNearMatchesEmptyInput(t *testing.T) {
	if got := FindNearMatches("", "rock", 2); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
	if got := FindNearMatches("rock", "", 2); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestResolveExactMatchIsIdempotent(t *testing.T) {
	genres := []string{"indie pop", "classical", "drum and bass", "k-pop"}
	r := newTestResolver(t, genres...)
	for _, g := range genres {
		res := r.Resolve([]string{g})
		if res.Genre != g || res.Method != MethodExact {
			t.Errorf("Resolve(%q) = %+v", g, res)
		}
	}
}

func TestResolveCaseInsensitiveWords(t *testing.T) {
	r := newTestResolver(t, "indie pop", "classical")
	res := r.Resolve([]string{"Indie", "Pop"})
	if res.Genre != "indie pop" || res.Method != MethodExact {
		t.Errorf("got %+v, want exact indie pop", res)
	}
}

func TestResolveFuzzy(t *testing.T) {
	r := newTestResolver(t, "indie pop")
	res := r.Resolve([]string{"indy", "pop"})
	if res.Genre != "indie pop" || res.Method != MethodFuzzy {
		t.Errorf("got %+v, want fuzzy indie pop", res)
	}
	if res.Input != "indy pop" {
		t.Errorf("Input = %q", res.Input)
	}
}

func TestResolveFuzzyTrimsWhitespace(t *testing.T) {
	// " rock" and "rock" are both one edit away; the longer span wins and
	// must be trimmed before the catalog lookup.
	r := newTestResolver(t, "classical", "rock")
	matches := FindNearMatches("xrock", r.catalog.Corpus(), MaxEditDistance)
	if len(matches) == 0 || matches[0].Matched != " rock" {
		t.Fatalf("expected untrimmed span \" rock\", got %+v", matches)
	}
	res := r.Resolve([]string{"xrock"})
	if res.Genre != "rock" || res.Method != MethodFuzzy {
		t.Errorf("got %+v, want fuzzy rock", res)
	}
}

func TestResolveEmptyPicksCatalogMember(t *testing.T) {
	r := newTestResolver(t, "indie pop", "classical", "metal")
	inputs := [][]string{nil, {}, {""}, {"", "pop"}}
	for _, in := range inputs {
		for i := 0; i < 20; i++ {
			res := r.Resolve(in)
			if res.Method != MethodRandom {
				t.Fatalf("Resolve(%q) method = %s, want random", in, res.Method)
			}
			if !r.catalog.Contains(res.Genre) {
				t.Fatalf("Resolve(%q) = %q, not in catalog", in, res.Genre)
			}
		}
	}
}

func TestResolveUnmatchedFallsBackToCatalog(t *testing.T) {
	r := newTestResolver(t, "indie pop", "classical")
	res := r.Resolve([]string{"zzzzzzzzzz"})
	if res.Method != MethodRandom {
		t.Errorf("method = %s, want random", res.Method)
	}
	if !r.catalog.Contains(res.Genre) {
		t.Errorf("fallback %q not in catalog", res.Genre)
	}
}

func TestResolveDeterministicWithSeed(t *testing.T) {
	c, _ := NewCatalog([]string{"a1", "b2", "c3", "d4", "e5"})
	first := NewResolver(c, rand.New(rand.NewPCG(7, 7)), logger.Discard()).Resolve(nil)
	second := NewResolver(c, rand.New(rand.NewPCG(7, 7)), logger.Discard()).Resolve(nil)
	if first.Genre != second.Genre {
		t.Errorf("same seed gave %q and %q", first.Genre, second.Genre)
	}
}

func TestShippedCatalogResolvesCommonGenres(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "genres.json"))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	r := NewResolver(c, rand.New(rand.NewPCG(1, 2)), logger.Discard())

	tests := []struct {
		input  string
		genre  string
		method Method
	}{
		{"pop", "pop", MethodExact},
		{"Jazz", "jazz", MethodExact},
		{"classical", "classical", MethodExact},
		{"blues", "blues", MethodExact},
		{"metal", "metal", MethodExact},
		{"country", "country", MethodExact},
		{"electronic", "electronic", MethodExact},
		{"hip hop", "hip hop", MethodExact},
		{"clasical", "classical", MethodFuzzy},
		{"bluess", "blues", MethodFuzzy},
		{"jazzz", "jazz", MethodFuzzy},
		{"metall", "metal", MethodFuzzy},
		{"electronik", "electronic", MethodFuzzy},
		{"hip-hop", "hip hop", MethodFuzzy},
		{"indy pop", "indie pop", MethodFuzzy},
		{"drum n bass", "drum and bass", MethodFuzzy},
		{"shoegayze", "shoegaze", MethodFuzzy},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res := r.Resolve([]string{tt.input})
			if res.Genre != tt.genre || res.Method != tt.method {
				t.Errorf("Resolve(%q) = %s (%s), want %s (%s)", tt.input, res.Genre, res.Method, tt.genre, tt.method)
			}
		})
	}
}
