package genre

import (
	"math/rand/v2"
	"strings"

	"deepcut/internal/logger"
)

// MaxEditDistance bounds how far user input may be from a catalog entry.
const MaxEditDistance = 2

// Method records which branch produced a resolved genre.
type Method string

const (
	MethodExact  Method = "exact"
	MethodFuzzy  Method = "fuzzy"
	MethodRandom Method = "random"
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	Input  string
	Genre  string
	Method Method
}

// Resolver maps free-text input to a catalog entry. It is not safe for
// concurrent use because the random source is not.
type Resolver struct {
	catalog *Catalog
	rng     *rand.Rand
	logger  *logger.Logger
}

// NewResolver creates a Resolver drawing fallbacks from rng.
func NewResolver(catalog *Catalog, rng *rand.Rand, log *logger.Logger) *Resolver {
	return &Resolver{catalog: catalog, rng: rng, logger: log}
}

// Resolve returns a catalog entry for the given words. Empty input picks a
// random genre; unknown input is fuzzy matched and falls back to random.
func (r *Resolver) Resolve(words []string) Resolution {
	if len(words) == 0 || words[0] == "" {
		r.logger.Info("No genre chosen: selecting a genre at random...")
		return r.random("")
	}

	candidate := strings.ToLower(strings.Join(words, " "))
	if r.catalog.Contains(candidate) {
		return Resolution{Input: candidate, Genre: candidate, Method: MethodExact}
	}

	r.logger.Info("Genre entered was '%s', which is not in the list of genres supported. "+
		"Attempting to find similar genre via fuzzy search...", candidate)

	matches := FindNearMatches(candidate, r.catalog.Corpus(), MaxEditDistance)
	if len(matches) == 0 {
		r.logger.Info("Fuzzy search failed. Selecting a new genre at random...")
		return r.random(candidate)
	}

	matched := strings.TrimSpace(matches[0].Matched)
	if !r.catalog.Contains(matched) {
		r.logger.Debug("closest span %q is not a catalog entry", matched)
		r.logger.Info("Fuzzy search failed. Selecting a new genre at random...")
		return r.random(candidate)
	}

	r.logger.Info("New genre is '%s'.", matched)
	return Resolution{Input: candidate, Genre: matched, Method: MethodFuzzy}
}

func (r *Resolver) random(input string) Resolution {
	g := r.catalog.At(r.rng.IntN(r.catalog.Len()))
	r.logger.Info("New genre: %s", g)
	return Resolution{Input: input, Genre: g, Method: MethodRandom}
}
