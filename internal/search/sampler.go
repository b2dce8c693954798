package search

import (
	"context"
	"errors"
	"math/rand/v2"
	"net"
	"time"

	"deepcut/internal/logger"
)

const (
	// DefaultSampleAttempts is the inner budget: randomized queries tried per
	// Sample call before giving up.
	DefaultSampleAttempts = 64
	// DefaultMaxOffset is the largest paging offset drawn.
	DefaultMaxOffset = 200
)

// Wildcards are the randomized search terms: for each vowel, "contains",
// "starts with" and "ends with". The search API has no random-track endpoint,
// so these spread queries over different slices of a genre.
var Wildcards = []string{
	"%a%", "a%", "%a",
	"%e%", "e%", "%e",
	"%i%", "i%", "%i",
	"%o%", "o%", "%o",
	"%u%", "u%", "%u",
}

// SamplerOptions configures a Sampler. Non-positive Attempts, negative
// MaxOffset and empty Wildcards select the defaults.
type SamplerOptions struct {
	Attempts       int
	MaxOffset      int
	RequestTimeout time.Duration
	Wildcards      []string
}

// Sampler draws one random track of a genre per call.
type Sampler struct {
	searcher  Searcher
	rng       *rand.Rand
	logger    *logger.Logger
	attempts  int
	maxOffset int
	timeout   time.Duration
	wildcards []string
}

// NewSampler creates a Sampler. rng must not be shared with other goroutines.
func NewSampler(s Searcher, rng *rand.Rand, log *logger.Logger, opts SamplerOptions) *Sampler {
	if opts.Attempts <= 0 {
		opts.Attempts = DefaultSampleAttempts
	}
	if opts.MaxOffset < 0 {
		opts.MaxOffset = DefaultMaxOffset
	}
	if len(opts.Wildcards) == 0 {
		opts.Wildcards = Wildcards
	}
	return &Sampler{
		searcher:  s,
		rng:       rng,
		logger:    log,
		attempts:  opts.Attempts,
		maxOffset: opts.MaxOffset,
		timeout:   opts.RequestTimeout,
		wildcards: opts.Wildcards,
	}
}

// withRand returns a copy of s drawing from rng.
func (s *Sampler) withRand(rng *rand.Rand) *Sampler {
	clone := *s
	clone.rng = rng
	return &clone
}

// Attempts returns the inner budget.
func (s *Sampler) Attempts() int { return s.attempts }

// NewQuery draws a fresh wildcard and offset for genre.
func (s *Sampler) NewQuery(genre string) Query {
	return Query{
		Wildcard: s.wildcards[s.rng.IntN(len(s.wildcards))],
		Genre:    genre,
		Offset:   s.rng.IntN(s.maxOffset + 1),
	}
}

// Sample returns a random track of genre. Empty pages and request timeouts
// each consume one attempt; once the budget is spent it fails with
// ExhaustedAttemptsError. Other search errors are returned immediately.
func (s *Sampler) Sample(ctx context.Context, genre string) (Track, error) {
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Track{}, err
		}
		q := s.NewQuery(genre)

		tracks, err := s.search(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return Track{}, ctx.Err()
			}
			if !isTimeout(err) {
				return Track{}, err
			}
			s.logger.Debug("attempt %d/%d timed out (wildcard=%s offset=%d)", attempt, s.attempts, q.Wildcard, q.Offset)
			continue
		}

		if track, ok := s.pick(tracks); ok {
			return track, nil
		}
		s.logger.Debug("attempt %d/%d returned no tracks (wildcard=%s offset=%d)", attempt, s.attempts, q.Wildcard, q.Offset)
	}

	return Track{}, &ExhaustedAttemptsError{Genre: genre, Attempts: s.attempts}
}

func (s *Sampler) search(ctx context.Context, q Query) ([]Track, error) {
	if s.timeout <= 0 {
		return s.searcher.SearchTracks(ctx, q)
	}
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.searcher.SearchTracks(reqCtx, q)
}

func (s *Sampler) pick(tracks []Track) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	return tracks[s.rng.IntN(len(tracks))], true
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
