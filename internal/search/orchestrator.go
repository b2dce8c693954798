package search

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"deepcut/internal/logger"
)

// DefaultMaxAttempts is the outer budget: sampled tracks evaluated against the
// threshold before giving up.
const DefaultMaxAttempts = 255

// Hooks lets callers observe a search without coupling output to it.
// OnAttempt may be called from several goroutines when Workers > 1.
type Hooks struct {
	OnAttempt func(step int, track Track, accepted bool)
}

// Result is the terminal state of a search. Found is false when the outer
// budget ran out, which is a normal outcome rather than an error.
type Result struct {
	Track    Track
	Found    bool
	Attempts int
}

// Orchestrator runs the outer search loop.
type Orchestrator struct {
	sampler     *Sampler
	rng         *rand.Rand
	logger      *logger.Logger
	maxAttempts int
	workers     int
	hooks       Hooks
}

// OrchestratorOptions configures an Orchestrator.
type OrchestratorOptions struct {
	MaxAttempts int
	// Workers > 1 samples concurrently; each worker gets its own random
	// source split from rng.
	Workers int
	Hooks   Hooks
}

// NewOrchestrator creates an Orchestrator around sampler.
func NewOrchestrator(sampler *Sampler, rng *rand.Rand, log *logger.Logger, opts OrchestratorOptions) *Orchestrator {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{
		sampler:     sampler,
		rng:         rng,
		logger:      log,
		maxAttempts: opts.MaxAttempts,
		workers:     opts.Workers,
		hooks:       opts.Hooks,
	}
}

// FindTrack samples tracks of genre until one is accepted under threshold or
// the outer budget is spent. Sampler exhaustion is returned as an error
// without further iterations.
func (o *Orchestrator) FindTrack(ctx context.Context, genre string, threshold int) (Result, error) {
	if o.workers == 1 {
		return o.findSequential(ctx, genre, threshold)
	}
	return o.findConcurrent(ctx, genre, threshold)
}

func (o *Orchestrator) findSequential(ctx context.Context, genre string, threshold int) (Result, error) {
	for step := 0; step < o.maxAttempts; step++ {
		track, err := o.sampler.Sample(ctx, genre)
		if err != nil {
			return Result{Attempts: step + 1}, err
		}

		accepted := Accepts(track, threshold)
		o.observe(step, track, accepted)
		if accepted {
			return Result{Track: track, Found: true, Attempts: step + 1}, nil
		}
	}

	o.logger.Debug("outer budget of %d attempts exhausted for %q", o.maxAttempts, genre)
	return Result{Attempts: o.maxAttempts}, nil
}

var errFound = errors.New("track found")

func (o *Orchestrator) findConcurrent(ctx context.Context, genre string, threshold int) (Result, error) {
	g, gctx := errgroup.WithContext(ctx)

	var (
		next    atomic.Int64
		used    atomic.Int64
		mu      sync.Mutex
		result  Result
		claimed bool
	)

	for w := 0; w < o.workers; w++ {
		sampler := o.sampler.withRand(rand.New(rand.NewPCG(o.rng.Uint64(), o.rng.Uint64())))
		g.Go(func() error {
			for {
				step := int(next.Add(1)) - 1
				if step >= o.maxAttempts {
					return nil
				}
				used.Add(1)

				track, err := sampler.Sample(gctx, genre)
				if err != nil {
					return err
				}

				accepted := Accepts(track, threshold)
				o.observe(step, track, accepted)
				if !accepted {
					continue
				}

				mu.Lock()
				if !claimed {
					claimed = true
					result = Result{Track: track, Found: true}
				}
				mu.Unlock()
				return errFound
			}
		})
	}

	err := g.Wait()
	attempts := int(used.Load())

	mu.Lock()
	defer mu.Unlock()
	if claimed {
		result.Attempts = attempts
		return result, nil
	}
	if err != nil {
		return Result{Attempts: attempts}, err
	}
	o.logger.Debug("outer budget of %d attempts exhausted for %q", o.maxAttempts, genre)
	return Result{Attempts: attempts}, nil
}

func (o *Orchestrator) observe(step int, track Track, accepted bool) {
	o.logger.Debug("step %d: %q by %q (popularity %d, accepted=%t)", step, track.Name, track.LeadArtist(), track.Popularity, accepted)
	if o.hooks.OnAttempt != nil {
		o.hooks.OnAttempt(step, track, accepted)
	}
}
