package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"deepcut/internal/config"
	"deepcut/internal/credentials"
	"deepcut/internal/genre"
	"deepcut/internal/history"
	"deepcut/internal/logger"
	"deepcut/internal/lyrics"
	"deepcut/internal/preview"
	"deepcut/internal/provider/deezer"
	"deepcut/internal/provider/itunes"
	"deepcut/internal/provider/spotify"
	"deepcut/internal/search"
)

// EnvFile is loaded for credentials when present in the working directory.
const EnvFile = ".env"

type Hooks struct {
	OnGenreResolved func(res genre.Resolution)
	OnAttempt       func(step int, track search.Track, accepted bool)
	OnWarning       func(msg string)
}

// Outcome is everything a run produced. Result.Found is false when the outer
// budget ran out. PreviewSource names the fallback catalog when the clip did
// not come from Spotify.
type Outcome struct {
	Resolution    genre.Resolution
	Result        search.Result
	Threshold     int
	HistoryID     string
	PreviewSource string
	PreviewPath   string
	Lyrics        lyrics.Result
}

// Runner holds the long-lived collaborators of a search run.
type Runner struct {
	cfg      config.Config
	log      *logger.Logger
	catalog  *genre.Catalog
	searcher search.Searcher
	history  *history.Store
	lyrics   *lyrics.Client
	previews *preview.Downloader
	fallback *preview.Chain

	mu  sync.Mutex
	rng *rand.Rand
}

// Setup loads the genre catalog and credentials, authenticates against the
// catalog API and opens the history store. Missing files fail before any
// network call.
func Setup(ctx context.Context, cfg config.Config, log *logger.Logger) (*Runner, error) {
	catalog, err := genre.LoadCatalog(config.ExpandHome(cfg.GenresFile))
	if err != nil {
		return nil, err
	}
	log.Debug("loaded %d genres from %s", catalog.Len(), cfg.GenresFile)

	store := credentials.Store{
		Inline:  credentials.Credentials{ClientID: cfg.ClientID, ClientSecret: cfg.ClientSecret},
		EnvFile: EnvFile,
		File:    config.ExpandHome(cfg.CredentialsFile),
	}
	creds, err := store.Load()
	if err != nil {
		return nil, err
	}

	client := spotify.New(creds.ClientID, creds.ClientSecret, log, spotify.Options{
		RequestsPerSecond: float64(cfg.RequestsPerSecond),
		Timeout:           cfg.RequestTimeout(),
	})
	if err := client.Authenticate(ctx); err != nil {
		return nil, err
	}

	var hist *history.Store
	if cfg.HistoryDB != "" {
		hist, err = history.Open(config.ExpandHome(cfg.HistoryDB))
		if err != nil {
			log.Warn("History disabled: %v", err)
			hist = nil
		}
	}

	return New(cfg, log, catalog, client, hist), nil
}

// New assembles a Runner from ready collaborators. hist may be nil.
func New(cfg config.Config, log *logger.Logger, catalog *genre.Catalog, searcher search.Searcher, hist *history.Store) *Runner {
	r := &Runner{
		cfg:      cfg,
		log:      log,
		catalog:  catalog,
		searcher: searcher,
		history:  hist,
		rng:      newRand(cfg.Seed),
	}
	if cfg.FetchLyrics {
		r.lyrics = lyrics.NewClient()
	}
	if cfg.PreviewDir != "" {
		r.previews = preview.NewDownloader(config.ExpandHome(cfg.PreviewDir), log)
	}
	if cfg.PreviewFallback {
		r.fallback = preview.NewChain([]preview.Finder{deezer.New(), itunes.New()}, log)
	}
	return r
}

// WithPreviewFinders replaces the fallback chain used for tracks without a
// Spotify preview. Passing no finders disables the fallback.
func (r *Runner) WithPreviewFinders(finders ...preview.Finder) *Runner {
	if len(finders) == 0 {
		r.fallback = nil
		return r
	}
	r.fallback = preview.NewChain(finders, r.log)
	return r
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// Catalog returns the loaded genre catalog.
func (r *Runner) Catalog() *genre.Catalog { return r.catalog }

// Close releases the history store.
func (r *Runner) Close() error {
	if r.history == nil {
		return nil
	}
	return r.history.Close()
}

// Run executes one search: resolve genre, sample until a track is accepted,
// fill a missing preview from the fallback catalogs, record history, then
// optionally download the preview and fetch lyrics.
func (r *Runner) Run(ctx context.Context, words []string, threshold int, hooks Hooks) (Outcome, error) {
	if err := config.ValidateThreshold(threshold); err != nil {
		return Outcome{}, err
	}

	rng := r.splitRand()

	res := genre.NewResolver(r.catalog, rng, r.log).Resolve(words)
	if hooks.OnGenreResolved != nil {
		hooks.OnGenreResolved(res)
	}
	r.log.Info("Searching for a %s song with popularity below %d", res.Genre, threshold)

	sampler := search.NewSampler(r.searcher, rng, r.log, search.SamplerOptions{
		Attempts:       r.cfg.SampleAttempts,
		MaxOffset:      r.cfg.MaxOffset,
		RequestTimeout: r.cfg.RequestTimeout(),
	})
	orch := search.NewOrchestrator(sampler, rng, r.log, search.OrchestratorOptions{
		MaxAttempts: r.cfg.MaxAttempts,
		Workers:     r.cfg.Workers,
		Hooks:       search.Hooks{OnAttempt: hooks.OnAttempt},
	})

	result, err := orch.FindTrack(ctx, res.Genre, threshold)
	out := Outcome{Resolution: res, Result: result, Threshold: threshold}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.record(ctx, &out, hooks)
		}
		return out, fmt.Errorf("search for %q failed: %w", res.Genre, err)
	}

	if result.Found && !result.Track.HasPreview() && r.fallback != nil {
		if u, source := r.fallback.FindPreview(ctx, result.Track.LeadArtist(), result.Track.Name); u != "" {
			out.Result.Track.PreviewURL = u
			out.PreviewSource = source
			r.log.Debug("preview for %s found on %s", result.Track.ID, source)
		}
	}
	result = out.Result

	r.record(ctx, &out, hooks)

	if !result.Found {
		return out, nil
	}

	if r.previews != nil && result.Track.HasPreview() {
		path, err := r.previews.Save(ctx, result.Track, res.Genre)
		if err != nil {
			warn(r.log, hooks, fmt.Sprintf("preview download failed: %v", err))
		} else {
			out.PreviewPath = path
			r.log.Debug("saved preview to %s", path)
		}
	}

	if r.lyrics != nil {
		lr, err := r.lyrics.Fetch(ctx, result.Track.LeadArtist(), result.Track.Name, result.Track.Album)
		if err != nil {
			warn(r.log, hooks, fmt.Sprintf("lyrics lookup failed: %v", err))
		} else {
			out.Lyrics = lr
		}
	}

	return out, nil
}

// History returns the most recent recorded runs, newest first.
func (r *Runner) History(ctx context.Context, limit int) ([]history.Entry, error) {
	if r.history == nil {
		return nil, errors.New("history is disabled (history_db is empty)")
	}
	return r.history.Recent(ctx, limit)
}

// splitRand derives an independent source for one run so concurrent runs
// never share a generator.
func (r *Runner) splitRand() *rand.Rand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return rand.New(rand.NewPCG(r.rng.Uint64(), r.rng.Uint64()))
}

func (r *Runner) record(ctx context.Context, out *Outcome, hooks Hooks) {
	if r.history == nil {
		return
	}

	e := history.Entry{
		Input:     out.Resolution.Input,
		Genre:     out.Resolution.Genre,
		Method:    string(out.Resolution.Method),
		Threshold: out.Threshold,
		Attempts:  out.Result.Attempts,
		Found:     out.Result.Found,
	}
	if out.Result.Found {
		t := out.Result.Track
		e.TrackID = t.ID
		e.TrackName = t.Name
		e.Artist = t.ArtistNames()
		e.Popularity = t.Popularity
		e.PreviewURL = t.PreviewURL
	}

	saved, err := r.history.Record(context.WithoutCancel(ctx), e)
	if err != nil {
		warn(r.log, hooks, fmt.Sprintf("could not record history: %v", err))
		return
	}
	out.HistoryID = saved.ID
}

func warn(log *logger.Logger, hooks Hooks, msg string) {
	log.Warn("%s", strings.TrimSpace(msg))
	if hooks.OnWarning != nil {
		hooks.OnWarning(msg)
	}
}
