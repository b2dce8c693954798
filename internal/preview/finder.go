package preview

import (
	"context"

	"deepcut/internal/logger"
)

// Finder looks up a preview clip for a track in another catalog. An empty
// URL with a nil error means the catalog has no clip.
type Finder interface {
	Name() string
	FindPreview(ctx context.Context, artist, title string) (string, error)
}

// Chain tries multiple finders in order, returning the first non-empty URL.
type Chain struct {
	finders []Finder
	logger  *logger.Logger
}

// NewChain creates a Chain that queries finders in order.
func NewChain(finders []Finder, log *logger.Logger) *Chain {
	return &Chain{finders: finders, logger: log}
}

func (c *Chain) Name() string { return "chain" }

// FindPreview returns the first clip found and the name of the finder that
// produced it. Finder errors are logged and skipped.
func (c *Chain) FindPreview(ctx context.Context, artist, title string) (url, source string) {
	for _, f := range c.finders {
		if ctx.Err() != nil {
			return "", ""
		}
		u, err := f.FindPreview(ctx, artist, title)
		if err != nil {
			c.logger.Debug("preview finder %s failed: %v", f.Name(), err)
			continue
		}
		if u != "" {
			return u, f.Name()
		}
	}
	return "", ""
}
