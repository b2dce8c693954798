// Package genre maps free-text genre input onto the fixed set of genre
// filters the search endpoint understands.
package genre

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrCatalogMissing is returned when the genre file does not exist.
	ErrCatalogMissing = errors.New("genre catalog not found")
	// ErrCatalogEmpty is returned when the genre file holds no usable entries.
	ErrCatalogEmpty = errors.New("genre catalog is empty")
)

// Catalog is an ordered, immutable set of canonical genre names. Entries are
// lowercase, trimmed and unique.
type Catalog struct {
	genres []string
	index  map[string]struct{}
}

// NewCatalog normalizes entries and drops blanks and duplicates while keeping
// the original order.
func NewCatalog(entries []string) (*Catalog, error) {
	c := &Catalog{index: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		g := strings.ToLower(strings.TrimSpace(e))
		if g == "" {
			continue
		}
		if _, dup := c.index[g]; dup {
			continue
		}
		c.index[g] = struct{}{}
		c.genres = append(c.genres, g)
	}
	if len(c.genres) == 0 {
		return nil, ErrCatalogEmpty
	}
	return c, nil
}

// LoadCatalog reads a JSON array of genre strings.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, path)
		}
		return nil, fmt.Errorf("failed to read genre catalog %s: %w", path, err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse genre catalog %s: %w", path, err)
	}

	c, err := NewCatalog(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Contains reports whether g is a canonical entry. No normalization is applied.
func (c *Catalog) Contains(g string) bool {
	_, ok := c.index[g]
	return ok
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.genres) }

// At returns the i-th entry.
func (c *Catalog) At(i int) string { return c.genres[i] }

// Genres returns a copy of the entries.
func (c *Catalog) Genres() []string {
	out := make([]string, len(c.genres))
	copy(out, c.genres)
	return out
}

// Corpus joins all entries with single spaces, the text fuzzy matching runs
// against.
func (c *Catalog) Corpus() string {
	return strings.Join(c.genres, " ")
}
