// Package search samples random tracks from a genre-filtered catalog search
// until one falls under a popularity threshold.
package search

import (
	"context"
	"strings"
)

// Artist is a credited performer of a track.
type Artist struct {
	Name string
}

// Track is one entry of a search response.
type Track struct {
	ID         string
	Name       string
	Artists    []Artist
	Album      string
	Popularity int    // 0-100
	PreviewURL string // empty when the catalog has no preview clip
	URL        string
}

// LeadArtist returns the first credited artist or "".
func (t Track) LeadArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0].Name
}

// ArtistNames joins all credited artists.
func (t Track) ArtistNames() string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// HasPreview reports whether a preview clip is available.
func (t Track) HasPreview() bool {
	return t.PreviewURL != ""
}

// Query is a single randomized genre search. Built fresh for each attempt.
type Query struct {
	Wildcard string
	Genre    string
	Offset   int
}

// Searcher runs a track search against the upstream catalog. An empty,
// non-nil error-free result means the page had no items.
type Searcher interface {
	SearchTracks(ctx context.Context, q Query) ([]Track, error)
}
