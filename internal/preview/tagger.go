package preview

import (
	"fmt"

	"go.senan.xyz/taglib"
)

// Tags is the metadata written to a saved preview clip.
type Tags struct {
	Title      string
	Artist     string
	Album      string
	Genre      string
	Popularity int
}

// WriteTags writes the given tags to an audio file.
func WriteTags(path string, info Tags) error {
	tags := make(map[string][]string)

	if info.Title != "" {
		tags[taglib.Title] = []string{info.Title}
	}
	if info.Artist != "" {
		tags[taglib.Artist] = []string{info.Artist}
	}
	if info.Album != "" {
		tags[taglib.Album] = []string{info.Album}
	}
	if info.Genre != "" {
		tags[taglib.Genre] = []string{info.Genre}
	}
	tags[taglib.Comment] = []string{fmt.Sprintf("popularity %d", info.Popularity)}

	if err := taglib.WriteTags(path, tags, 0); err != nil {
		return fmt.Errorf("failed to write tags to %s: %w", path, err)
	}
	return nil
}
