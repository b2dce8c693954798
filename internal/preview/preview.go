// Package preview saves the preview clip of a found track.
package preview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"deepcut/internal/logger"
	"deepcut/internal/search"
	"deepcut/pkg/utils"
)

// ErrNoPreview is returned for tracks without a preview clip.
var ErrNoPreview = errors.New("track has no preview url")

// Downloader fetches preview clips into an output directory.
type Downloader struct {
	http      *resty.Client
	outputDir string
	logger    *logger.Logger
}

// NewDownloader creates a Downloader saving into outputDir.
func NewDownloader(outputDir string, log *logger.Logger) *Downloader {
	return &Downloader{
		http: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "deepcut/1.0").
			SetRetryCount(2).
			SetRetryWaitTime(time.Second),
		outputDir: outputDir,
		logger:    log,
	}
}

// FileName returns the file name a track's clip is saved under. The
// extension follows the preview URL so taglib picks the right container;
// Spotify clips carry none and are mp3.
func FileName(track search.Track) string {
	return utils.SanitizeFileName(fmt.Sprintf("%s - %s", track.LeadArtist(), track.Name)) + clipExt(track.PreviewURL)
}

func clipExt(previewURL string) string {
	u, err := url.Parse(previewURL)
	if err != nil {
		return ".mp3"
	}
	switch ext := strings.ToLower(path.Ext(u.Path)); ext {
	case ".m4a", ".aac", ".mp3":
		return ext
	}
	return ".mp3"
}

// Save downloads the track's preview, tags it and moves it into the output
// directory. A tagging failure is logged and the untagged clip is kept.
func (d *Downloader) Save(ctx context.Context, track search.Track, genre string) (string, error) {
	if !track.HasPreview() {
		return "", ErrNoPreview
	}

	tempDir, err := utils.CreateTempDir()
	if err != nil {
		return "", err
	}
	defer utils.Cleanup(tempDir)

	name := FileName(track)
	tempPath := filepath.Join(tempDir, name)

	resp, err := d.http.R().
		SetContext(ctx).
		SetOutput(tempPath).
		Get(track.PreviewURL)
	if err != nil {
		return "", fmt.Errorf("preview download failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("preview download returned status %d", resp.StatusCode())
	}
	d.logger.Debug("downloaded preview for %q (%d bytes)", track.Name, resp.Size())

	tags := Tags{
		Title:      track.Name,
		Artist:     track.ArtistNames(),
		Album:      track.Album,
		Genre:      genre,
		Popularity: track.Popularity,
	}
	if err := WriteTags(tempPath, tags); err != nil {
		d.logger.Warn("Could not tag preview: %v", err)
	}

	dst := filepath.Join(d.outputDir, name)
	if err := utils.MoveFile(tempPath, dst); err != nil {
		return "", err
	}
	return dst, nil
}
