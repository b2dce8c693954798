package lyrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

type Result struct {
	Synced string // LRC format with timestamps, empty if unavailable
	Plain  string // plain text lyrics, empty if unavailable
}

// Text returns the plain lyrics, falling back to the synced lyrics with
// their timestamps stripped.
func (r Result) Text() string {
	if r.Plain != "" {
		return r.Plain
	}
	if r.Synced == "" {
		return ""
	}
	lines := strings.Split(r.Synced, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "[") {
			if end := strings.Index(line, "]"); end > 0 {
				line = strings.TrimSpace(line[end+1:])
			}
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Empty reports whether no lyrics were found.
func (r Result) Empty() bool {
	return r.Synced == "" && r.Plain == ""
}

type Client struct {
	http   *resty.Client
	apiURL string
}

func NewClient() *Client {
	return &Client{
		http: resty.New().
			SetTimeout(10*time.Second).
			SetHeader("User-Agent", "deepcut/1.0").
			// Only network-level errors are retried; API errors would fail identically.
			SetRetryCount(1).
			SetRetryWaitTime(2 * time.Second),
		apiURL: "https://lrclib.net/api/get",
	}
}

// Fetch retrieves lyrics for the given track from LRCLib.
// Returns empty Result (no error) when lyrics are not found.
func (c *Client) Fetch(ctx context.Context, artist, title, album string) (Result, error) {
	params := map[string]string{
		"artist_name": artist,
		"track_name":  title,
	}
	if album != "" {
		params["album_name"] = album
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.apiURL)
	if err != nil {
		return Result{}, fmt.Errorf("lrclib request failed: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return Result{}, nil
	}
	if resp.StatusCode() != http.StatusOK {
		return Result{}, fmt.Errorf("lrclib returned status %d", resp.StatusCode())
	}

	var apiResp apiResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return Result{}, fmt.Errorf("failed to decode lrclib response: %w", err)
	}

	return Result{
		Synced: apiResp.SyncedLyrics,
		Plain:  apiResp.PlainLyrics,
	}, nil
}

type apiResponse struct {
	SyncedLyrics string `json:"syncedLyrics"`
	PlainLyrics  string `json:"plainLyrics"`
}
