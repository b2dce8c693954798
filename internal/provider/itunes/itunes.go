package itunes

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"deepcut/internal/preview"
)

var _ preview.Finder = (*Client)(nil)

// Client is an iTunes Search API client that implements preview.Finder.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new iTunes client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://itunes.apple.com/search",
	}
}

func (c *Client) Name() string { return "itunes" }

// FindPreview queries the iTunes Search API and returns the preview clip of
// the first song by the same artist.
func (c *Client) FindPreview(ctx context.Context, artist, title string) (string, error) {
	term := buildTerm(artist, title)
	if term == "" {
		return "", nil
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", "5")

	reqURL := fmt.Sprintf("%s?%s", c.apiURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create itunes request: %w", err)
	}
	req.Header.Set("User-Agent", "deepcut/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("itunes search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("itunes search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("failed to decode itunes response: %w", err)
	}

	return pickPreview(searchResp.Results, artist), nil
}

func buildTerm(artist, title string) string {
	var parts []string
	if t := strings.TrimSpace(title); t != "" {
		parts = append(parts, t)
	}
	if a := strings.TrimSpace(artist); a != "" {
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

func pickPreview(items []resultItem, artist string) string {
	want := strings.ToLower(strings.TrimSpace(artist))
	for _, item := range items {
		if item.Kind != "" && item.Kind != "song" {
			continue
		}
		if item.PreviewURL == "" {
			continue
		}
		if want != "" && strings.ToLower(strings.TrimSpace(item.ArtistName)) != want {
			continue
		}
		return item.PreviewURL
	}
	return ""
}

// iTunes Search API response types

type searchResponse struct {
	ResultCount int          `json:"resultCount"`
	Results     []resultItem `json:"results"`
}

type resultItem struct {
	Kind           string `json:"kind"`
	TrackName      string `json:"trackName"`
	ArtistName     string `json:"artistName"`
	CollectionName string `json:"collectionName"`
	PreviewURL     string `json:"previewUrl"`
}
