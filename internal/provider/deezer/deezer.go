package deezer

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

// Client is a Deezer API client that implements preview.Finder.
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// New creates a new Deezer client.
func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiURL:     "https://api.deezer.com",
	}
}

func (c *Client) Name() string { return "deezer" }

// FindPreview searches Deezer for the track and returns the preview clip of
// the first result by the same artist.
func (c *Client) FindPreview(ctx context.Context, artist, title string) (string, error) {
	q := buildQuery(artist, title)
	if q == "" {
		return "", nil
	}

	reqURL := fmt.Sprintf("%s/search?q=%s&limit=5", c.apiURL, url.QueryEscape(q))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create deezer request: %w", err)
	}
	req.Header.Set("User-Agent", "deepcut/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("deezer search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("deezer search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return "", fmt.Errorf("failed to decode deezer response: %w", err)
	}

	if searchResp.Error != nil {
		return "", fmt.Errorf("deezer API error: %s", searchResp.Error.Message)
	}

	return pickPreview(searchResp.Data, artist), nil
}

func buildQuery(artist, title string) string {
	escape := func(s string) string {
		return strings.TrimSpace(strings.ReplaceAll(s, "\"", ""))
	}
	var parts []string
	if t := escape(title); t != "" {
		parts = append(parts, "track:\""+t+"\"")
	}
	if a := escape(artist); a != "" {
		parts = append(parts, "artist:\""+a+"\"")
	}
	return strings.Join(parts, " ")
}

// pickPreview skips results by other artists; Deezer's search is loose and
// will happily return covers.
func pickPreview(items []trackItem, artist string) string {
	want := strings.ToLower(strings.TrimSpace(artist))
	for _, item := range items {
		if item.Preview == "" {
			continue
		}
		if want != "" && strings.ToLower(strings.TrimSpace(item.Artist.Name)) != want {
			continue
		}
		return item.Preview
	}
	return ""
}

// Deezer API response types

type searchResponse struct {
	Data  []trackItem `json:"data"`
	Error *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type trackItem struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	TitleShort string `json:"title_short"`
	Preview    string `json:"preview"`
	Artist     artist `json:"artist"`
}

type artist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
