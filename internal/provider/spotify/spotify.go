package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"deepcut/internal/logger"
	"deepcut/internal/search"
)

const (
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultAPIURL   = "https://api.spotify.com/v1"
)

// ErrAuth indicates the token endpoint did not issue an access token.
var ErrAuth = errors.New("spotify authentication failed")

// AuthError wraps the underlying token failure.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("spotify authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// ErrRateLimited indicates Spotify kept answering 429.
var ErrRateLimited = errors.New("spotify rate limit exceeded")

// RateLimitError carries the server's Retry-After hint, zero when absent.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("spotify rate limit exceeded (retry after %s)", e.RetryAfter)
	}
	return "spotify rate limit exceeded"
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }

// Options tunes a Client. Zero values select defaults.
type Options struct {
	// RequestsPerSecond caps search calls. Zero disables limiting.
	RequestsPerSecond float64
	Timeout           time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Client is a Spotify Web API client that implements search.Searcher.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *logger.Logger

	maxRetries  int
	baseBackoff time.Duration

	mu     sync.Mutex
	tokens oauth2.TokenSource

	// Overridable for testing
	tokenURL string
	apiURL   string
}

var _ search.Searcher = (*Client)(nil)

// New creates a new Spotify client.
func New(clientID, clientSecret string, log *logger.Logger, opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: timeout},
		limiter:      limiter,
		logger:       log,
		maxRetries:   opts.MaxRetries,
		baseBackoff:  opts.RetryBackoff,
		tokenURL:     defaultTokenURL,
		apiURL:       defaultAPIURL,
	}
}

func (c *Client) Name() string { return "spotify" }

// Authenticate fetches an access token up front so bad credentials fail
// before any searching starts.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.getToken(ctx)
	return err
}

// SearchTracks runs one randomized genre search and returns the page items.
func (c *Client) SearchTracks(ctx context.Context, q search.Query) ([]search.Track, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.waitLimiter(ctx); err != nil {
		return nil, err
	}

	reqURL := c.apiURL + "/search?" + encodeSearchParams(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return nil, fmt.Errorf("spotify search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("spotify search returned %d: %s", resp.StatusCode, body)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode spotify response: %w", err)
	}

	return parseSearchResults(searchResp), nil
}

// waitLimiter blocks until the limiter admits a call. A wait that would run
// past ctx's deadline sleeps out the deadline instead of failing early, so the
// caller sees an ordinary request timeout.
func (c *Client) waitLimiter(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	err := c.limiter.Wait(ctx)
	if err == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
		<-ctx.Done()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("spotify rate limiter: %w", ctxErr)
	}
	return fmt.Errorf("spotify rate limiter: %w", err)
}

// encodeSearchParams builds the query string. The genre filter is quoted and
// spaces are sent as %20 rather than '+'.
func encodeSearchParams(q search.Query) string {
	params := url.Values{}
	params.Set("q", fmt.Sprintf(`%s genre:"%s"`, q.Wildcard, q.Genre))
	params.Set("type", "track")
	params.Set("offset", strconv.Itoa(q.Offset))
	return strings.ReplaceAll(params.Encode(), "+", "%20")
}

// getToken returns a valid access token. The underlying source caches the
// token and refreshes it shortly before expiry.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.tokens == nil {
		cfg := &clientcredentials.Config{
			ClientID:     c.clientID,
			ClientSecret: c.clientSecret,
			TokenURL:     c.tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		// The source outlives any single request, so it gets its own context.
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		c.tokens = cfg.TokenSource(tokenCtx)
	}
	ts := c.tokens
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	tok, err := ts.Token()
	if err != nil {
		return "", &AuthError{Err: err}
	}
	if tok.AccessToken == "" {
		return "", &AuthError{Err: errors.New("response missing access_token")}
	}
	return tok.AccessToken, nil
}

func parseSearchResults(resp searchResponse) []search.Track {
	results := make([]search.Track, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		artists := make([]search.Artist, 0, len(item.Artists))
		for _, a := range item.Artists {
			artists = append(artists, search.Artist{Name: a.Name})
		}

		var preview string
		if item.PreviewURL != nil {
			preview = *item.PreviewURL
		}

		results = append(results, search.Track{
			ID:         item.ID,
			Name:       item.Name,
			Artists:    artists,
			Album:      item.Album.Name,
			Popularity: item.Popularity,
			PreviewURL: preview,
			URL:        item.ExternalURLs.Spotify,
		})
	}
	return results
}

// Spotify API response types

type searchResponse struct {
	Tracks struct {
		Items []trackItem `json:"items"`
	} `json:"tracks"`
}

type trackItem struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Artists      []artist     `json:"artists"`
	Album        albumInfo    `json:"album"`
	Popularity   int          `json:"popularity"`
	PreviewURL   *string      `json:"preview_url"`
	ExternalURLs externalURLs `json:"external_urls"`
}

type artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type albumInfo struct {
	Name string `json:"name"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}
