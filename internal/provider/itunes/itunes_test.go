package itunes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFindPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("term") != "Holocene Bon Iver" {
			t.Errorf("term = %q", q.Get("term"))
		}
		if q.Get("entity") != "song" || q.Get("media") != "music" {
			t.Errorf("unexpected filters: %v", q)
		}
		json.NewEncoder(w).Encode(searchResponse{
			ResultCount: 3,
			Results: []resultItem{
				{Kind: "music-video", ArtistName: "Bon Iver", PreviewURL: "https://audio.example.com/video.m4v"},
				{Kind: "song", ArtistName: "Karaoke Stars", PreviewURL: "https://audio.example.com/karaoke.m4a"},
				{Kind: "song", ArtistName: "Bon Iver", TrackName: "Holocene", PreviewURL: "https://audio.example.com/holocene.m4a"},
			},
		})
	}))
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	got, err := c.FindPreview(context.Background(), "Bon Iver", "Holocene")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://audio.example.com/holocene.m4a" {
		t.Errorf("FindPreview = %q, want holocene.m4a", got)
	}
}

func TestFindPreviewNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{})
	}))
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	got, err := c.FindPreview(context.Background(), "Bon Iver", "Holocene")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("FindPreview = %q, want empty", got)
	}
}

func TestFindPreviewHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := New()
	c.apiURL = srv.URL

	if _, err := c.FindPreview(context.Background(), "Bon Iver", "Holocene"); err == nil {
		t.Fatal("expected error for 403 response")
	}
}
