package preview

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"go.senan.xyz/taglib"

	"deepcut/internal/logger"
	"deepcut/internal/search"
)

// createTestAudioFile generates a minimal MP3 using ffmpeg.
// Skips the test if ffmpeg is not available.
func createTestAudioFile(t *testing.T, dir string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available, skipping tagger test")
	}

	path := filepath.Join(dir, "test.mp3")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "anullsrc=r=44100:cl=mono", "-t", "0.1", "-q:a", "9", path)
	if err := cmd.Run(); err != nil {
		t.Fatalf("failed to create test audio file: %v", err)
	}
	return path
}

func TestFileName(t *testing.T) {
	tr := search.Track{Name: "Song/Two", Artists: []search.Artist{{Name: "Nobody"}}}
	if got, want := FileName(tr), "Nobody - Song_Two.mp3"; got != want {
		t.Errorf("FileName = %q, want %q", got, want)
	}
}

func TestFileNameFollowsPreviewExtension(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://p.scdn.co/mp3-preview/abc123?cid=x", "A - B.mp3"},
		{"https://audio-ssl.itunes.apple.com/itunes-assets/x/mzaf_1.plus.aac.p.m4a", "A - B.m4a"},
		{"https://cdnt-preview.dzcdn.net/api/1/1/a/b/c/0/clip.MP3?hdnea=1", "A - B.mp3"},
		{"", "A - B.mp3"},
	}
	for _, tt := range tests {
		tr := search.Track{Name: "B", Artists: []search.Artist{{Name: "A"}}, PreviewURL: tt.url}
		if got := FileName(tr); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSaveNoPreview(t *testing.T) {
	d := NewDownloader(t.TempDir(), logger.Discard())
	_, err := d.Save(context.Background(), search.Track{Name: "x"}, "rock")
	if !errors.Is(err, ErrNoPreview) {
		t.Fatalf("expected ErrNoPreview, got %v", err)
	}
}

func TestSaveDownloadsClip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("not really an mp3"))
	}))
	defer srv.Close()

	out := t.TempDir()
	d := NewDownloader(out, logger.Discard())
	tr := search.Track{
		Name:       "Quiet Song",
		Artists:    []search.Artist{{Name: "Nobody"}},
		Popularity: 4,
		PreviewURL: srv.URL + "/clip.mp3",
	}

	path, err := d.Save(context.Background(), tr, "drone")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if want := filepath.Join(out, "Nobody - Quiet Song.mp3"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved clip: %v", err)
	}
	if string(data) != "not really an mp3" {
		t.Errorf("unexpected clip content %q", data)
	}
}

func TestSaveHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	out := t.TempDir()
	d := NewDownloader(out, logger.Discard())
	tr := search.Track{Name: "x", Artists: []search.Artist{{Name: "y"}}, PreviewURL: srv.URL}

	if _, err := d.Save(context.Background(), tr, "rock"); err == nil {
		t.Fatal("expected error for 404 preview")
	}
	entries, _ := os.ReadDir(out)
	if len(entries) != 0 {
		t.Errorf("nothing should be saved on failure, found %d entries", len(entries))
	}
}

func TestWriteTags(t *testing.T) {
	path := createTestAudioFile(t, t.TempDir())

	info := Tags{
		Title:      "Quiet Song",
		Artist:     "Nobody, Someone",
		Album:      "Basement Tapes",
		Genre:      "drone",
		Popularity: 3,
	}
	if err := WriteTags(path, info); err != nil {
		t.Fatalf("WriteTags failed: %v", err)
	}

	tags, err := taglib.ReadTags(path)
	if err != nil {
		t.Fatalf("failed to read tags: %v", err)
	}

	checks := map[string]string{
		taglib.Title:   "Quiet Song",
		taglib.Artist:  "Nobody, Someone",
		taglib.Album:   "Basement Tapes",
		taglib.Genre:   "drone",
		taglib.Comment: "popularity 3",
	}
	for key, want := range checks {
		got := ""
		if vals, ok := tags[key]; ok && len(vals) > 0 {
			got = vals[0]
		}
		if got != want {
			t.Errorf("tag %s = %q, want %q", key, got, want)
		}
	}
}

func TestWriteTagsNonexistentFile(t *testing.T) {
	if err := WriteTags("/nonexistent/file.mp3", Tags{Title: "x"}); err == nil {
		t.Error("expected error for nonexistent file")
	}
}
