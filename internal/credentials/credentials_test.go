package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Credentials
		wantErr error
	}{
		{
			name:    "dashboard format",
			content: `{"web": {"client_id": "abc", "client_secret": "xyz"}}`,
			want:    Credentials{ClientID: "abc", ClientSecret: "xyz"},
		},
		{
			name:    "flat format",
			content: `{"client_id": "abc", "client_secret": "xyz"}`,
			want:    Credentials{ClientID: "abc", ClientSecret: "xyz"},
		},
		{
			name:    "missing secret",
			content: `{"web": {"client_id": "abc"}}`,
			wantErr: ErrMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "client_secrets.json", tt.content)
			got, err := LoadFile(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, ErrMissing) {
		t.Errorf("expected ErrMissing, got %v", err)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeFile(t, "client_secrets.json", `{"web":`)
	_, err := LoadFile(path)
	if err == nil || errors.Is(err, ErrMissing) {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestStorePriority(t *testing.T) {
	t.Setenv(EnvClientID, "env-id")
	t.Setenv(EnvClientSecret, "env-secret")
	file := writeFile(t, "client_secrets.json", `{"web": {"client_id": "file-id", "client_secret": "file-secret"}}`)

	inline := Store{Inline: Credentials{ClientID: "in-id", ClientSecret: "in-secret"}, File: file}
	if got, _ := inline.Load(); got.ClientID != "in-id" {
		t.Errorf("inline should win, got %+v", got)
	}

	env := Store{Inline: Credentials{ClientID: "only-id"}, File: file}
	if got, _ := env.Load(); got.ClientID != "env-id" {
		t.Errorf("environment should win over file, got %+v", got)
	}
}

func TestStoreFallsBackToFile(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	file := writeFile(t, "client_secrets.json", `{"web": {"client_id": "file-id", "client_secret": "file-secret"}}`)

	got, err := Store{File: file}.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ClientID != "file-id" {
		t.Errorf("got %+v", got)
	}
}

func TestStoreEnvFile(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")
	os.Unsetenv(EnvClientID)
	os.Unsetenv(EnvClientSecret)
	envFile := writeFile(t, ".env", "SPOTIFY_CLIENT_ID=dot-id\nSPOTIFY_CLIENT_SECRET=dot-secret\n")

	got, err := Store{EnvFile: envFile}.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ClientID != "dot-id" || got.ClientSecret != "dot-secret" {
		t.Errorf("got %+v", got)
	}
}

func TestStoreNothingConfigured(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	_, err := Store{}.Load()
	if !errors.Is(err, ErrMissing) {
		t.Errorf("expected ErrMissing, got %v", err)
	}
}
