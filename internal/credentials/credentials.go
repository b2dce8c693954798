// Package credentials locates the Spotify application's client id and secret.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables consulted when no inline credentials are configured.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// ErrMissing is returned when no source supplies both values.
var ErrMissing = errors.New("spotify client credentials not found")

// Credentials holds a client-credentials pair.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Complete reports whether both values are present.
func (c Credentials) Complete() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// Store resolves credentials from, in order: inline values, the environment
// (after loading EnvFile if it exists), and a client_secrets.json file.
type Store struct {
	Inline  Credentials
	EnvFile string
	File    string
}

// Load returns the first complete credential pair.
func (s Store) Load() (Credentials, error) {
	if s.Inline.Complete() {
		return s.Inline, nil
	}

	if s.EnvFile != "" {
		if _, err := os.Stat(s.EnvFile); err == nil {
			if err := godotenv.Load(s.EnvFile); err != nil {
				return Credentials{}, fmt.Errorf("failed to load %s: %w", s.EnvFile, err)
			}
		}
	}
	env := Credentials{
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
	if env.Complete() {
		return env, nil
	}

	if s.File == "" {
		return Credentials{}, ErrMissing
	}
	return LoadFile(s.File)
}

// secretsFile mirrors the JSON downloaded from the Spotify developer dashboard
// ({"web": {...}}); a flat object is accepted as well.
type secretsFile struct {
	Web          *secretsEntry `json:"web"`
	ClientID     string        `json:"client_id"`
	ClientSecret string        `json:"client_secret"`
}

type secretsEntry struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// LoadFile reads credentials from a client_secrets.json file.
func LoadFile(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, fmt.Errorf("%w: %s does not exist", ErrMissing, path)
		}
		return Credentials{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var f secretsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	creds := Credentials{ClientID: f.ClientID, ClientSecret: f.ClientSecret}
	if f.Web != nil {
		creds = Credentials{ClientID: f.Web.ClientID, ClientSecret: f.Web.ClientSecret}
	}
	if !creds.Complete() {
		return Credentials{}, fmt.Errorf("%w: %s must contain client_id and client_secret", ErrMissing, path)
	}
	return creds, nil
}
