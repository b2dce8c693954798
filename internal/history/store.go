// Package history persists every search run in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultLimit is the number of entries Recent returns for a non-positive limit.
const DefaultLimit = 10

// Entry is one recorded search run. Track fields are empty when nothing was
// found.
type Entry struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Input      string    `json:"input"`
	Genre      string    `json:"genre"`
	Method     string    `json:"method"`
	Threshold  int       `json:"threshold"`
	Attempts   int       `json:"attempts"`
	Found      bool      `json:"found"`
	TrackID    string    `json:"track_id,omitempty"`
	TrackName  string    `json:"track_name,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	Popularity int       `json:"popularity"`
	PreviewURL string    `json:"preview_url,omitempty"`
}

// Store is a SQLite-backed history log.
type Store struct {
	db *sql.DB
}

// Open creates the database file if needed and runs the schema migration.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	// Serialize writers from concurrent web jobs.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history migration failed: %w", err)
	}
	return s, nil
}

// Close ensures the DB connection is closed gracefully
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores e, assigning an ID and timestamp when unset.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO searches (
			id, created_at, input, genre, method, threshold, attempts, found,
			track_id, track_name, artist, popularity, preview_url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.CreatedAt, e.Input, e.Genre, e.Method, e.Threshold, e.Attempts, e.Found,
		nullString(e.TrackID), nullString(e.TrackName), nullString(e.Artist), e.Popularity, nullString(e.PreviewURL),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to record search: %w", err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, input, genre, method, threshold, attempts, found,
			track_id, track_name, artist, popularity, preview_url
		FROM searches
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var trackID, trackName, artist, previewURL sql.NullString
		if err := rows.Scan(
			&e.ID, &e.CreatedAt, &e.Input, &e.Genre, &e.Method, &e.Threshold, &e.Attempts, &e.Found,
			&trackID, &trackName, &artist, &e.Popularity, &previewURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.TrackID = trackID.String
		e.TrackName = trackName.String
		e.Artist = artist.String
		e.PreviewURL = previewURL.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		created_at DATETIME NOT NULL,
		input TEXT NOT NULL,
		genre TEXT NOT NULL,
		method TEXT NOT NULL,
		threshold INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		found BOOLEAN NOT NULL,
		track_id TEXT,
		track_name TEXT,
		artist TEXT,
		popularity INTEGER NOT NULL DEFAULT 0,
		preview_url TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at);
	`)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
