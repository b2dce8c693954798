package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"deepcut/internal/config"
)

// chdirTemp isolates tests from config files in the working directory.
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("HOME", dir)
}

func TestParseArgsPositional(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		name          string
		args          []string
		wantThreshold int
		wantGenre     []string
	}{
		{"no arguments", nil, config.MinThreshold, nil},
		{"threshold only", []string{"15"}, 15, nil},
		{"genre only", []string{"indie", "pop"}, config.MinThreshold, []string{"indie", "pop"}},
		{"threshold and genre", []string{"20", "deep", "house"}, 20, []string{"deep", "house"}},
		{"last threshold wins", []string{"5", "30", "jazz"}, 30, []string{"jazz"}},
		{"numbers inside genre are words", []string{"10", "80s", "2", "step"}, 10, []string{"80s", "2", "step"}},
		{"flags between", []string{"12", "-v", "shoegaze"}, 12, []string{"shoegaze"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if err != nil {
				t.Fatalf("parseArgs(%v) failed: %v", tt.args, err)
			}
			if got.cfg.Threshold != tt.wantThreshold {
				t.Errorf("Threshold = %d, want %d", got.cfg.Threshold, tt.wantThreshold)
			}
			if !reflect.DeepEqual(got.cfg.Genre, tt.wantGenre) {
				t.Errorf("Genre = %v, want %v", got.cfg.Genre, tt.wantGenre)
			}
		})
	}
}

func TestParseArgsInvalidThreshold(t *testing.T) {
	chdirTemp(t)

	for _, args := range [][]string{{"0"}, {"-4", "rock"}, {"10", "0"}} {
		_, err := parseArgs(args)
		if !errors.Is(err, config.ErrInvalidThreshold) {
			t.Errorf("parseArgs(%v) = %v, want ErrInvalidThreshold", args, err)
		}
	}
}

func TestParseArgsFlags(t *testing.T) {
	chdirTemp(t)

	got, err := parseArgs([]string{"-v", "-j", "4", "--lyrics", "--preview-fallback", "--seed", "99", "--preview-dir", "clips", "rock"})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	cfg := got.cfg
	if !cfg.Verbose || !cfg.FetchLyrics || !cfg.PreviewFallback || cfg.Workers != 4 || cfg.Seed != 99 || cfg.PreviewDir != "clips" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestParseArgsHistory(t *testing.T) {
	chdirTemp(t)

	tests := []struct {
		args []string
		want int
	}{
		{[]string{"--history"}, 10},
		{[]string{"--history", "3"}, 3},
		{[]string{"--history", "rock"}, 10},
	}

	for _, tt := range tests {
		got, err := parseArgs(tt.args)
		if err != nil {
			t.Fatalf("parseArgs(%v) failed: %v", tt.args, err)
		}
		if got.history != tt.want {
			t.Errorf("parseArgs(%v).history = %d, want %d", tt.args, got.history, tt.want)
		}
	}
}

func TestParseArgsErrors(t *testing.T) {
	chdirTemp(t)

	tests := [][]string{
		{"--bogus"},
		{"--workers"},
		{"--workers", "many"},
		{"--seed", "-1"},
		{"--preview-dir"},
		{"--config"},
		{"rock", "--nope"},
	}

	for _, args := range tests {
		if _, err := parseArgs(args); err == nil {
			t.Errorf("parseArgs(%v) should fail", args)
		}
	}
}

func TestParseArgsHelpAndInit(t *testing.T) {
	got, err := parseArgs([]string{"rock", "-h"})
	if err != nil || !got.help {
		t.Errorf("expected help, got %+v, %v", got, err)
	}
	got, err = parseArgs([]string{"--init-config"})
	if err != nil || !got.initConfig {
		t.Errorf("expected initConfig, got %+v, %v", got, err)
	}
}

func TestParseArgsConfigFile(t *testing.T) {
	chdirTemp(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("threshold: 25\nworkers: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := parseArgs([]string{"-c", path, "folk"})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if got.configPath != path {
		t.Errorf("configPath = %q, want %q", got.configPath, path)
	}
	if got.cfg.Threshold != 25 || got.cfg.Workers != 2 {
		t.Errorf("config file values not applied: %+v", got.cfg)
	}

	got, err = parseArgs([]string{"-c", path, "5", "folk"})
	if err != nil {
		t.Fatalf("parseArgs failed: %v", err)
	}
	if got.cfg.Threshold != 5 {
		t.Errorf("CLI threshold should override config, got %d", got.cfg.Threshold)
	}
}
