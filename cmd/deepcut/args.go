package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"deepcut/internal/config"
)

// cliArgs is the parsed command line.
type cliArgs struct {
	cfg        config.Config
	configPath string

	help       bool
	initConfig bool
	// history > 0 prints the last n searches instead of searching.
	history int
}

// parseArgs parses command-line arguments and loads configuration.
// Priority: CLI flags > config file > defaults
//
// Positional arguments are one or more leading integers (the popularity
// threshold, each at least 1, the last one wins) followed by genre words.
func parseArgs(args []string) (cliArgs, error) {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return cliArgs{help: true}, nil
		}
		if arg == "--init-config" {
			return cliArgs{initConfig: true}, nil
		}
	}

	var parsed cliArgs
	for i := 0; i < len(args); i++ {
		if args[i] == "--config" || args[i] == "-c" {
			if i+1 >= len(args) {
				return cliArgs{}, fmt.Errorf("--config requires a path argument")
			}
			parsed.configPath = args[i+1]
			break
		}
	}

	cfg, err := config.LoadConfigFile(parsed.configPath)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to load config: %w", err)
	}
	if parsed.configPath == "" {
		parsed.configPath = config.FindConfigFile()
	}

	inGenre := false
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "--verbose", "-v":
			cfg.Verbose = true

		case "--lyrics":
			cfg.FetchLyrics = true

		case "--preview-fallback":
			cfg.PreviewFallback = true

		case "--workers", "-j":
			n, err := intValue(args, &i)
			if err != nil {
				return cliArgs{}, err
			}
			cfg.Workers = n

		case "--seed":
			if i+1 >= len(args) {
				return cliArgs{}, fmt.Errorf("--seed requires a number argument")
			}
			i++
			seed, err := strconv.ParseUint(args[i], 10, 64)
			if err != nil {
				return cliArgs{}, fmt.Errorf("invalid --seed value: %s", args[i])
			}
			cfg.Seed = seed

		case "--preview-dir":
			if i+1 >= len(args) {
				return cliArgs{}, fmt.Errorf("--preview-dir requires a directory argument")
			}
			i++
			cfg.PreviewDir = args[i]

		case "--history":
			parsed.history = 10
			if i+1 < len(args) {
				if n, err := strconv.Atoi(args[i+1]); err == nil && n > 0 {
					parsed.history = n
					i++
				}
			}

		case "--config", "-c":
			i++

		default:
			if !inGenre {
				if n, err := strconv.Atoi(arg); err == nil {
					if err := config.ValidateThreshold(n); err != nil {
						return cliArgs{}, err
					}
					cfg.Threshold = n
					continue
				}
			}
			if strings.HasPrefix(arg, "-") {
				return cliArgs{}, fmt.Errorf("unknown flag: %s", arg)
			}
			inGenre = true
			cfg.Genre = append(cfg.Genre, arg)
		}
	}

	parsed.cfg = cfg
	return parsed, nil
}

func intValue(args []string, i *int) (int, error) {
	flag := args[*i]
	if *i+1 >= len(args) {
		return 0, fmt.Errorf("%s requires a number argument", flag)
	}
	*i++
	n, err := strconv.Atoi(args[*i])
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %s", flag, args[*i])
	}
	return n, nil
}

// initConfigFile creates a new config file with default values
func initConfigFile() error {
	path := config.GetDefaultConfigPath()

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists at: %s\n", path)
		fmt.Println("Delete it first if you want to recreate it.")
		return nil
	}

	cfg := config.DefaultConfig()

	if err := config.SaveConfigFile(cfg, path); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Printf("Created default config file at: %s\n", path)
	fmt.Println("\nYou can now edit this file to customize your settings.")
	fmt.Println("Available options:")
	fmt.Println("  client_id, client_secret: inline Spotify credentials")
	fmt.Println("  credentials_file: path to client_secrets.json")
	fmt.Println("  genres_file: path to the genre list (JSON array)")
	fmt.Println("  threshold: default popularity threshold (1 or higher)")
	fmt.Println("  max_attempts: tracks evaluated before giving up")
	fmt.Println("  workers: 1-16 (concurrent samplers)")
	fmt.Println("  preview_dir: save preview clips of found tracks here")
	fmt.Println("  preview_fallback: look up missing previews on Deezer and iTunes")
	fmt.Println("  fetch_lyrics: true/false")
	fmt.Println("  verbose: true/false (enable detailed logging)")
	return nil
}

// printUsage displays the help message
func printUsage() {
	fmt.Println("deepcut - Find an obscure song in a genre")
	fmt.Println()
	fmt.Println("Usage: deepcut [options] [threshold ...] [genre words ...]")
	fmt.Println()
	fmt.Println("Songs are accepted when their Spotify popularity (0-100) is below the")
	fmt.Println("threshold. Without a genre one is picked at random; unknown genres are")
	fmt.Println("matched against the genre list with a fuzzy search.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -v, --verbose              Show detailed output")
	fmt.Println("  -j, --workers <n>          Concurrent samplers (1-16, default: 1)")
	fmt.Println("      --preview-dir <dir>    Download and tag the preview clip")
	fmt.Println("      --preview-fallback     Find missing previews on Deezer/iTunes")
	fmt.Println("      --lyrics               Print lyrics of the found song")
	fmt.Println("      --seed <n>             Deterministic random source")
	fmt.Println("      --history [n]          Show the last n searches (default: 10)")
	fmt.Println("  -c, --config <path>        Path to config file")
	fmt.Println("  -h, --help                 Show this help message")
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println("  --init-config              Create a default config file")
	fmt.Println()
	fmt.Println("Config file locations (checked in order):")
	fmt.Println("  ./deepcut.yaml")
	fmt.Println("  ./deepcut.yml")
	fmt.Println("  ~/.config/deepcut/config.yaml")
	fmt.Println("  ~/.deepcut.yaml")
	fmt.Println()
	fmt.Println("Credentials (checked in order):")
	fmt.Println("  client_id/client_secret in the config file")
	fmt.Println("  SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET (a .env file is loaded if present)")
	fmt.Println("  client_secrets.json")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # A random genre, any song with popularity below 1")
	fmt.Println("  deepcut")
	fmt.Println()
	fmt.Println("  # Indie pop below popularity 15")
	fmt.Println("  deepcut 15 indie pop")
	fmt.Println()
	fmt.Println("  # Four concurrent samplers, keep the preview clip")
	fmt.Println("  deepcut -j 4 --preview-dir ~/Music/previews 10 shoegaze")
}
