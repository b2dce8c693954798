package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"deepcut/internal/config"
	"deepcut/internal/genre"
	"deepcut/internal/history"
	"deepcut/internal/logger"
	"deepcut/internal/pipeline"
	"deepcut/internal/progress"
	"deepcut/internal/search"
	"deepcut/internal/shutdown"
)

func main() {
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	if args.help {
		printUsage()
		return
	}
	if args.initConfig {
		if err := initConfigFile(); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := args.cfg
	log := logger.New(cfg.Verbose)
	defer log.Close()

	if !cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("deepcut_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if args.configPath != "" {
		log.Debug("Loaded configuration from: %s", args.configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	sh := shutdown.New(log)
	sh.Listen()
	defer sh.Shutdown()

	if err := run(sh.Context(), cfg, args, log); err != nil {
		log.Error("%v", err)
		sh.Shutdown()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, args cliArgs, log *logger.Logger) error {
	if args.history > 0 {
		return showHistory(ctx, cfg, args.history, os.Stdout)
	}

	runner, err := pipeline.Setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer runner.Close()

	var ind *progress.Indicator
	hooks := pipeline.Hooks{
		OnGenreResolved: func(res genre.Resolution) {
			if !cfg.Verbose {
				fmt.Println(dimStyle.Render(fmt.Sprintf("Genre: %s, popularity below %d", res.Genre, cfg.Threshold)))
				ind = progress.New(os.Stdout)
				log.SetProgressActive(true)
			}
		},
		OnAttempt: func(step int, _ search.Track, _ bool) {
			if ind != nil {
				ind.Step()
			}
		},
	}

	out, err := runner.Run(ctx, cfg.Genre, cfg.Threshold, hooks)

	if ind != nil {
		ind.Finish()
		log.SetProgressActive(false)
	}

	if err != nil {
		return err
	}

	printOutcome(os.Stdout, out, ind)
	return nil
}

// showHistory lists recorded searches straight from the local store; it needs
// neither credentials nor the network.
func showHistory(ctx context.Context, cfg config.Config, limit int, w io.Writer) error {
	if cfg.HistoryDB == "" {
		return errors.New("history is disabled (history_db is empty)")
	}

	store, err := history.Open(config.ExpandHome(cfg.HistoryDB))
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	printHistory(w, entries)
	return nil
}
