package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/claude/setsreps/internal/config"
	"github.com/claude/setsreps/internal/storage"
	"github.com/claude/setsreps/internal/upload"
	"github.com/joho/godotenv"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", os.Getenv("SETSREPS_SERVER_URL"), "SetsReps server URL (e.g. https://setsreps.tail1234.ts.net)")
	apiKey := flag.String("api-key", os.Getenv("SETSREPS_AUTH_API_KEY"), "server API key")
	dbPath := flag.String("db", "setsreps.db", "local SQLite history database")
	key := flag.String("key", config.DefaultStorageKey, "storage key the history is saved under")
	stateDir := flag.String("state-dir", "", "directory for the sent-workouts ledger (default ~/.setsreps-upload)")
	dryRun := flag.Bool("dry-run", false, "count what would be sent without contacting the server")
	batchSize := flag.Int("batch-size", upload.DefaultBatchSize, "workouts per import request")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("setsreps-upload", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if !*dryRun && (*serverURL == "" || *apiKey == "") {
		fmt.Fprintf(os.Stderr, "Usage: setsreps-upload -server <URL> -api-key <key> [-db setsreps.db] [-dry-run] [-batch-size N]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Strip trailing slash from server URL
	*serverURL = strings.TrimRight(*serverURL, "/")

	if _, err := os.Stat(*dbPath); err != nil {
		log.Error("local history database not found", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	source, err := storage.OpenSQLite(*dbPath)
	if err != nil {
		log.Error("failed to open local history", "error", err)
		os.Exit(1)
	}
	defer source.Close()

	// Open state database
	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".setsreps-upload")
	}
	state, err := upload.OpenStateDB(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer state.Close()

	// Create client (nil-safe in dry-run mode)
	var client *upload.Client
	if !*dryRun {
		client = upload.NewClient(*serverURL, *apiKey)
	} else {
		log.Info("DRY RUN mode — workouts will be counted but not sent")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	uploader := upload.New(source, *key, client, state, *dryRun, *batchSize, log)
	stats, err := uploader.Run(ctx)
	printStats(stats)
	if err != nil {
		log.Error("upload failed", "error", err)
		os.Exit(1)
	}
	log.Info("upload complete")
}

func printStats(stats *upload.Stats) {
	fmt.Println()
	fmt.Println("=== Upload Summary ===")
	fmt.Printf("  Workouts total:   %d\n", stats.Total)
	fmt.Printf("  Sent:             %d\n", stats.Sent)
	fmt.Printf("  New on server:    %d\n", stats.Inserted)
	fmt.Printf("  Updated:          %d\n", stats.Updated)
	fmt.Printf("  Skipped:          %d (already uploaded)\n", stats.Skipped)
	fmt.Printf("  Errored:          %d\n", stats.Errored)
	fmt.Printf("  Batches:          %d\n", stats.Batches)
	fmt.Println()
}
