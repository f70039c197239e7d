package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/setsreps/internal/config"
	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/importer"
	"github.com/claude/setsreps/internal/logging"
	"github.com/claude/setsreps/internal/storage"
	"go.uber.org/multierr"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	exportPath := flag.String("path", "", "Alpha Progression CSV export, or a directory of exports (required)")
	migrationsPath := flag.String("migrations", "migrations", "directory with Postgres migrations")
	dryRun := flag.Bool("dry-run", false, "report counts without writing to the history")
	flag.Parse()

	boot := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *exportPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: setsreps-import -config config.yaml -path /path/to/exports [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log, logCloser, err := logging.New(cfg.Logging)
	if err != nil {
		boot.Error("failed to set up logging", "error", err)
		os.Exit(1)
	}

	if cfg.Storage.Backend == "postgres" {
		if err := storage.RunMigrations(cfg.Storage.Postgres.DSN(), *migrationsPath); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
	}

	if *dryRun {
		log.Info("DRY RUN mode — nothing will be written to the history")
	}

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}

	store := history.New(backend, history.Options{
		Key:         cfg.Storage.Key,
		MaxWorkouts: cfg.History.MaxWorkouts,
		Location:    cfg.Stats.Location(),
	}, log)
	if err := store.Load(ctx); err != nil {
		log.Error("failed to load history", "error", err)
		os.Exit(1)
	}

	// Run import
	imp := importer.New(store, cfg.Stats.Location(), log, *dryRun)
	stats, err := imp.Import(ctx, *exportPath)
	printStats(log, stats)

	// The store swallows write errors; save again so a failure ends the run non-zero.
	if err == nil && !*dryRun && stats.WorkoutsInserted > 0 {
		err = store.Save(ctx)
	}
	err = multierr.Append(err, backend.Close())
	if err != nil {
		log.Error("import failed", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
	log.Info("import complete", "history_size", store.Len())
	logCloser.Close()
}

func printStats(log *slog.Logger, stats *importer.Stats) {
	log.Info("import stats",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"files_errored", stats.FilesErrored,
		"sessions_parsed", stats.SessionsParsed,
		"sets_parsed", stats.SetsParsed,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_updated", stats.WorkoutsUpdated,
		"workouts_duplicated", stats.WorkoutsDuplicated,
	)
}
