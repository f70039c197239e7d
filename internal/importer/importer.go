// Package importer bulk-loads Alpha Progression CSV exports from disk into
// the workout history.
package importer

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/ingest/alpha"
	"github.com/claude/setsreps/internal/models"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	SessionsParsed     int
	SetsParsed         int
	WorkoutsInserted   int
	WorkoutsUpdated    int
	WorkoutsDuplicated int
}

// Store is the part of the history store the importer writes to.
type Store interface {
	Import(ctx context.Context, ws []models.CompletedWorkout) history.ImportResult
}

// Importer reads export files and merges their sessions into a Store.
type Importer struct {
	store  Store
	loc    *time.Location
	log    *slog.Logger
	dryRun bool
	stats  Stats
}

// New creates a new Importer. Session times in the exports are local to loc.
func New(store Store, loc *time.Location, log *slog.Logger, dryRun bool) *Importer {
	if loc == nil {
		loc = time.Local
	}
	return &Importer{store: store, loc: loc, log: log, dryRun: dryRun}
}

// Import processes one export file, or every .csv and .csv.gz file below a
// directory. Files that fail to read or parse are counted and skipped.
// All sessions go to the store in one batch, so the history is persisted once.
func (imp *Importer) Import(ctx context.Context, path string) (*Stats, error) {
	files, err := exportFiles(path)
	if err != nil {
		return &imp.stats, err
	}
	if len(files) == 0 {
		imp.log.Warn("no export files found", "path", path)
		return &imp.stats, nil
	}

	var all []models.CompletedWorkout
	seen := make(map[string]bool)
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &imp.stats, err
		}
		sessions, err := imp.parseFile(f)
		if err != nil {
			imp.log.Warn("parse failed", "file", f, "error", err)
			imp.stats.FilesErrored++
			continue
		}
		if len(sessions) == 0 {
			imp.stats.FilesSkipped++
			continue
		}
		imp.stats.FilesProcessed++
		imp.stats.SessionsParsed += len(sessions)

		for _, w := range alpha.ToWorkouts(sessions) {
			// The same session often appears in several overlapping exports.
			if seen[w.ID] {
				imp.stats.WorkoutsDuplicated++
				continue
			}
			seen[w.ID] = true
			imp.stats.SetsParsed += w.TotalSets
			all = append(all, w)
		}
		imp.log.Debug("export parsed", "file", filepath.Base(f), "sessions", len(sessions))
	}

	if imp.dryRun {
		imp.stats.WorkoutsInserted = len(all)
		return &imp.stats, nil
	}
	if len(all) > 0 {
		res := imp.store.Import(ctx, all)
		imp.stats.WorkoutsInserted = res.Inserted
		imp.stats.WorkoutsUpdated = res.Updated
		imp.stats.WorkoutsDuplicated += len(all) - res.Inserted - res.Updated
	}
	return &imp.stats, nil
}

func (imp *Importer) parseFile(path string) ([]alpha.Session, error) {
	rc, err := openExport(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return alpha.Parse(rc, imp.loc)
}

// exportFiles lists the export files at path in lexical order.
func exportFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isExport(d.Name()) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}
	sort.Strings(files)
	return files, nil
}

func isExport(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".csv.gz")
}
