// Package storage persists the workout history as one snapshot under a
// single named key. Every Save replaces the whole snapshot atomically.
package storage

import (
	"context"
	"fmt"

	"github.com/claude/setsreps/internal/config"
)

// Backend is a durable key/value slot for encoded history snapshots.
type Backend interface {
	// Load returns the stored payload, or (nil, nil) when key is absent.
	Load(ctx context.Context, key string) ([]byte, error)
	// Save replaces the payload under key. Either the whole payload is
	// stored or the previous one remains.
	Save(ctx context.Context, key string, payload []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

// Open connects the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch cfg.Backend {
	case "", "sqlite":
		b, err = OpenSQLite(cfg.SQLite.Path)
	case "postgres":
		b, err = New(ctx, cfg.Postgres.DSN())
	case "redis":
		b, err = OpenRedis(ctx, cfg.Redis)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}
