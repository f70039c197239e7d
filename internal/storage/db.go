package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx used by DB. Both *pgxpool.Pool and pgxmock
// pools satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB stores history snapshots in the history_snapshots table.
type DB struct {
	q     Querier
	close func()
}

// New creates a new DB with a connection pool.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{q: pool, close: pool.Close}, nil
}

// NewWithQuerier wraps an existing pool. Close leaves q open.
func NewWithQuerier(q Querier) *DB {
	return &DB{q: q}
}

func (db *DB) Name() string { return "postgres" }

func (db *DB) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := db.q.QueryRow(ctx,
		`SELECT payload FROM history_snapshots WHERE key = $1`, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", key, err)
	}
	return payload, nil
}

func (db *DB) Save(ctx context.Context, key string, payload []byte) error {
	_, err := db.q.Exec(ctx,
		`INSERT INTO history_snapshots (key, payload, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE
			SET payload = EXCLUDED.payload, updated_at = NOW()`,
		key, string(payload))
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", key, err)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, key string) error {
	if _, err := db.q.Exec(ctx, `DELETE FROM history_snapshots WHERE key = $1`, key); err != nil {
		return fmt.Errorf("deleting snapshot %s: %w", key, err)
	}
	return nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	if db.close != nil {
		db.close()
	}
	return nil
}

// RunMigrations applies all pending migrations from the given directory.
func RunMigrations(dsn, migrationsPath string) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
