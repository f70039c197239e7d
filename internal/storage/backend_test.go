package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/claude/setsreps/internal/config"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
)

// exerciseBackend runs the load/save/delete contract shared by all backends.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	got, err := b.Load(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Load(missing) = %q, %v; want nil, nil", got, err)
	}

	if err := b.Save(ctx, "k", []byte(`{"version":1,"workouts":[]}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := b.Save(ctx, "k", []byte(`{"version":1,"workouts":[{"id":"a"}]}`)); err != nil {
		t.Fatalf("Save overwrite: %v", err)
	}
	got, err = b.Load(ctx, "k")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got) != `{"version":1,"workouts":[{"id":"a"}]}` {
		t.Errorf("Load = %s, want the second payload", got)
	}

	if err := b.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err = b.Load(ctx, "k")
	if err != nil || got != nil {
		t.Errorf("Load after delete = %q, %v; want nil, nil", got, err)
	}
	if err := b.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key: %v", err)
	}
}

// TestSQLiteBackend verifies the kv table contract and that data survives reopening.
func TestSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "setsreps.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	exerciseBackend(t, db)

	if err := db.Save(context.Background(), "persist", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	db.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	got, err := reopened.Load(context.Background(), "persist")
	if err != nil || string(got) != "[]" {
		t.Errorf("Load after reopen = %q, %v", got, err)
	}
}

// TestRedisBackend verifies the contract against an in-process redis.
func TestRedisBackend(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	defer rdb.Close()

	b := NewRedis(rdb)
	exerciseBackend(t, b)

	if err := b.Save(context.Background(), "setsreps-workouts", []byte("[]")); err != nil {
		t.Fatal(err)
	}
	if v, err := srv.Get("setsreps-workouts"); err != nil || v != "[]" {
		t.Errorf("server value = %q, %v", v, err)
	}
}

// TestOpenRedis verifies that Open connects to redis through config.
func TestOpenRedis(t *testing.T) {
	srv := miniredis.RunT(t)
	b, err := Open(context.Background(), config.StorageConfig{Backend: "redis", Redis: config.RedisConfig{Addr: srv.Addr()}})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if b.Name() != "redis" {
		t.Errorf("Name() = %q, want redis", b.Name())
	}
}

// TestOpenUnknownBackend verifies an unknown backend name is rejected.
func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(context.Background(), config.StorageConfig{Backend: "csv"}); err == nil {
		t.Fatal("expected error")
	}
}

// TestPostgresLoad verifies the snapshot query and the absent-key case.
func TestPostgresLoad(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`SELECT payload FROM history_snapshots WHERE key = \$1`).
		WithArgs("setsreps-workouts").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}).AddRow([]byte(`[]`)))
	mock.ExpectQuery(`SELECT payload FROM history_snapshots`).
		WithArgs("other").
		WillReturnRows(pgxmock.NewRows([]string{"payload"}))

	db := NewWithQuerier(mock)
	got, err := db.Load(context.Background(), "setsreps-workouts")
	if err != nil || string(got) != "[]" {
		t.Errorf("Load = %q, %v", got, err)
	}
	got, err = db.Load(context.Background(), "other")
	if err != nil || got != nil {
		t.Errorf("Load(absent) = %q, %v; want nil, nil", got, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestPostgresSaveAndDelete verifies the upsert and delete statements.
func TestPostgresSaveAndDelete(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO history_snapshots .* ON CONFLICT \(key\) DO UPDATE`).
		WithArgs("k", `{"version":1,"workouts":[]}`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`DELETE FROM history_snapshots WHERE key = \$1`).
		WithArgs("k").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	db := NewWithQuerier(mock)
	if err := db.Save(context.Background(), "k", []byte(`{"version":1,"workouts":[]}`)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := db.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// TestPostgresSaveError verifies driver errors are wrapped, not swallowed.
func TestPostgresSaveError(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectExec(`INSERT INTO history_snapshots`).
		WithArgs("k", "[]").
		WillReturnError(boom)

	err = NewWithQuerier(mock).Save(context.Background(), "k", []byte("[]"))
	if !errors.Is(err, boom) {
		t.Errorf("Save err = %v, want wrapped %v", err, boom)
	}
}
