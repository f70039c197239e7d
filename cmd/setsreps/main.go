package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/setsreps/internal/config"
	"github.com/claude/setsreps/internal/history"
	"github.com/claude/setsreps/internal/ingest/alpha"
	"github.com/claude/setsreps/internal/logging"
	"github.com/claude/setsreps/internal/mcp"
	"github.com/claude/setsreps/internal/metrics"
	"github.com/claude/setsreps/internal/programs"
	"github.com/claude/setsreps/internal/server"
	"github.com/claude/setsreps/internal/storage"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrationsPath := flag.String("migrations", "migrations", "directory with Postgres migrations")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	boot := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

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
	log.Info("SetsReps starting", "version", Version, "backend", cfg.Storage.Backend)

	// Run migrations
	if cfg.Storage.Backend == "postgres" {
		if err := storage.RunMigrations(cfg.Storage.Postgres.DSN(), *migrationsPath); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
	}
	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	// Open history backend
	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to open storage", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	log.Info("storage opened", "backend", backend.Name())

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewManager(reg)

	loc := cfg.Stats.Location()
	store := history.New(backend, history.Options{
		Key:         cfg.Storage.Key,
		MaxWorkouts: cfg.History.MaxWorkouts,
		Location:    loc,
		WeekStart:   cfg.Stats.FirstWeekday(),
		Metrics:     m,
	}, log)
	if err := store.Load(ctx); err != nil {
		log.Error("failed to load history", "error", err)
		os.Exit(1)
	}

	catalog, err := programs.Builtin()
	if err != nil {
		log.Error("failed to load program catalog", "error", err)
		os.Exit(1)
	}

	alphaProvider := alpha.NewProvider(store, loc, log)

	// Create server
	srv := server.New(store, catalog, alphaProvider, cfg.Auth.APIKey, m, log)
	srv.SetMetricsHandler(reg)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcp.New(mcp.NewLocal(store, catalog), Version, log)))

	// Start server — tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	err = backend.Close()
	if tsServer != nil {
		err = multierr.Append(err, tsServer.Close())
	}
	if err != nil {
		log.Error("cleanup failed", "error", err)
	}
	log.Info("server stopped")
	closeLog(logCloser)
}

func closeLog(c io.Closer) {
	if err := c.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing log: %v\n", err)
	}
}
