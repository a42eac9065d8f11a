package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/orderimport/internal/config"
	"github.com/JonMunkholm/orderimport/internal/core"
	"github.com/JonMunkholm/orderimport/internal/database"
	"github.com/JonMunkholm/orderimport/internal/logging"
	"github.com/JonMunkholm/orderimport/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var history core.UploadHistory
	if cfg.Database.Enabled() {
		pool, err := openPool(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := database.Migrate(ctx, pool); err != nil {
			return err
		}
		history = core.NewPostgresHistory(pool)
	} else {
		slog.Info("no database configured, keeping upload history in memory",
			"capacity", cfg.History.MemoryCapacity)
	}

	service := core.NewService(cfg, history, reg)
	server := web.NewServer(service, cfg, reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		service.RunHistoryRetention(gctx, core.RetentionConfig{
			Retention: cfg.History.Retention,
			Interval:  cfg.History.PruneInterval,
		})
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := service.WaitForUploads(shutdownCtx); err != nil {
			slog.Warn("uploads did not complete in time", "error", err)
		}
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// openPool connects to PostgreSQL with the configured pool limits and
// verifies the connection.
func openPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
