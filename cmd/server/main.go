// Command server runs the reconciliation HTTP service: the record-save hook
// and the per-project sweep endpoint. Business logic lives in the internal
// packages; main only wires dependencies and the server lifecycle.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"epicsync/internal/audit"
	"epicsync/internal/handler"
	"epicsync/internal/platform/config"
	"epicsync/internal/platform/httpserver"
	"epicsync/internal/platform/logger"
	"epicsync/internal/platform/metrics"
	"epicsync/internal/project"
	"epicsync/internal/reconcile"
	"epicsync/internal/redcap"
)

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	projects, err := buildProjectStore(ctx, cfg)
	if err != nil {
		return err
	}

	auditStore, closeAudit, err := buildAuditStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAudit()

	store, err := redcap.NewClient(cfg.RedcapURL, func(ctx context.Context, projectID string) (string, error) {
		settings, err := projects.Get(ctx, projectID)
		if err != nil {
			return "", err
		}
		return settings.APIToken, nil
	})
	if err != nil {
		return err
	}

	service, err := reconcile.New(store, projects,
		reconcile.WithLogger(log),
		reconcile.WithAuditPublisher(audit.NewPublisher(auditStore)),
		reconcile.WithMetrics(metrics.New()),
		reconcile.WithBatchSize(cfg.BatchSize),
	)
	if err != nil {
		return err
	}

	h := handler.New(service, projects, log, cfg.HookSecret)
	srv := httpserver.New(cfg.ListenAddr, h.Router())

	log.Info("starting epicsync", "addr", cfg.ListenAddr)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildProjectStore returns the Redis-backed store when configured, seeding
// it from the config file's project table; otherwise a memory store.
func buildProjectStore(ctx context.Context, cfg config.Config) (project.Store, error) {
	settings := make([]project.Settings, 0, len(cfg.Projects))
	for _, p := range cfg.Projects {
		settings = append(settings, project.Settings{
			ProjectID:   p.ID,
			APIToken:    p.APIToken,
			Enabled:     p.Enabled,
			ForceUpdate: p.ForceUpdate,
		})
	}

	if cfg.RedisURL == "" {
		return project.NewMemoryStore(settings...), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	store := project.NewRedisStore(client)
	for _, s := range settings {
		if err := store.Put(ctx, s); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// buildAuditStore returns the PostgreSQL-backed audit trail when a DSN is
// configured, otherwise the in-memory trail.
func buildAuditStore(ctx context.Context, cfg config.Config) (audit.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		return audit.NewMemoryStore(), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := audit.NewPostgresStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}
