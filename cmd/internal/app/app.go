// Package app wires the cirrus runtime: config, logging, the KV backend,
// and the HTTP surface.
//
// Store clients are constructed once here and passed down by handle; no
// component reaches for a process-wide singleton.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cirrus/cmd/internal/api"
	"cirrus/cmd/internal/credential"
	"cirrus/cmd/internal/kv"
	"cirrus/cmd/internal/resolve"
	"cirrus/cmd/internal/state"
)

// App is the cirrus server runtime.
type App struct {
	cfg Config
	log Logger

	store   kv.Store // prefixed view used by all components
	base    kv.Store // owns backend resources
	dbPool  *pgxpool.Pool
	ready   readyCheck
	sweeper *kv.PostgresStore

	metrics *Metrics
	api     *api.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	a := &App{cfg: cfg, log: log, metrics: NewMetrics()}

	if err := a.initStore(ctx); err != nil {
		return nil, err
	}

	resolver := resolve.NewResolver(a.store, log, resolve.Config{
		Attempts: cfg.ResolveAttempts,
		Interval: cfg.ResolveInterval,
	}, a.metrics.Registry)

	creds := credential.NewService(a.store, resolver, log)
	states := state.NewStore(a.store, cfg.RuntimeTTL)

	a.api = api.NewHandler(log, api.Config{MaxBodyBytes: cfg.MaxBodyBytes}, creds, resolver, states)

	return a, nil
}

// initStore selects the KV backend from config. The retry policy and all
// store consumers are backend-agnostic; only this function knows which
// client is behind the interface.
func (a *App) initStore(ctx context.Context) error {
	switch strings.ToLower(strings.TrimSpace(a.cfg.KVBackend)) {
	case "redis":
		if a.cfg.RedisURL == "" {
			return errors.New("app: CIRRUS_KV_BACKEND=redis requires CIRRUS_REDIS_URL")
		}
		rs, err := kv.NewRedisStore(ctx, a.cfg.RedisURL)
		if err != nil {
			return err
		}
		a.base = rs
		a.ready = rs.Ping
		a.log.Info("kv.backend", "backend", "redis")

	case "postgres":
		if a.cfg.DatabaseURL == "" {
			return errors.New("app: CIRRUS_KV_BACKEND=postgres requires CIRRUS_DATABASE_URL")
		}
		pool, err := NewDBPool(ctx, a.cfg)
		if err != nil {
			return err
		}
		ps, err := kv.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return err
		}
		a.dbPool = pool
		a.base = ps
		a.sweeper = ps
		a.ready = func(ctx context.Context, timeout time.Duration) error {
			return PingDB(ctx, pool, timeout)
		}
		a.log.Info("kv.backend", "backend", "postgres")

	case "memory":
		a.base = kv.NewMemoryStore()
		a.log.Warn("kv.backend", "backend", "memory", "note", "dev only, state is not persisted")

	default:
		return fmt.Errorf("app: unknown kv backend %q", a.cfg.KVBackend)
	}

	a.store = kv.Prefixed(a.base, a.cfg.KeyPrefix)
	return nil
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.ready, a.api, a.metrics)

	var handler http.Handler = WithRequestLogging(mux, a.log)
	handler = a.metrics.WithHTTPMetrics(handler)
	handler = WithSecurityHeaders(handler)
	handler = WithRequestID(handler)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "kv_backend", a.cfg.KVBackend)

	if a.sweeper != nil {
		go a.runSweeper(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.base.Close(shutdownCtx); err != nil {
		a.log.Error("kv.close.fail", "err", err)
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}

	a.log.Info("server.stopped")
	return nil
}

// runSweeper deletes expired Postgres rows periodically. Reads never
// depend on it; it only keeps the table from accumulating dead entries.
func (a *App) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.sweeper.SweepExpired(ctx)
			if err != nil {
				a.log.Error("kv.sweep.fail", "err", err)
				continue
			}
			if n > 0 {
				a.log.Info("kv.sweep", "deleted", n)
			}
		}
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
