package app

import (
	"context"
	"net/http"
	"time"

	"cirrus/cmd/internal/api"
)

// readyCheck reports whether the KV backend is reachable.
type readyCheck func(ctx context.Context, timeout time.Duration) error

func registerHTTP(mux *http.ServeMux, log Logger, cfg Config, ready readyCheck, apiHandler *api.Handler, metrics *Metrics) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if cfg.ReadinessRequireKV && ready == nil {
			http.Error(w, "kv backend not configured", http.StatusServiceUnavailable)
			return
		}

		if ready != nil {
			if err := ready(r.Context(), 2*time.Second); err != nil {
				log.Info("readyz.kv.not_ready", "err", err)
				http.Error(w, "kv not ready", http.StatusServiceUnavailable)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if metrics != nil {
		mux.Handle("/metrics", metrics.Handler())
	}

	if apiHandler != nil {
		apiHandler.Register(mux)
	}
}
