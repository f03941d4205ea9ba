package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func readyzStatus(t *testing.T, cfg Config, ready readyCheck) int {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	registerHTTP(mux, log, cfg, ready, nil, nil)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	return rr.Code
}

func TestReadyz_RequiredButUnconfigured(t *testing.T) {
	t.Parallel()

	status := readyzStatus(t, Config{ReadinessRequireKV: true}, nil)
	if status != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503 when kv is required but not configured", status)
	}
}

func TestReadyz_BackendUnreachable(t *testing.T) {
	t.Parallel()

	failing := func(context.Context, time.Duration) error {
		return errors.New("connection refused")
	}
	status := readyzStatus(t, Config{ReadinessRequireKV: true}, failing)
	if status != http.StatusServiceUnavailable {
		t.Fatalf("readyz = %d, want 503 when the kv check fails", status)
	}
}

func TestReadyz_BackendReachable(t *testing.T) {
	t.Parallel()

	ok := func(context.Context, time.Duration) error { return nil }
	status := readyzStatus(t, Config{ReadinessRequireKV: true}, ok)
	if status != http.StatusOK {
		t.Fatalf("readyz = %d, want 200 when the kv check passes", status)
	}
}

func TestReadyz_NotRequired(t *testing.T) {
	t.Parallel()

	status := readyzStatus(t, Config{ReadinessRequireKV: false}, nil)
	if status != http.StatusOK {
		t.Fatalf("readyz = %d, want 200 when readiness does not gate on kv", status)
	}
}
