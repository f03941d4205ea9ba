package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"cirrus/cmd/internal/credential"
	"cirrus/cmd/internal/state"
)

// Config controls API behavior.
type Config struct {
	MaxBodyBytes int64
}

// Handler wires the HTTP routes to the credential service, the identity
// gate, and the state store.
type Handler struct {
	log    *slog.Logger
	cfg    Config
	creds  *credential.Service
	gate   Gate
	states *state.Store
}

// NewHandler constructs the API handler.
func NewHandler(log *slog.Logger, cfg Config, creds *credential.Service, resolver TokenResolver, states *state.Store) *Handler {
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		log:    log,
		cfg:    cfg,
		creds:  creds,
		gate:   NewGate(resolver),
		states: states,
	}
}

// Register wires the API routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/auth", h.handleAuth)
	mux.HandleFunc("/api/settings", h.handleSettings)
	mux.HandleFunc("/api/runtime", h.handleRuntime)
}

func (h *Handler) handleAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req authRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "register":
		tok, err := h.creds.Register(ctx, req.Username, req.Password)
		if err != nil {
			h.writeAuthError(w, r, err, req.Username)
			return
		}
		writeJSON(w, http.StatusCreated, authResponse{Message: "user created", Token: tok})

	case "login":
		tok, err := h.creds.Login(ctx, req.Username, req.Password)
		if err != nil {
			h.writeAuthError(w, r, err, req.Username)
			return
		}
		writeJSON(w, http.StatusOK, authResponse{Message: "login successful", Token: tok})

	default:
		writeError(w, http.StatusBadRequest, "unknown auth action")
	}
}

// writeAuthError maps credential error kinds to status codes.
// Unknown-user and bad-password both arrive as ErrUnauthenticated and
// produce byte-identical responses; keep it that way.
func (h *Handler) writeAuthError(w http.ResponseWriter, r *http.Request, err error, username string) {
	switch {
	case credential.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "username and password are required")
	case credential.IsConflict(err):
		writeError(w, http.StatusConflict, "username already exists")
	case credential.IsUnauthenticated(err):
		writeError(w, http.StatusUnauthorized, "invalid username or password")
	default:
		h.logInternal(r, err, username)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	h.handleState(w, r, state.NamespaceSettings)
}

func (h *Handler) handleRuntime(w http.ResponseWriter, r *http.Request) {
	h.handleState(w, r, state.NamespaceRuntime)
}

func (h *Handler) handleState(w http.ResponseWriter, r *http.Request, namespace string) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	username, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	switch r.Method {
	case http.MethodGet:
		payload, err := h.states.Read(ctx, username, namespace)
		if err != nil {
			h.logInternal(r, err, username)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeStateRead(w, namespace, username, payload)

	case http.MethodPost:
		payload, err := readRawJSON(w, r, h.cfg.MaxBodyBytes)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		if err := h.states.Write(ctx, username, namespace, payload); err != nil {
			h.logInternal(r, err, username)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: namespace + " saved"})
	}
}

func writeStateRead(w http.ResponseWriter, namespace, username string, payload []byte) {
	switch namespace {
	case state.NamespaceRuntime:
		writeJSON(w, http.StatusOK, runtimeResponse{Runtime: payload})
	default:
		writeJSON(w, http.StatusOK, settingsResponse{Username: username, Settings: payload})
	}
}

// requireUser runs the identity gate and writes the rejection itself.
func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, err := h.gate.Authenticate(r)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoCredential):
			writeError(w, http.StatusUnauthorized, "authorization token required")
		case errors.Is(err, ErrBadCredential):
			writeError(w, http.StatusForbidden, "invalid or expired token")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client went away; nothing useful to write.
			writeError(w, http.StatusInternalServerError, "internal server error")
		default:
			h.logInternal(r, err, "")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return "", false
	}
	return username, true
}

// logInternal records unexpected failures with request context before the
// caller gets a generic 500. The error text stays server-side.
func (h *Handler) logInternal(r *http.Request, err error, username string) {
	attrs := []any{"err", err, "route", r.URL.Path, "method", r.Method}
	if username != "" {
		attrs = append(attrs, "username", username)
	}
	h.log.Error("api.internal", attrs...)
}
