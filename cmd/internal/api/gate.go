package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cirrus/cmd/internal/resolve"
	"cirrus/cmd/security/token"
)

// Gate rejections. The asymmetry is deliberate: "no credential supplied"
// and "credential supplied but invalid" map to different status codes.
var (
	// ErrNoCredential means the Authorization header is missing or not a
	// bearer header at all (-> 401).
	ErrNoCredential = errors.New("api: no credential")
	// ErrBadCredential means a token was presented but does not resolve
	// to any user, even after retries (-> 403).
	ErrBadCredential = errors.New("api: bad credential")
)

// TokenResolver is the slice of the resolver the gate needs.
type TokenResolver interface {
	Resolve(ctx context.Context, tok string) (string, error)
}

// Gate authenticates inbound requests via the token reverse index.
type Gate struct {
	resolver TokenResolver
}

// NewGate wires an identity gate over a resolver.
func NewGate(resolver TokenResolver) Gate {
	return Gate{resolver: resolver}
}

// Authenticate extracts the bearer token and resolves it to a username.
func (g Gate) Authenticate(r *http.Request) (string, error) {
	tok := bearerToken(r)
	if tok == "" {
		return "", ErrNoCredential
	}

	// Reject impossible tokens before they become store keys.
	if err := token.Check(tok); err != nil {
		return "", ErrBadCredential
	}

	username, err := g.resolver.Resolve(r.Context(), tok)
	if err != nil {
		if errors.Is(err, resolve.ErrNotFound) {
			return "", ErrBadCredential
		}
		return "", err
	}
	return username, nil
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
