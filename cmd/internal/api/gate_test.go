package api

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"cirrus/cmd/internal/resolve"
)

type stubResolver struct {
	username string
	err      error
	called   bool
}

func (s *stubResolver) Resolve(_ context.Context, _ string) (string, error) {
	s.called = true
	return s.username, s.err
}

func validToken() string {
	// Shape of a real minted token: 32 bytes, raw base64url.
	return strings.Repeat("a", 43)
}

func TestGate_MissingOrMalformedHeader(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
	}{
		{name: "absent", header: ""},
		{name: "no scheme", header: validToken()},
		{name: "wrong scheme", header: "Basic dXNlcjpwdw"},
		{name: "empty token", header: "Bearer "},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			rs := &stubResolver{username: "alice"}
			g := NewGate(rs)

			r := httptest.NewRequest("GET", "/api/settings", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}

			if _, err := g.Authenticate(r); !errors.Is(err, ErrNoCredential) {
				t.Fatalf("err = %v, want ErrNoCredential", err)
			}
			if rs.called {
				t.Fatalf("resolver must not be consulted without a credential")
			}
		})
	}
}

func TestGate_MalformedTokenSkipsLookup(t *testing.T) {
	t.Parallel()

	rs := &stubResolver{username: "alice"}
	g := NewGate(rs)

	r := httptest.NewRequest("GET", "/api/settings", nil)
	r.Header.Set("Authorization", "Bearer garbage")

	if _, err := g.Authenticate(r); !errors.Is(err, ErrBadCredential) {
		t.Fatalf("err = %v, want ErrBadCredential", err)
	}
	if rs.called {
		t.Fatalf("malformed tokens must be rejected before the store lookup")
	}
}

func TestGate_UnresolvableToken(t *testing.T) {
	t.Parallel()

	g := NewGate(&stubResolver{err: resolve.ErrNotFound})

	r := httptest.NewRequest("GET", "/api/settings", nil)
	r.Header.Set("Authorization", "Bearer "+validToken())

	if _, err := g.Authenticate(r); !errors.Is(err, ErrBadCredential) {
		t.Fatalf("err = %v, want ErrBadCredential", err)
	}
}

func TestGate_ResolvedToken(t *testing.T) {
	t.Parallel()

	g := NewGate(&stubResolver{username: "alice"})

	r := httptest.NewRequest("GET", "/api/settings", nil)
	r.Header.Set("Authorization", "bearer "+validToken()) // scheme is case-insensitive

	username, err := g.Authenticate(r)
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if username != "alice" {
		t.Fatalf("username = %q, want alice", username)
	}
}
