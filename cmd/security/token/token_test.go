package token

import (
	"errors"
	"strings"
	"testing"
)

func TestNew_UniqueAndWellFormed(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		tok, err := New(0)
		if err != nil {
			t.Fatalf("New error: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token generated: %q", tok)
		}
		seen[tok] = true

		if err := Check(tok); err != nil {
			t.Fatalf("Check rejected freshly minted token %q: %v", tok, err)
		}
	}
}

func TestCheck_Malformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "too short", in: "abc"},
		{name: "whitespace", in: "aGVsbG8 d29ybGQtaGVsbG8td29ybGQ"},
		{name: "bad alphabet", in: strings.Repeat("!", 40)},
		{name: "oversized", in: strings.Repeat("A", 1024)},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := Check(tc.in); !errors.Is(err, ErrMalformed) {
				t.Fatalf("Check(%q)=%v, want ErrMalformed", tc.in, err)
			}
		})
	}
}
