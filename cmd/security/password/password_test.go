package password

import (
	"errors"
	"testing"
)

// Small params keep the test suite fast; production uses DefaultParams.
func testParams() Params {
	return Params{
		MemoryKiB:   8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify_OK(t *testing.T) {
	t.Parallel()

	h, err := Hash("pw123", testParams())
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := Verify("pw123", h)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatalf("expected match")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	t.Parallel()

	h, err := Hash("pw123", testParams())
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := Verify("pw124", h)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatalf("expected mismatch")
	}
}

func TestVerify_InvalidHash(t *testing.T) {
	t.Parallel()

	cases := []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$AAAA",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$AAAA",
		"$argon2id$v=19$m=0,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$AAAA",
		// Parameters beyond the anti-DoS bounds.
		"$argon2id$v=19$m=999999999,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
	}

	for _, in := range cases {
		if ok, err := Verify("whatever", in); !errors.Is(err, ErrInvalidHash) || ok {
			t.Fatalf("Verify(%q) = (%v, %v), want (false, ErrInvalidHash)", in, ok, err)
		}
	}
}

func TestHash_SaltedUniquely(t *testing.T) {
	t.Parallel()

	h1, err := Hash("pw123", testParams())
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	h2, err := Hash("pw123", testParams())
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password must differ (random salt)")
	}
}
