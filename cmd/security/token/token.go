package token

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
)

const (
	// DefaultBytes gives 256 bits of entropy, well above the 128-bit floor.
	DefaultBytes = 32

	// minBytes is the entropy floor for any accepted token.
	minBytes = 16

	// maxEncodedLen bounds inbound tokens so a hostile Authorization
	// header cannot push arbitrarily long keys into the store lookup.
	maxEncodedLen = 512
)

// ErrMalformed is returned by Check for tokens that cannot possibly have
// been minted by New.
var ErrMalformed = errors.New("token: malformed")

// New returns a fresh opaque token. nBytes <= 0 falls back to DefaultBytes.
func New(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = DefaultBytes
	}

	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Check performs a cheap shape validation on an inbound token before it is
// used as a store key. It does not authenticate anything; resolution does.
func Check(s string) error {
	if len(s) == 0 || len(s) > maxEncodedLen {
		return ErrMalformed
	}
	// Raw base64url of minBytes encodes to at least ceil(16*4/3) chars.
	if len(s) < base64.RawURLEncoding.EncodedLen(minBytes) {
		return ErrMalformed
	}
	if strings.ContainsAny(s, " \t\r\n") {
		return ErrMalformed
	}
	if _, err := base64.RawURLEncoding.DecodeString(s); err != nil {
		return ErrMalformed
	}
	return nil
}
