package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cirrus/cmd/internal/kv"
	"cirrus/cmd/security/password"
	"cirrus/cmd/security/token"
)

const (
	// MinUsernameLen matches the public contract: usernames are 3+ chars.
	MinUsernameLen = 3
	// maxUsernameLen bounds the derived store key.
	maxUsernameLen = 64
)

// userRecord is the stored shape behind user:<name>.
// PasswordHash is the PHC-encoded argon2id string.
type userRecord struct {
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// TokenIndex persists the reverse index entry token:<token> -> username.
// The resolver side of the same index lives in cmd/internal/resolve.
type TokenIndex interface {
	Bind(ctx context.Context, tok, username string) error
}

// Service implements registration and login.
type Service struct {
	store  kv.Store
	tokens TokenIndex
	log    *slog.Logger
	params password.Params

	// dummyHash is verified against when the user record is missing, so
	// "unknown user" and "bad password" take comparable time.
	dummyHash string

	now func() time.Time
}

// NewService wires a credential service over the given store and token index.
func NewService(store kv.Store, tokens TokenIndex, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		store:  store,
		tokens: tokens,
		log:    log,
		params: password.DefaultParams(),
		now:    func() time.Time { return time.Now().UTC() },
	}

	if h, err := password.Hash("dummy-password-for-timing-only", s.params); err == nil {
		s.dummyHash = h
	}

	return s
}

// SetParams overrides the hashing cost. Test hook; production keeps defaults.
func (s *Service) SetParams(p password.Params) { s.params = p }

// UserKey returns the store key holding the record for username.
func UserKey(username string) string { return "user:" + username }

// Register creates a user record and returns a freshly minted token.
//
// The existence check and the subsequent writes are separate store calls:
// two racing registrations of the same username can both observe "absent"
// and both write, last writer wins. The store contract offers no
// compare-and-set, so this race is documented behavior rather than fixed.
func (s *Service) Register(ctx context.Context, username, pw string) (string, error) {
	username = strings.TrimSpace(username)
	if err := validateInput(username, pw); err != nil {
		return "", err
	}

	_, err := s.store.Get(ctx, UserKey(username))
	switch {
	case err == nil:
		return "", OpError{Op: "credential.Register", Kind: ErrConflict, Msg: "username already exists"}
	case errors.Is(err, kv.ErrNotFound):
		// Free to register.
	default:
		return "", fmt.Errorf("credential.Register: lookup: %w", err)
	}

	hash, err := password.Hash(pw, s.params)
	if err != nil {
		return "", fmt.Errorf("credential.Register: hash: %w", err)
	}

	rec, err := json.Marshal(userRecord{PasswordHash: hash, CreatedAt: s.now()})
	if err != nil {
		return "", fmt.Errorf("credential.Register: encode: %w", err)
	}
	if err := s.store.Set(ctx, UserKey(username), rec, 0); err != nil {
		return "", fmt.Errorf("credential.Register: persist user: %w", err)
	}

	tok, err := s.mintToken(ctx, username)
	if err != nil {
		// User exists but holds no token; recoverable via login.
		return "", fmt.Errorf("credential.Register: %w", err)
	}

	s.log.Info("credential.register", "username", username)
	return tok, nil
}

// Login verifies the password and mints a new token. Unknown usernames and
// wrong passwords are reported identically to avoid enumeration; earlier
// tokens for the same user stay valid.
func (s *Service) Login(ctx context.Context, username, pw string) (string, error) {
	username = strings.TrimSpace(username)
	if err := validateInput(username, pw); err != nil {
		return "", err
	}

	raw, err := s.store.Get(ctx, UserKey(username))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			if s.dummyHash != "" {
				_, _ = password.Verify(pw, s.dummyHash)
			}
			return "", OpError{Op: "credential.Login", Kind: ErrUnauthenticated}
		}
		return "", fmt.Errorf("credential.Login: lookup: %w", err)
	}

	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return "", fmt.Errorf("credential.Login: decode user record: %w", err)
	}

	ok, err := password.Verify(pw, rec.PasswordHash)
	if err != nil || !ok {
		if err != nil {
			s.log.Error("credential.login.verify.fail", "err", err, "username", username)
		}
		return "", OpError{Op: "credential.Login", Kind: ErrUnauthenticated}
	}

	tok, err := s.mintToken(ctx, username)
	if err != nil {
		return "", fmt.Errorf("credential.Login: %w", err)
	}

	s.log.Info("credential.login", "username", username)
	return tok, nil
}

func (s *Service) mintToken(ctx context.Context, username string) (string, error) {
	tok, err := token.New(token.DefaultBytes)
	if err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	if err := s.tokens.Bind(ctx, tok, username); err != nil {
		return "", fmt.Errorf("bind token: %w", err)
	}
	return tok, nil
}

func validateInput(username, pw string) error {
	if len(username) < MinUsernameLen {
		return OpError{Op: "credential.validate", Kind: ErrInvalidInput, Msg: "username must be at least 3 characters"}
	}
	if len(username) > maxUsernameLen {
		return OpError{Op: "credential.validate", Kind: ErrInvalidInput, Msg: "username is too long"}
	}
	if pw == "" {
		return OpError{Op: "credential.validate", Kind: ErrInvalidInput, Msg: "password is required"}
	}
	return nil
}
