package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"

	"cirrus/cmd/internal/kv"
)

// ErrNotFound is returned when a token stays unresolvable after every
// retry attempt. Callers treat it as "credential present but invalid".
var ErrNotFound = errors.New("resolve: token not found")

// Config bounds the retry policy.
type Config struct {
	// Attempts is the total number of lookups, first try included.
	Attempts int
	// Interval is the constant wait between attempts.
	Interval time.Duration
}

// DefaultConfig trades up to ~300ms of added latency for tolerance of
// read-after-write lag right after a token is minted.
func DefaultConfig() Config {
	return Config{Attempts: 3, Interval: 100 * time.Millisecond}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Attempts <= 0 {
		c.Attempts = d.Attempts
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	return c
}

// Resolver maps opaque tokens back to usernames.
type Resolver struct {
	store kv.Store
	log   *slog.Logger
	cfg   Config

	attempts  prometheus.Counter
	exhausted prometheus.Counter
}

// NewResolver constructs a resolver. reg may be nil to skip metrics
// registration (tests).
func NewResolver(store kv.Store, log *slog.Logger, cfg Config, reg prometheus.Registerer) *Resolver {
	if log == nil {
		log = slog.Default()
	}

	r := &Resolver{
		store: store,
		log:   log,
		cfg:   cfg.withDefaults(),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cirrus_token_resolve_attempts_total",
			Help: "Individual reverse-index lookups, including retries.",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cirrus_token_resolve_exhausted_total",
			Help: "Resolutions that missed on every attempt.",
		}),
	}

	if reg != nil {
		reg.MustRegister(r.attempts, r.exhausted)
	}

	return r
}

func tokenKey(tok string) string { return "token:" + tok }

// Bind persists the reverse index entry for a freshly minted token.
// Entries are durable; tokens live until externally evicted.
func (r *Resolver) Bind(ctx context.Context, tok, username string) error {
	if err := r.store.Set(ctx, tokenKey(tok), []byte(username), 0); err != nil {
		return fmt.Errorf("resolve: bind token: %w", err)
	}
	return nil
}

// Resolve returns the username owning tok, retrying misses with a constant
// backoff. A store error on an individual attempt is logged and retried
// exactly like a plain miss; only exhaustion surfaces, as ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, tok string) (string, error) {
	backoff := retry.WithMaxRetries(uint64(r.cfg.Attempts-1), retry.NewConstant(r.cfg.Interval))

	var username string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r.attempts.Inc()

		val, err := r.store.Get(ctx, tokenKey(tok))
		if err != nil {
			if !errors.Is(err, kv.ErrNotFound) {
				r.log.Warn("resolve.attempt.fail", "err", err)
			}
			return retry.RetryableError(ErrNotFound)
		}
		if len(val) == 0 {
			return retry.RetryableError(ErrNotFound)
		}

		username = string(val)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.exhausted.Inc()
		return "", ErrNotFound
	}

	return username, nil
}
