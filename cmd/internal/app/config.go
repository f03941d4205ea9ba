package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string // "json" (default) or "pretty"

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	MaxBodyBytes      int64

	// KVBackend selects the backing store: "redis", "postgres" or "memory".
	// Backend choice is configuration, never a code fork.
	KVBackend   string
	RedisURL    string
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32
	KeyPrefix   string

	// Token resolution retry policy (read-after-write masking).
	ResolveAttempts int
	ResolveInterval time.Duration

	// RuntimeTTL bounds how long runtime-namespace state survives.
	RuntimeTTL time.Duration

	// If true, /readyz returns 503 unless the KV backend is reachable.
	ReadinessRequireKV bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr:  EnvString("CIRRUS_HTTP_ADDR", "0.0.0.0:8080"),
		LogLevel:  EnvString("CIRRUS_LOG_LEVEL", "info"),
		LogFormat: EnvString("CIRRUS_LOG_FORMAT", "json"),

		ReadHeaderTimeout: EnvDuration("CIRRUS_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("CIRRUS_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("CIRRUS_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("CIRRUS_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("CIRRUS_HTTP_MAX_HEADER_BYTES", 1<<20),
		MaxBodyBytes:      EnvInt64("CIRRUS_HTTP_MAX_BODY_BYTES", 1<<20),

		KVBackend:   EnvString("CIRRUS_KV_BACKEND", "memory"),
		RedisURL:    EnvString("CIRRUS_REDIS_URL", ""),
		DatabaseURL: EnvString("CIRRUS_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("CIRRUS_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("CIRRUS_DB_MIN_CONNS", 0),
		KeyPrefix:   EnvString("CIRRUS_KEY_PREFIX", ""),

		ResolveAttempts: EnvInt("CIRRUS_RESOLVE_ATTEMPTS", 3),
		ResolveInterval: EnvDuration("CIRRUS_RESOLVE_INTERVAL", 100*time.Millisecond),

		RuntimeTTL: EnvDuration("CIRRUS_RUNTIME_TTL", 24*time.Hour),

		ReadinessRequireKV: EnvBool("CIRRUS_READINESS_REQUIRE_KV", false),
	}
}
