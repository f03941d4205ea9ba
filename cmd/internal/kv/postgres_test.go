package kv

import (
	"testing"
	"time"
)

func TestTTLSeconds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ttl  time.Duration
		want float64
	}{
		{name: "durable", ttl: 0, want: 0},
		{name: "negative is durable", ttl: -time.Minute, want: 0},
		{name: "runtime default", ttl: 24 * time.Hour, want: 86400},
		{name: "sub-second", ttl: 250 * time.Millisecond, want: 0.25},
	}

	for _, tc := range cases {
		if got := ttlSeconds(tc.ttl); got != tc.want {
			t.Fatalf("%s: ttlSeconds(%v) = %v, want %v", tc.name, tc.ttl, got, tc.want)
		}
	}
}
