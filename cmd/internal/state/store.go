package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cirrus/cmd/internal/kv"
)

// Well-known namespaces. Anything else is accepted and stored durably.
const (
	// NamespaceSettings holds durable user preferences.
	NamespaceSettings = "settings"
	// NamespaceRuntime holds volatile session state; entries expire so
	// stale data does not outlive its usefulness.
	NamespaceRuntime = "runtime"
)

// DefaultRuntimeTTL is how long runtime entries survive without a rewrite.
const DefaultRuntimeTTL = 24 * time.Hour

// ErrBadNamespace rejects namespaces that would corrupt the key layout.
var ErrBadNamespace = errors.New("state: bad namespace")

// Store reads and writes per-user blobs on top of the kv boundary.
type Store struct {
	store      kv.Store
	runtimeTTL time.Duration
}

// NewStore wires a state store. runtimeTTL <= 0 falls back to the default.
func NewStore(store kv.Store, runtimeTTL time.Duration) *Store {
	if runtimeTTL <= 0 {
		runtimeTTL = DefaultRuntimeTTL
	}
	return &Store{store: store, runtimeTTL: runtimeTTL}
}

func blobKey(namespace, username string) string {
	return namespace + ":" + username
}

func checkNamespace(namespace string) error {
	if namespace == "" || strings.ContainsAny(namespace, ": \t\r\n") {
		return ErrBadNamespace
	}
	return nil
}

// Read returns the last written payload for owner+namespace, or (nil, nil)
// if never written or expired. Absence is not an error.
func (s *Store) Read(ctx context.Context, username, namespace string) (json.RawMessage, error) {
	if err := checkNamespace(namespace); err != nil {
		return nil, err
	}

	val, err := s.store.Get(ctx, blobKey(namespace, username))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("state: read %s: %w", namespace, err)
	}
	return json.RawMessage(val), nil
}

// Write replaces the payload wholesale. No merge, no version check:
// concurrent writers race with last-writer-wins by contract.
func (s *Store) Write(ctx context.Context, username, namespace string, payload json.RawMessage) error {
	if err := checkNamespace(namespace); err != nil {
		return err
	}

	if err := s.store.Set(ctx, blobKey(namespace, username), payload, s.ttlFor(namespace)); err != nil {
		return fmt.Errorf("state: write %s: %w", namespace, err)
	}
	return nil
}

func (s *Store) ttlFor(namespace string) time.Duration {
	if namespace == NamespaceRuntime {
		return s.runtimeTTL
	}
	return 0
}
