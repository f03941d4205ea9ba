// Package state stores small per-user JSON blobs, partitioned by a logical
// namespace. Each namespace is a flat key with get/set semantics only:
// writes replace the whole payload, last writer wins, and absence is a
// normal value rather than an error.
package state
