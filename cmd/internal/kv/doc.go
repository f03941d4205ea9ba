// Package kv is the backing key-value store boundary for cirrus.
//
// The contract is deliberately narrow: string keys, opaque byte values,
// optional expiry. No transactions and no compare-and-set — callers must
// assume partially completed multi-key writes are observable, and reads
// may lag very recent writes on remote backends.
package kv
