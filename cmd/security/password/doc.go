// Package password is the opaque hash/verify capability for credentials.
//
// It encodes Argon2id hashes in the standard PHC string format so stored
// hashes stay verifiable across parameter upgrades.
package password
