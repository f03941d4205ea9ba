// Package resolve owns the token reverse index (token:<token> -> username).
//
// Binding writes the index entry; resolution reads it back under a bounded
// retry policy that masks read-after-write lag on eventually consistent
// backends. The retry loop is the only place in the service where a single
// request may stall beyond one store round-trip.
package resolve
