// Package token generates and validates opaque bearer tokens.
//
// Tokens are random byte strings, base64url-encoded, with no embedded
// structure or claims. Identity is recovered exclusively through the
// server-side reverse index (token -> username), never from the token
// itself.
package token
