// Package credential implements registration and login over the kv store.
//
// It owns the user:<name> record and the password verification step, and
// mints the opaque bearer tokens that the resolver later maps back to a
// username. The two writes behind every successful call (user record,
// token reverse index) are not transactional; see the service docs for
// the documented races this implies.
package credential
