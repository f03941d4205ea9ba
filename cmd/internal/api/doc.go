// Package api exposes the HTTP surface: credential issuance under
// /api/auth and authenticated per-user state under /api/settings and
// /api/runtime. Every state route goes through the identity gate, which
// turns a bearer token into a username or a precise rejection.
package api
