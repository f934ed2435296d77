// Package tokenstore persists the client session: the access token, the
// rotating refresh token and the cached user record.
//
// Store exposes the typed operations the API client consumes
// (GetAccessToken, SetTokens, ClearAuthData, ...). It sits on top of a
// Backend, a plain key/value capability with three implementations:
//
//   - MemoryBackend  process-local map, for tests and throwaway sessions
//   - SQLiteBackend  the local metadata table, migrated with goose
//   - RedisBackend   shared storage keyed by a per-profile prefix
//
// Any backend can be wrapped with NewSealedBackend so values are encrypted
// with AES-GCM before they are written.
//
// Every Store error wraps common.ErrStoreUnavailable; callers reading tokens
// treat such errors as "no token".
package tokenstore
