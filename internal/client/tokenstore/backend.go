package tokenstore

import "context"

const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// authKeys are removed together by ClearAuthData.
var authKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Backend is the key/value capability a Store is built on.
// Get returns (nil, nil) when the key is absent. SetMany writes all pairs
// or none of them.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}
