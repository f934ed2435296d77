package tokenstore

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bookshelf/internal/cryptox"
)

// sealSalt is fixed: the key only has to be stable for one secret, and the
// secret itself never leaves the device.
var sealSalt = []byte("bookshelf/tokenstore/v1")

// SealedBackend encrypts values before handing them to the inner backend.
type SealedBackend struct {
	inner Backend
	key   []byte
}

// NewSealedBackend derives an AES-256 key from secret and wraps inner.
func NewSealedBackend(inner Backend, secret []byte) *SealedBackend {
	return &SealedBackend{inner: inner, key: cryptox.DeriveKey(secret, sealSalt)}
}

func (s *SealedBackend) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil || sealed == nil {
		return nil, err
	}
	plain, err := cryptox.Open(sealed, s.key)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return plain, nil
}

func (s *SealedBackend) Set(ctx context.Context, key string, value []byte) error {
	sealed, err := cryptox.Seal(value, s.key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", key, err)
	}
	return s.inner.Set(ctx, key, sealed)
}

func (s *SealedBackend) SetMany(ctx context.Context, values map[string][]byte) error {
	sealed := make(map[string][]byte, len(values))
	for k, v := range values {
		b, err := cryptox.Seal(v, s.key)
		if err != nil {
			return fmt.Errorf("seal %s: %w", k, err)
		}
		sealed[k] = b
	}
	return s.inner.SetMany(ctx, sealed)
}

func (s *SealedBackend) Delete(ctx context.Context, keys ...string) error {
	return s.inner.Delete(ctx, keys...)
}
