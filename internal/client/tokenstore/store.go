package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
)

// Store is the typed session store used by the API client. It is safe for
// concurrent use when its Backend is.
type Store struct {
	backend Backend
}

func New(b Backend) *Store {
	return &Store{backend: b}
}

func (s *Store) GetAccessToken(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyAccessToken)
}

func (s *Store) GetRefreshToken(ctx context.Context) (string, error) {
	return s.getString(ctx, KeyRefreshToken)
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, KeyAccessToken, []byte(token))
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, KeyRefreshToken, []byte(token))
}

// SetTokens replaces both tokens in one write, so a reader never observes a
// new access token next to an already rotated-away refresh token.
func (s *Store) SetTokens(ctx context.Context, pair models.TokenPair) error {
	err := s.backend.SetMany(ctx, map[string][]byte{
		KeyAccessToken:  []byte(pair.AccessToken),
		KeyRefreshToken: []byte(pair.RefreshToken),
	})
	if err != nil {
		return fmt.Errorf("%w: set tokens: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

// GetStoredUser returns nil, nil when no user is cached.
func (s *Store) GetStoredUser(ctx context.Context) (*models.User, error) {
	raw, err := s.backend.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %w", common.ErrStoreUnavailable, KeyUser, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", common.ErrStoreUnavailable, KeyUser, err)
	}
	return &u, nil
}

func (s *Store) SetStoredUser(ctx context.Context, u models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyUser, err)
	}
	return s.set(ctx, KeyUser, raw)
}

// ClearAuthData logs the session out locally.
func (s *Store) ClearAuthData(ctx context.Context) error {
	if err := s.backend.Delete(ctx, authKeys...); err != nil {
		return fmt.Errorf("%w: clear: %w", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *Store) getString(ctx context.Context, key string) (string, error) {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %w", common.ErrStoreUnavailable, key, err)
	}
	return string(raw), nil
}

func (s *Store) set(ctx context.Context, key string, value []byte) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		return fmt.Errorf("%w: set %s: %w", common.ErrStoreUnavailable, key, err)
	}
	return nil
}
