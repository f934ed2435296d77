package tokenstore

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/bookshelf/internal/client/models"
	"github.com/dmitrijs2005/bookshelf/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct{}

var errBoom = errors.New("disk on fire")

func (failingBackend) Get(context.Context, string) ([]byte, error) { return nil, errBoom }
func (failingBackend) Set(context.Context, string, []byte) error { return errBoom }
func (failingBackend) SetMany(context.Context, map[string][]byte) error { return errBoom }
func (failingBackend) Delete(context.Context, ...string) error { return errBoom }

// exerciseStore runs the same scenario against any backend.
func exerciseStore(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()
	s := New(b)

	tok, err := s.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	u, err := s.GetStoredUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	require.NoError(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.SetStoredUser(ctx, models.User{ID: "u1", Email: "ann@example.com", Name: "Ann"}))

	tok, err = s.GetAccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a1", tok)
	tok, err = s.GetRefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", tok)

	require.NoError(t, s.SetAccessToken(ctx, "a2"))
	require.NoError(t, s.SetRefreshToken(ctx, "r2"))
	tok, _ = s.GetAccessToken(ctx)
	assert.Equal(t, "a2", tok)
	tok, _ = s.GetRefreshToken(ctx)
	assert.Equal(t, "r2", tok)

	u, err = s.GetStoredUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "ann@example.com", u.Email)

	require.NoError(t, s.ClearAuthData(ctx))
	tok, _ = s.GetAccessToken(ctx)
	assert.Empty(t, tok)
	tok, _ = s.GetRefreshToken(ctx)
	assert.Empty(t, tok)
	u, err = s.GetStoredUser(ctx)
	require.NoError(t, err)
	assert.Nil(t, u)

	// clearing twice is harmless
	require.NoError(t, s.ClearAuthData(ctx))
}

func TestStore_Memory(t *testing.T) {
	exerciseStore(t, NewMemoryBackend())
}

func TestStore_FailingBackend(t *testing.T) {
	ctx := context.Background()
	s := New(failingBackend{})

	_, err := s.GetAccessToken(ctx)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.ErrorIs(t, err, errBoom)

	_, err = s.GetStoredUser(ctx)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)

	assert.ErrorIs(t, s.SetTokens(ctx, models.TokenPair{AccessToken: "a"}), common.ErrStoreUnavailable)
	assert.ErrorIs(t, s.SetRefreshToken(ctx, "r"), common.ErrStoreUnavailable)
	assert.ErrorIs(t, s.ClearAuthData(ctx), common.ErrStoreUnavailable)
}

func TestStore_CorruptUser(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()
	require.NoError(t, b.Set(ctx, KeyUser, []byte("{not json")))

	_, err := New(b).GetStoredUser(ctx)
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestMemoryBackend_CopiesValues(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	v := []byte("abc")
	require.NoError(t, b.Set(ctx, "k", v))
	v[0] = 'x'

	got, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, _ := b.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}
