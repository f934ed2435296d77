package tokenstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Sealed(t *testing.T) {
	exerciseStore(t, NewSealedBackend(NewMemoryBackend(), []byte("s3cret")))
}

func TestSealedBackend_CiphertextAtRest(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryBackend()
	b := NewSealedBackend(inner, []byte("s3cret"))

	require.NoError(t, b.Set(ctx, KeyRefreshToken, []byte("refresh-token-value")))

	raw, err := inner.Get(ctx, KeyRefreshToken)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "refresh-token-value")

	_, err = NewSealedBackend(inner, []byte("other")).Get(ctx, KeyRefreshToken)
	assert.Error(t, err)
}
