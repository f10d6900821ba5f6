package callback

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryVerifiedCache(t *testing.T) {
	ctx := context.Background()
	c := newMemoryVerifiedCache(time.Hour)

	seen, err := c.Seen(ctx, "TXN-1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, c.Mark(ctx, "TXN-1"))

	seen, err = c.Seen(ctx, "TXN-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = c.Seen(ctx, "TXN-2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestMemoryVerifiedCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := newMemoryVerifiedCache(10 * time.Millisecond)

	require.NoError(t, c.Mark(ctx, "TXN-1"))
	time.Sleep(25 * time.Millisecond)

	seen, err := c.Seen(ctx, "TXN-1")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestNewVerifiedCacheFallsBackWithoutAddr(t *testing.T) {
	c, err := NewVerifiedCache("", "", 0, time.Hour)
	require.NoError(t, err)
	_, ok := c.(*memoryVerifiedCache)
	assert.True(t, ok)
}

func TestNewVerifiedCacheFallsBackWhenUnreachable(t *testing.T) {
	c, err := NewVerifiedCache("127.0.0.1:1", "", 0, time.Hour)
	assert.Error(t, err)
	_, ok := c.(*memoryVerifiedCache)
	assert.True(t, ok)
}
