package cache

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Niffl3rReturns/n3r-sdk/pkg/distributor"
	"github.com/Niffl3rReturns/n3r-sdk/pkg/prize"
)

func TestKey(t *testing.T) {
	require.Equal(t, "0xAa-1:42", Key("0xAa-1", 42))
}

func TestMapCachePutGet(t *testing.T) {
	ctx := context.Background()
	c := NewMapCache()

	pair := distributor.DrawPair{
		Draw: prize.Draw{
			DrawID:              42,
			WinningRandomNumber: big.NewInt(123),
		},
		PrizeDistribution: prize.PrizeDistribution{
			Prize: big.NewInt(1000),
		},
	}
	require.NoError(t, c.Put(ctx, Key("0xAa-1", 42), pair))

	got, ok, err := c.Get(ctx, Key("0xAa-1", 42))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, pair, got)

	_, ok, err = c.Get(ctx, Key("0xAa-1", 43))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMapCacheSize(t *testing.T) {
	ctx := context.Background()
	c := NewMapCache()

	size, err := c.Size(ctx)
	require.NoError(t, err)
	require.Zero(t, size)

	require.NoError(t, c.Put(ctx, Key("0xAa-1", 1), distributor.DrawPair{}))
	require.NoError(t, c.Put(ctx, Key("0xAa-1", 2), distributor.DrawPair{}))
	// Overwrite does not grow the cache.
	require.NoError(t, c.Put(ctx, Key("0xAa-1", 2), distributor.DrawPair{}))

	size, err = c.Size(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), size)
}
