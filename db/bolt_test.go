package db

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDistributor = "0x00000000000000000000000000000000000000Aa-1"

func newTestDB(t *testing.T) DB {
	t.Helper()

	db, err := NewBoltDB(filepath.Join(t.TempDir(), "test_db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	return db
}

func TestBoundsRoundTrip(t *testing.T) {
	db := newTestDB(t)

	// Unset bounds read as zero.
	lower, err := db.GetLowerBound(testDistributor)
	require.NoError(t, err)
	require.Zero(t, lower)

	require.NoError(t, db.SetLowerBound(testDistributor, 10))
	require.NoError(t, db.SetUpperBound(testDistributor, 20))

	lower, err = db.GetLowerBound(testDistributor)
	require.NoError(t, err)
	require.Equal(t, uint32(10), lower)

	upper, err := db.GetUpperBound(testDistributor)
	require.NoError(t, err)
	require.Equal(t, uint32(20), upper)
}

func TestBoundsIsolatedPerDistributor(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetUpperBound(testDistributor, 20))

	upper, err := db.GetUpperBound("0x00000000000000000000000000000000000000bB-137")
	require.NoError(t, err)
	require.Zero(t, upper)
}

func TestGetMissingValuesBitSet(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetProcessed(testDistributor, 11))
	require.NoError(t, db.SetProcessed(testDistributor, 13))

	missing, err := db.GetMissingValuesBitSet(testDistributor, 10, 14)
	require.NoError(t, err)

	require.True(t, missing.Test(10))
	require.False(t, missing.Test(11))
	require.True(t, missing.Test(12))
	require.False(t, missing.Test(13))
	require.True(t, missing.Test(14))
}

func TestGetMissingValuesBitSetIgnoresBoundKeys(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.SetLowerBound(testDistributor, 10))
	require.NoError(t, db.SetUpperBound(testDistributor, 14))
	require.NoError(t, db.SetProcessed(testDistributor, 12))

	missing, err := db.GetMissingValuesBitSet(testDistributor, 10, 14)
	require.NoError(t, err)
	require.Equal(t, uint(4), missing.Count())
	require.False(t, missing.Test(12))
}

func TestForEachDrawIDTerminatesAtMaxUint32(t *testing.T) {
	var ids []uint32
	forEachDrawID(math.MaxUint32-2, math.MaxUint32, func(id uint32) {
		ids = append(ids, id)
	})
	require.Equal(t, []uint32{math.MaxUint32 - 2, math.MaxUint32 - 1, math.MaxUint32}, ids)
}

func TestCleanup(t *testing.T) {
	db := newTestDB(t)

	for i := uint32(5); i <= 15; i++ {
		require.NoError(t, db.SetProcessed(testDistributor, i))
	}
	require.NoError(t, db.SetLowerBound(testDistributor, 10))

	require.NoError(t, db.Cleanup(testDistributor))

	missing, err := db.GetMissingValuesBitSet(testDistributor, 5, 15)
	require.NoError(t, err)
	// Entries below the lower bound are gone, the rest survive.
	for i := uint(5); i <= 9; i++ {
		require.True(t, missing.Test(i))
	}
	for i := uint(10); i <= 15; i++ {
		require.False(t, missing.Test(i))
	}
}
