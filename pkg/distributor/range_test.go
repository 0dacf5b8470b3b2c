package distributor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconcileRangeOverlap(t *testing.T) {
	ids := reconcileRange(
		bufferBounds{oldest: 2, newest: 10, ok: true},
		bufferBounds{oldest: 5, newest: 8, ok: true},
	)
	require.Equal(t, []uint32{5, 6, 7, 8}, ids)
}

func TestReconcileRangeDisjoint(t *testing.T) {
	ids := reconcileRange(
		bufferBounds{oldest: 2, newest: 4, ok: true},
		bufferBounds{oldest: 6, newest: 9, ok: true},
	)
	require.Empty(t, ids)
}

func TestReconcileRangeUnavailableBuffer(t *testing.T) {
	ids := reconcileRange(
		bufferBounds{oldest: 2, newest: 10, ok: true},
		bufferBounds{},
	)
	require.Empty(t, ids)

	ids = reconcileRange(bufferBounds{}, bufferBounds{oldest: 1, newest: 3, ok: true})
	require.Empty(t, ids)
}

func TestReconcileRangeSingleID(t *testing.T) {
	ids := reconcileRange(
		bufferBounds{oldest: 4, newest: 4, ok: true},
		bufferBounds{oldest: 1, newest: 9, ok: true},
	)
	require.Equal(t, []uint32{4}, ids)
}

func TestRangeFromBounds(t *testing.T) {
	require.Equal(t, []uint32{1, 2, 3}, rangeFromBounds(bufferBounds{oldest: 1, newest: 3, ok: true}))
	require.Empty(t, rangeFromBounds(bufferBounds{oldest: 3, newest: 1, ok: true}))
	require.Empty(t, rangeFromBounds(bufferBounds{}))
}
