package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBump_AllocatesMonotonically(t *testing.T) {
	t.Parallel()

	b := NewBump(100)

	off, err := b.Allocate(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), off)

	off, err = b.Allocate(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(110), off)

	// Freeing is a no-op; the next allocation still moves forward.
	b.Free(100, 10)
	off, err = b.Allocate(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(115), off)
}

func TestBump_RejectsZeroLength(t *testing.T) {
	t.Parallel()

	b := NewBump(0)
	_, err := b.Allocate(0)
	assert.Error(t, err)
}

func TestFreeList_FirstFit(t *testing.T) {
	t.Parallel()

	fl := NewFreeList(0, 100)

	off, err := fl.Allocate(40)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), off)

	off, err = fl.Allocate(60)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), off)

	_, err = fl.Allocate(1)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, uint64(0), fl.FreeBytes())
}

func TestFreeList_ReusesFreedSpace(t *testing.T) {
	t.Parallel()

	fl := NewFreeList(0, 100)

	a, err := fl.Allocate(30)
	require.NoError(t, err)
	_, err = fl.Allocate(30)
	require.NoError(t, err)

	fl.Free(a, 30)
	off, err := fl.Allocate(20)
	require.NoError(t, err)
	assert.Equal(t, a, off, "first fit should reuse the freed hole")
}

func TestFreeList_CoalescesAdjacentSpans(t *testing.T) {
	t.Parallel()

	fl := NewFreeList(0, 100)
	_, err := fl.Allocate(100)
	require.NoError(t, err)

	// Free three touching spans out of order; they must merge into one
	// span large enough for a single 60-byte allocation.
	fl.Free(0, 20)
	fl.Free(40, 20)
	fl.Free(20, 20)

	off, err := fl.Allocate(60)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), off)
}

func TestFreeList_SkipsTooSmallSpans(t *testing.T) {
	t.Parallel()

	fl := NewFreeList(0, 100)
	_, err := fl.Allocate(100)
	require.NoError(t, err)

	fl.Free(0, 10)
	fl.Free(50, 30)

	off, err := fl.Allocate(25)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), off)
	assert.Equal(t, uint64(15), fl.FreeBytes())
}

func TestFreeList_ExhaustionAndRecovery(t *testing.T) {
	t.Parallel()

	fl := NewFreeList(10, 20)
	off, err := fl.Allocate(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), off)

	_, err = fl.Allocate(1)
	assert.ErrorIs(t, err, ErrExhausted)

	fl.Free(10, 10)
	off, err = fl.Allocate(10)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), off)
}
