package alloc

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFirstFit_SimpleAlloc tests sequential allocations from an empty space.
func TestFirstFit_SimpleAlloc(t *testing.T) {
	f, err := NewFirstFit(0, 1<<20)
	require.NoError(t, err)

	a, err := f.Alloc(12888, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), a, "empty space allocates at the bottom")

	b, err := f.Alloc(100, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(12888), b)

	assert.Equal(t, uint64(12988), f.InUse())
	size, ok := f.SizeOf(b)
	require.True(t, ok)
	assert.Equal(t, uint64(100), size)
}

// TestFirstFit_Hint tests that allocations start at or above the hint.
func TestFirstFit_Hint(t *testing.T) {
	f, err := NewFirstFit(0, 1<<47)
	require.NoError(t, err)

	a, err := f.Alloc(64, 0x10000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x10000), a)

	// a hint inside a live span moves past it
	b, err := f.Alloc(64, 0x10010)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x10040), b)

	// a low hint still finds the gap below
	c, err := f.Alloc(64, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), c)
}

// TestFirstFit_ReusesFreedRange tests that a freed range is handed out again.
func TestFirstFit_ReusesFreedRange(t *testing.T) {
	f, err := NewFirstFit(0, 1<<20)
	require.NoError(t, err)

	a, err := f.Alloc(256, 0)
	require.NoError(t, err)
	_, err = f.Alloc(256, 0)
	require.NoError(t, err)

	require.NoError(t, f.Free(a))
	again, err := f.Alloc(128, 0)
	require.NoError(t, err)
	assert.Equal(t, a, again, "first fit reuses the freed gap")

	// a request bigger than the remaining gap skips it
	big, err := f.Alloc(200, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(512), big)
}

// TestFirstFit_Exhaustion tests the upper bound of the address space.
func TestFirstFit_Exhaustion(t *testing.T) {
	f, err := NewFirstFit(0x1000, 0x2000)
	require.NoError(t, err)

	_, err = f.Alloc(0x1001, 0)
	assert.ErrorIs(t, err, ErrNoSpace)

	a, err := f.Alloc(0x1000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), a)

	_, err = f.Alloc(1, 0)
	assert.ErrorIs(t, err, ErrNoSpace)

	_, err = f.Alloc(1, ^uint64(0))
	assert.ErrorIs(t, err, ErrNoSpace, "hint at the top must not wrap")
}

func TestFirstFit_Errors(t *testing.T) {
	f, err := NewFirstFit(0, 100)
	require.NoError(t, err)

	_, err = f.Alloc(0, 0)
	assert.ErrorIs(t, err, ErrZeroSize)
	assert.ErrorIs(t, f.Free(5), ErrBadBase)

	_, err = NewFirstFit(10, 10)
	assert.Error(t, err)
}

// TestFirstFit_NoOverlap allocates and frees at random and checks the span
// list stays sorted and disjoint.
func TestFirstFit_NoOverlap(t *testing.T) {
	f, err := NewFirstFit(0, 1<<24)
	require.NoError(t, err)
	rng := rand.New(rand.NewPCG(5, 6))

	var live []uint64
	for range 2000 {
		if len(live) > 0 && rng.IntN(3) == 0 {
			i := rng.IntN(len(live))
			require.NoError(t, f.Free(live[i]))
			live = append(live[:i], live[i+1:]...)
			continue
		}
		base, err := f.Alloc(rng.Uint64N(4096)+1, rng.Uint64N(1<<20))
		require.NoError(t, err)
		live = append(live, base)
	}

	var total uint64
	for i, s := range f.spans {
		total += s.size
		if i > 0 {
			prev := f.spans[i-1]
			require.LessOrEqual(t, prev.end(), s.base, "spans %d and %d overlap", i-1, i)
		}
	}
	assert.Equal(t, f.InUse(), total)
	assert.Len(t, f.spans, len(live))
}
