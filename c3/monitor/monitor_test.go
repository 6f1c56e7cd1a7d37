package monitor

import (
	"sync"
	"testing"

	"github.com/joshuapare/c3kit/c3/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pk  = 0x111111
	dk1 = 0xAAAAAA
	dk2 = 0xBBBBBB
)

func TestRegister_CreatesUninitialized(t *testing.T) {
	m := New()

	rec, out, err := m.Register(0x1000, pk, Uninitialized, 0)
	require.NoError(t, err)
	assert.Equal(t, Created, out)
	assert.Equal(t, Uninitialized, rec.State)
	assert.True(t, rec.Allocated)
	assert.Equal(t, uint32(0), rec.DataKey)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.Live())
}

func TestLifecycle(t *testing.T) {
	m := New()
	ca := address.CA(0x2000)

	_, _, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)

	// unwritten bytes do not match the writer's key
	ok, err := m.CheckRead(ca, pk, dk1)
	require.NoError(t, err)
	assert.False(t, ok)

	rec, found := m.Store(ca, pk, dk1)
	require.True(t, found)
	assert.Equal(t, Encrypted, rec.State)
	assert.Equal(t, uint32(dk1), rec.DataKey)

	ok, err = m.CheckRead(ca, pk, dk1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.CheckRead(ca, pk, dk2)
	require.NoError(t, err)
	assert.False(t, ok, "different data key must mismatch")

	require.NoError(t, m.Free(ca, pk))
	rec, ok = m.Lookup(ca, pk)
	require.True(t, ok, "freed records are kept as tombstones")
	assert.False(t, rec.Allocated)
	assert.Equal(t, Encrypted, rec.State, "free leaves state untouched")
	assert.Equal(t, uint32(dk1), rec.DataKey, "free leaves data key untouched")
	assert.Equal(t, 0, m.Live())
	assert.Equal(t, 1, m.Len())

	// double free is harmless
	require.NoError(t, m.Free(ca, pk))
	assert.Equal(t, 0, m.Live())
}

func TestRegister_ReactivatesTombstone(t *testing.T) {
	m := New()
	ca := address.CA(0x3000)

	_, _, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)
	m.Store(ca, pk, dk1)
	require.NoError(t, m.Free(ca, pk))

	rec, out, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)
	assert.Equal(t, Reactivated, out)
	assert.True(t, rec.Allocated)
	assert.Equal(t, Uninitialized, rec.State)
	assert.Equal(t, 1, m.Len(), "no duplicate record")

	// a stale reader holding the old key now mismatches
	ok, err := m.CheckRead(ca, pk, dk1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, uint64(1), m.Stats().Reactivated)
}

func TestRegister_CollisionMerges(t *testing.T) {
	m := New()
	ca := address.CA(0x4000)

	_, _, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)
	m.Store(ca, pk, dk1)

	rec, out, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)
	assert.Equal(t, Collided, out)
	assert.Equal(t, Garbled, rec.State)
	assert.Equal(t, uint32(dk1), rec.DataKey)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.Live())
	assert.Equal(t, uint64(1), m.Stats().Collisions)

	// next store re-encrypts
	rec, _ = m.Store(ca, pk, dk2)
	assert.Equal(t, Encrypted, rec.State)
}

func TestKeysArePartOfIdentity(t *testing.T) {
	m := New()
	ca := address.CA(0x5000)

	_, out, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)
	assert.Equal(t, Created, out)
	_, out, err = m.Register(ca, pk+1, Uninitialized, 0)
	require.NoError(t, err)
	assert.Equal(t, Created, out, "other pointer key is another record")
	assert.Equal(t, 2, m.Len())

	_, err = m.CheckRead(ca, pk+2, dk1)
	var le *LookupError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 0, le.Found)
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestStore_OutOfBoundsLeavesTrace(t *testing.T) {
	m := New()
	ca := address.CA(0x6000)

	rec, found := m.Store(ca, pk, dk1)
	assert.False(t, found)
	assert.Equal(t, Garbled, rec.State)
	assert.False(t, rec.Allocated)

	got, ok := m.Lookup(ca, pk)
	require.True(t, ok)
	assert.Equal(t, rec, got)
	assert.Equal(t, uint64(1), m.Stats().Traces)
	assert.Equal(t, 0, m.Live())

	// a later allocation over the traced byte reactivates it
	rec, out, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)
	assert.Equal(t, Reactivated, out)
	assert.True(t, rec.Allocated)
}

func TestMissingRecordErrors(t *testing.T) {
	m := New()
	assert.ErrorIs(t, m.Free(0x7000, pk), ErrNoRecord)
	assert.ErrorIs(t, m.Garble(0x7000, pk), ErrNoRecord)
	_, err := m.CheckRead(0x7000, pk, dk1)
	assert.ErrorIs(t, err, ErrNoRecord)
	assert.Contains(t, err.Error(), "matched 0 records")
}

func TestGarble(t *testing.T) {
	m := New()
	ca := address.CA(0x8000)
	_, _, err := m.Register(ca, pk, Uninitialized, 0)
	require.NoError(t, err)
	m.Store(ca, pk, dk1)

	require.NoError(t, m.Garble(ca, pk))
	rec, _ := m.Lookup(ca, pk)
	assert.Equal(t, Garbled, rec.State)
	assert.True(t, rec.Allocated, "garbling does not touch liveness")
}

func TestLimit(t *testing.T) {
	m := New(WithLimit(2))
	assert.True(t, m.CanRegister(2))
	assert.False(t, m.CanRegister(3))

	_, _, err := m.Register(1, pk, Uninitialized, 0)
	require.NoError(t, err)
	_, _, err = m.Register(2, pk, Uninitialized, 0)
	require.NoError(t, err)
	_, _, err = m.Register(3, pk, Uninitialized, 0)
	assert.ErrorIs(t, err, ErrLimit)

	// stores past the limit are not tracked but do not fail
	_, found := m.Store(4, pk, dk1)
	assert.False(t, found)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, uint64(1), m.Stats().Untracked)
}

func TestSnapshotOrdered(t *testing.T) {
	m := New()
	for _, ca := range []address.CA{0x30, 0x10, 0x20} {
		_, _, err := m.Register(ca, pk, Uninitialized, 0)
		require.NoError(t, err)
	}
	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, address.CA(0x10), snap[0].CA)
	assert.Equal(t, address.CA(0x30), snap[2].CA)
}

func TestConcurrentStores(t *testing.T) {
	m := New()
	for i := range 64 {
		_, _, err := m.Register(address.CA(i), pk, Uninitialized, 0)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func(dk uint32) {
			defer wg.Done()
			for i := range 64 {
				m.Store(address.CA(i), pk, dk)
				_, _ = m.CheckRead(address.CA(i), pk, dk)
			}
		}(uint32(w + 1))
	}
	wg.Wait()

	assert.Equal(t, 64, m.Len())
	for i := range 64 {
		rec, ok := m.Lookup(address.CA(i), pk)
		require.True(t, ok)
		assert.Equal(t, Encrypted, rec.State)
		assert.NotZero(t, rec.DataKey)
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "garbled", Garbled.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.Equal(t, "collided", Collided.String())
}
