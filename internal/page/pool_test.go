package page

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcquirer struct {
	limit int64
	used  int64
}

var errOverLimit = errors.New("over limit")

func (f *fakeAcquirer) AcquireMemory(bytes int64) error {
	if f.used+bytes > f.limit {
		return errOverLimit
	}
	f.used += bytes
	return nil
}

func (f *fakeAcquirer) ReleaseMemory(bytes int64) { f.used -= bytes }

func TestNewPool_InvalidSize(t *testing.T) {
	_, err := NewPool(0)
	require.ErrorIs(t, err, ErrInvalidPageSize)
}

func TestPool_AcquireRelease(t *testing.T) {
	p, err := NewPool(16, WithPoolLimit(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(128), p.PageBits())

	a, err := p.Acquire()
	require.NoError(t, err)
	buf := p.Bytes(a)
	require.Len(t, buf, 16)
	buf[3] = 0xff

	p.Release(a)
	assert.False(t, p.Valid(a), "released id must be stale")
	assert.Panics(t, func() { p.Bytes(a) })

	b, err := p.Acquire()
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "recycled slot gets a new generation")
	assert.Equal(t, make([]byte, 16), p.Bytes(b), "recycled page is zeroed")

	s := p.Stats()
	assert.Equal(t, uint64(2), s.Acquired)
	assert.Equal(t, uint64(1), s.Reused)
	assert.Equal(t, 1, s.AllocCount)
	assert.Equal(t, 1, s.InUse)
}

func TestPool_AllocLimit(t *testing.T) {
	p, err := NewPool(8, WithAllocLimit(2))
	require.NoError(t, err)

	_, err = p.Acquire()
	require.NoError(t, err)
	b, err := p.Acquire()
	require.NoError(t, err)

	_, err = p.Acquire()
	require.ErrorIs(t, err, ErrResourceExhausted)

	p.Release(b)
	_, err = p.Acquire()
	require.NoError(t, err, "cached page must satisfy the next acquire")
}

func TestPool_ReleaseBeyondPoolLimitFrees(t *testing.T) {
	p, err := NewPool(8, WithPoolLimit(1))
	require.NoError(t, err)

	a, _ := p.Acquire()
	b, _ := p.Acquire()
	p.Release(a)
	p.Release(b)

	s := p.Stats()
	assert.Equal(t, 1, s.PoolCount)
	assert.Equal(t, 1, s.AllocCount)
	assert.Equal(t, uint64(1), s.Freed)
}

func TestPool_MemoryAcquirer(t *testing.T) {
	acq := &fakeAcquirer{limit: 16}
	p, err := NewPool(8, WithPoolLimit(0), WithMemoryAcquirer(acq))
	require.NoError(t, err)

	a, err := p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, int64(16), acq.used)

	_, err = p.Acquire()
	require.ErrorIs(t, err, ErrResourceExhausted)
	require.ErrorIs(t, err, errOverLimit)

	p.Release(a)
	assert.Equal(t, int64(8), acq.used)
}

func TestPool_OffHeap(t *testing.T) {
	p, err := NewPool(4096, WithOffHeap(), WithPoolLimit(0))
	require.NoError(t, err)

	id, err := p.Acquire()
	require.NoError(t, err)
	buf := p.Bytes(id)
	require.Len(t, buf, 4096)
	buf[4095] = 1
	p.Release(id)
	assert.Equal(t, 0, p.Stats().AllocCount)
}

func TestPool_Close(t *testing.T) {
	acq := &fakeAcquirer{limit: 1 << 20}
	p, err := NewPool(8, WithMemoryAcquirer(acq))
	require.NoError(t, err)

	ids := make([]ID, 4)
	for i := range ids {
		ids[i], err = p.Acquire()
		require.NoError(t, err)
	}
	for _, id := range ids {
		p.Release(id)
	}
	require.NoError(t, p.Close())
	assert.Zero(t, acq.used)
	assert.Zero(t, p.Stats().AllocCount)
}

// Random acquire/release sequences never break the pool bounds.
func TestPool_BoundsHoldUnderRandomWorkload(t *testing.T) {
	const poolLimit, allocLimit = 3, 6

	p, err := NewPool(4, WithPoolLimit(poolLimit), WithAllocLimit(allocLimit))
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))
	var held []ID
	for range 5000 {
		if rng.IntN(2) == 0 {
			id, err := p.Acquire()
			if err != nil {
				require.ErrorIs(t, err, ErrResourceExhausted)
				require.Len(t, held, allocLimit)
			} else {
				held = append(held, id)
			}
		} else if len(held) > 0 {
			i := rng.IntN(len(held))
			p.Release(held[i])
			held = append(held[:i], held[i+1:]...)
		}

		s := p.Stats()
		require.LessOrEqual(t, s.PoolCount, poolLimit)
		require.LessOrEqual(t, s.AllocCount, allocLimit)
		require.Equal(t, len(held), s.InUse)
		require.Equal(t, s.InUse+s.PoolCount, s.AllocCount)
	}
}
