package pool

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/pgalloc/internal/frameio"
)

// newTestPool builds a Pool over nrPages fresh frames with no frames
// reserved, backed by a freshly mapped Arena. The Arena is closed
// automatically at test cleanup.
func newTestPool(t testing.TB, nrPages uint64, opts ...Option) (*Pool, *frameio.Arena) {
	t.Helper()

	arena, err := frameio.NewArena(int(nrPages))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, arena.Close()) })

	pl, err := New(arena, frameio.Frame(0), nrPages, 0, opts...)
	require.NoError(t, err)
	return pl, arena
}

// freeHead describes one entry walked off a free_area list, for invariant
// assertions that need the actual (phys, order) pairs rather than just
// counts.
type freeHead struct {
	phys  frameio.Phys
	order int32
}

// walkFreeHeads collects every head currently on any free list, across all
// orders. Lock held for the duration of the walk.
func (pl *Pool) walkFreeHeads() []freeHead {
	pl.lock.Lock()
	defer pl.lock.Unlock()

	var heads []freeHead
	for k := int32(0); k <= pl.maxOrder; k++ {
		v := pl.freeArea[k].head
		for v != frameio.NilVirt {
			d := pl.space.DescriptorOfVirt(v)
			heads = append(heads, freeHead{phys: pl.space.PhysOf(d), order: k})
			v = readLink(pl.space, v).next
		}
	}
	return heads
}
