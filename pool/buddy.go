package pool

import (
	"math/bits"

	"github.com/joshuapare/pgalloc/internal/frameio"
)

// buddyPhys computes the address of the buddy of a head at the given order.
// XORing one address bit is self-inverse (buddy-of-buddy is the original)
// and naturally excludes the case where the partner would fall outside any
// aligned pairing, which the range check in buddyAvailable/buddyNoCheck
// then confirms against the pool's own bounds.
func buddyPhys(p frameio.Phys, order int32) frameio.Phys {
	return p ^ (frameio.Phys(frameio.PageSize) << uint(order))
}

// inRange reports whether p lies within [rangeStart, rangeEnd). An empty
// pool sets rangeStart=max and rangeEnd=0, so every address test fails.
func (pl *Pool) inRange(p frameio.Phys) bool {
	return p >= pl.rangeStart && p < pl.rangeEnd
}

// buddyNoCheck returns the descriptor of d's buddy at order, regardless of
// its current state. Used when splitting, where the buddy is known to be a
// freshly-demoted interior frame.
func (pl *Pool) buddyNoCheck(d *frameio.PageDescriptor, order int32) *frameio.PageDescriptor {
	bp := buddyPhys(pl.space.PhysOf(d), order)
	if !pl.inRange(bp) {
		return nil
	}
	return pl.space.DescriptorOfPhys(bp)
}

// buddyAvailable returns d's buddy at order only if it is currently a free
// head of exactly that order. Used while coalescing.
func (pl *Pool) buddyAvailable(d *frameio.PageDescriptor, order int32) *frameio.PageDescriptor {
	bp := buddyPhys(pl.space.PhysOf(d), order)
	if !pl.inRange(bp) {
		return nil
	}
	b := pl.space.DescriptorOfPhys(bp)
	if b.Order.Load() != order || b.Refcount.Load() != 0 {
		return nil
	}
	return b
}

// ceilLog2 returns ⌈log2(n)⌉ for n >= 1.
func ceilLog2(n uint64) int32 {
	if n <= 1 {
		return 0
	}
	return int32(bits.Len64(n - 1))
}
