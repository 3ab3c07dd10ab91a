package pool

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/joshuapare/pgalloc/internal/frameio"
	"github.com/joshuapare/pgalloc/internal/spinlock"
	"github.com/joshuapare/pgalloc/pkg/pagestats"
)

// debugChecks enables panics on conditions that cannot occur if every
// free-list invariant holds (e.g. extract's buddy lookup coming back nil).
// Off by default, mirroring hive/alloc's compile-time debugAlloc toggle:
// in production these paths log and degrade gracefully instead of
// crashing a caller that otherwise behaved correctly.
const debugChecks = false

// Pool is a binary-buddy allocator over a bounded range of physically
// contiguous frames. See the package doc for an overview.
type Pool struct {
	space frameio.Space
	lock  spinlock.SpinLock
	log   *slog.Logger

	rangeStart frameio.Phys
	rangeEnd   frameio.Phys
	maxOrder   int32

	freeArea  []freeArea
	freePages atomic.Uint64
}

// New creates a Pool over nrPages frames of space starting at pfn, with a
// reservedPages-frame prefix left allocated to the caller (refcount 1,
// order 0, never entering a free list). The remaining frames are released
// into the pool in ascending order, which — given the coalesce rule — the
// builds the maximal initial buddy tree.
func New(space frameio.Space, pfn frameio.Frame, nrPages, reservedPages uint64, opts ...Option) (*Pool, error) {
	if nrPages == 0 || reservedPages > nrPages {
		return nil, ErrInvalidRange
	}
	if uint64(space.NumFrames()) < nrPages {
		return nil, fmt.Errorf("%w: space has %d frames, need %d", ErrInvalidRange, space.NumFrames(), nrPages)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	start := space.PhysOfPFN(pfn)
	pl := &Pool{
		space:      space,
		log:        cfg.logger,
		rangeStart: start,
		rangeEnd:   start + frameio.Phys(nrPages)*frameio.PageSize,
		maxOrder:   effectiveMaxOrder(cfg.maxOrderLimit, nrPages),
	}
	pl.freeArea = make([]freeArea, pl.maxOrder+1)
	for i := range pl.freeArea {
		pl.freeArea[i] = emptyFreeArea()
	}

	for i := uint64(0); i < nrPages; i++ {
		d := space.DescriptorOfPhys(start + frameio.Phys(i)*frameio.PageSize)
		d.Order.Store(0)
		d.Refcount.Store(1)
	}
	for i := reservedPages; i < nrPages; i++ {
		v := space.VirtOf(space.DescriptorOfPhys(start + frameio.Phys(i)*frameio.PageSize))
		pl.Release(v)
	}
	return pl, nil
}

// NewEmpty creates a Pool sized for nrPages anticipated frames but owning
// no range of its own: range_start=max, range_end=0, so inRange always
// fails and no coalescing ever occurs. Frames are attached
// later by calling Release on externally sourced descriptors; each enters
// as an isolated order-0 block.
func NewEmpty(space frameio.Space, nrPages uint64, opts ...Option) (*Pool, error) {
	if nrPages == 0 {
		return nil, ErrInvalidRange
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	pl := &Pool{
		space:      space,
		log:        cfg.logger,
		rangeStart: frameio.Phys(^uintptr(0)),
		rangeEnd:   0,
		maxOrder:   effectiveMaxOrder(cfg.maxOrderLimit, nrPages),
	}
	pl.freeArea = make([]freeArea, pl.maxOrder+1)
	for i := range pl.freeArea {
		pl.freeArea[i] = emptyFreeArea()
	}
	return pl, nil
}

func effectiveMaxOrder(limit int32, nrPages uint64) int32 {
	o := ceilLog2(nrPages)
	if o > limit {
		return limit
	}
	return o
}

// MaxOrder returns the pool's inclusive maximum block order.
func (pl *Pool) MaxOrder() int32 { return pl.maxOrder }

// Alloc removes a free block of the requested order, splitting a larger
// block if no exact-order block is free. Contents of the returned block
// are zero. Returns ErrBadOrder if order is out of range, ErrOutOfMemory if
// no list has a block available — never blocks.
func (pl *Pool) Alloc(order int32) (frameio.Virt, error) {
	if order < 0 || order > pl.maxOrder {
		return 0, ErrBadOrder
	}

	pl.lock.Lock()
	defer pl.lock.Unlock()

	for i := order; i <= pl.maxOrder; i++ {
		v, ok := pl.popHead(i)
		if !ok {
			continue
		}
		d := pl.space.DescriptorOfVirt(v)
		pl.extract(d, order)
		d.Refcount.Store(1)
		delta := uint64(1) << uint(order)
		pl.freePages.Add(-delta)
		pl.log.Debug("pool: alloc", "order", order, "from_order", i, "virt", pl.space.VirtOf(d))
		return pl.space.VirtOf(d), nil
	}
	return 0, ErrOutOfMemory
}

// extract splits the free block headed by d (already unlinked from its own
// free list, order >= target) down to exactly order target. d's own address
// never changes; only its Order field and its buddies' list membership do.
// Lock held.
func (pl *Pool) extract(d *frameio.PageDescriptor, target int32) {
	for d.Order.Load() > target {
		k := d.Order.Load() - 1
		b := pl.buddyNoCheck(d, k)
		if b == nil {
			// Cannot occur under the stated invariants. Degrade to
			// leaving the block unsplit rather than corrupting state;
			// treat as a hard assertion failure when debugChecks is set.
			if debugChecks {
				pl.invariantf("extract: buddy at order %d absent for a free block", k)
			}
			pl.log.Error("pool: extract found no buddy, returning unsplit", "order", d.Order.Load())
			return
		}
		d.Order.Store(k)
		b.Order.Store(k)
		pl.pushTail(k, pl.space.VirtOf(b))
	}
}

// Release drops a reference to a previously allocated block. On the last
// reference, the block is coalesced back into the free areas.
func (pl *Pool) Release(v frameio.Virt) {
	d := pl.space.DescriptorOfVirt(v)
	order := d.Order.Load()
	if order > pl.maxOrder || order < 0 {
		pl.invariantf("release: order %d out of range [0, %d]", order, pl.maxOrder)
	}

	if d.Refcount.Add(^uint32(0)) != 0 { // atomic decrement; non-zero means not last
		return
	}

	pl.lock.Lock()
	pl.attach(d, order)
	pl.freePages.Add(uint64(1) << uint(order))
	pl.lock.Unlock()
}

// attach implements the coalesce-and-insert half of release. Lock held.
func (pl *Pool) attach(d *frameio.PageDescriptor, order int32) {
	virt := pl.space.VirtOf(d)
	clear(pl.space.Bytes(virt, frameio.PageSize<<uint(order)))

	phys := pl.space.PhysOf(d)
	if !pl.inRange(phys) {
		// External frame: never coalesces; inserted as a head at its own order.
		d.Order.Store(order)
		pl.pushTail(order, virt)
		pl.log.Debug("pool: attach external frame", "order", order, "phys", phys)
		return
	}

	d.Order.Store(frameio.NoOrder)
	k := order
	for k < pl.maxOrder {
		b := pl.buddyAvailable(d, k)
		if b == nil {
			break
		}
		pl.removeDescriptor(k, b)
		b.Order.Store(frameio.NoOrder)
		if pl.space.PhysOf(b) < phys {
			d, phys = b, pl.space.PhysOf(b)
		}
		k++
		pl.log.Debug("pool: coalesced", "new_order", k, "phys", phys)
	}
	d.Order.Store(k)
	pl.pushTail(k, pl.space.VirtOf(d))
}

// Retain adds a reference to a live, previously allocated block.
func (pl *Pool) Retain(v frameio.Virt) {
	d := pl.space.DescriptorOfVirt(v)
	d.Refcount.Add(1)
}

// SplitBlock turns an order-k allocated block into 2^k independently
// refcounted order-0 allocations. The block must currently be allocated
// (refcount >= 1); splitting a free block is a programmer error. Never
// coalesces and never touches the free areas.
func (pl *Pool) SplitBlock(v frameio.Virt) {
	d := pl.space.DescriptorOfVirt(v)
	if d.Refcount.Load() == 0 {
		pl.invariantf("split_block: called on a free block at %v", v)
	}
	order := d.Order.Load()
	d.Order.Store(0)
	for i := uint64(1); i < uint64(1)<<uint(order); i++ {
		fv := v + frameio.Virt(i)*frameio.PageSize
		fd := pl.space.DescriptorOfVirt(fv)
		fd.Order.Store(0)
		fd.Refcount.Store(1)
	}
}

// FreePagesSnapshot reads the free-frame counter without taking the lock.
// The result is approximate: a concurrent Alloc/Release may have already
// made it stale by the time the caller observes it.
func (pl *Pool) FreePagesSnapshot() uint64 {
	return pl.freePages.Load()
}

// Stats returns a point-in-time snapshot of the free-page counter and the
// number of free frames contributed by each order's list. Unlike
// FreePagesSnapshot, the per-order breakdown is taken under the lock.
func (pl *Pool) Stats() pagestats.Snapshot {
	pl.lock.Lock()
	defer pl.lock.Unlock()

	perOrder := make([]uint64, pl.maxOrder+1)
	for k := int32(0); k <= pl.maxOrder; k++ {
		v := pl.freeArea[k].head
		for v != frameio.NilVirt {
			perOrder[k] += uint64(1) << uint(k)
			v = readLink(pl.space, v).next
		}
	}
	return pagestats.Snapshot{
		FreePages: pl.freePages.Load(),
		MaxOrder:  pl.maxOrder,
		PerOrder:  perOrder,
	}
}

func (pl *Pool) invariantf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	pl.log.Error("pool: invariant violated: " + msg)
	panic("pool: " + msg)
}
