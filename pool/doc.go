// Package pool implements a binary-buddy page allocator over a bounded
// range of physically contiguous, page-sized frames.
//
// # Overview
//
// A Pool hands out power-of-two-sized blocks of frames ("order k" means
// 2^k frames) and reclaims them through reference counting plus buddy
// coalescing. It is designed for a privileged, memory-constrained
// execution context where the host's general-purpose allocator is not
// available: allocation never blocks, never retries, and never returns
// partial results.
//
// # Collaborators
//
// A Pool depends on two things it does not implement itself:
//
//   - frameio.Space: the frame map ("vmemmap") and the pure phys/virt/
//     descriptor translation functions.
//   - spinlock.SpinLock: the mutual-exclusion primitive guarding free-area
//     mutation.
//
// # Operations
//
//   - Alloc(order): remove and (if needed) split a free block down to the
//     requested order.
//   - Release(virt): drop a reference; on the last reference, coalesce the
//     block back into the free areas.
//   - Retain(virt): add a reference to a live block.
//   - SplitBlock(virt): break an order-k allocation into 2^k independently
//     refcounted order-0 allocations.
//
// # Size Classes
//
// Unlike a segregated-size allocator, order is the only size class: a
// request for "order k" always yields exactly 2^k contiguous frames, never
// a best-fit or next-fit approximation.
//
// # Usage Example
//
//	arena, err := frameio.NewArena(4)
//	if err != nil {
//	    return err
//	}
//	defer arena.Close()
//
//	p, err := pool.New(arena, 0, 4, 0)
//	if err != nil {
//	    return err
//	}
//
//	v, err := p.Alloc(0)
//	if err != nil {
//	    return err
//	}
//	defer p.Release(v)
//
// # Thread Safety
//
// Pool is safe for concurrent use. Allocation and the last Release of a
// block serialize on the pool's lock; Retain and non-terminal Release calls
// only touch the block's refcount and take no lock. FreePagesSnapshot may
// be called without the lock and returns an approximate, possibly stale
// count.
package pool
