// Package frameio provides the frame-map and addr-ops collaborators a Pool
// depends on: the global per-frame metadata array (the "vmemmap") and the
// pure phys↔descriptor, virt↔descriptor, pfn↔phys translations.
//
// The Pool package never allocates or maps memory itself; it only reads and
// writes through the Space interface defined here. Arena is the one
// concrete implementation this module ships, backing the simulated frame
// range with real page-aligned memory so the allocator can be exercised and
// tested without a hypervisor. A real integration supplies its own Space
// implementation against a true vmemmap and MMU.
package frameio

import "sync/atomic"

// PageSize is the fixed frame size in bytes.
const PageSize = 4096

// NoOrder marks a descriptor that is not the head of any block, such as an
// interior frame of a larger block. A freshly created descriptor reads
// order 0, not NoOrder.
const NoOrder int32 = -1

// Frame is a physical frame number (pfn).
type Frame uintptr

// Phys is a physical byte address.
type Phys uintptr

// Virt is a virtual byte address.
type Virt uintptr

// NilVirt is the "no address" sentinel used by free-list link nodes; it is
// distinct from address 0, which may be a legitimate frame address.
const NilVirt = Virt(^uintptr(0))

// PageDescriptor is the per-frame metadata record held in the frame map.
//
// Order is mutated only while the owning Pool's lock is held; it is stored
// atomically purely so that the one permitted unsynchronized read (Release,
// before the refcount transitions to zero) is race-detector clean, not
// because concurrent writers exist.
//
// Refcount is mutated with atomic increment/decrement-and-test outside the
// lock, per the allocator's documented concurrency model.
type PageDescriptor struct {
	Order    atomic.Int32
	Refcount atomic.Uint32
}
