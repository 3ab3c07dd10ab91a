package frameio

import "unsafe"

// Arena is a Space backed by one contiguous slice of real memory, standing
// in for a physically contiguous frame range. Descriptors live in a
// parallel slice (the frame map); the arena is identity-mapped, so Phys and
// Virt addresses coincide.
type Arena struct {
	mem     []byte
	descs   []PageDescriptor
	release func() error
}

func newArenaFrom(mem []byte, release func() error) *Arena {
	n := len(mem) / PageSize
	return &Arena{
		mem:     mem,
		descs:   make([]PageDescriptor, n),
		release: release,
	}
}

// NumFrames implements Space.
func (a *Arena) NumFrames() int { return len(a.descs) }

func (a *Arena) indexOf(d *PageDescriptor) int {
	base := unsafe.Pointer(&a.descs[0])
	off := uintptr(unsafe.Pointer(d)) - uintptr(base)
	return int(off / unsafe.Sizeof(PageDescriptor{}))
}

// PhysOf implements Space.
func (a *Arena) PhysOf(d *PageDescriptor) Phys {
	return Phys(a.indexOf(d) * PageSize)
}

// DescriptorOfPhys implements Space.
func (a *Arena) DescriptorOfPhys(p Phys) *PageDescriptor {
	return &a.descs[int(p)/PageSize]
}

// VirtOf implements Space. The arena is identity-mapped.
func (a *Arena) VirtOf(d *PageDescriptor) Virt {
	return Virt(a.indexOf(d) * PageSize)
}

// DescriptorOfVirt implements Space.
func (a *Arena) DescriptorOfVirt(v Virt) *PageDescriptor {
	return &a.descs[int(v)/PageSize]
}

// PhysOfPFN implements Space.
func (a *Arena) PhysOfPFN(f Frame) Phys {
	return Phys(f) * PageSize
}

// Bytes implements Space.
func (a *Arena) Bytes(v Virt, n int) []byte {
	return a.mem[v : int(v)+n]
}

// Close releases the arena's backing memory.
func (a *Arena) Close() error {
	return a.release()
}
