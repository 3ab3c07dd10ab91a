//go:build unix

package frameio

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// NewArena reserves nrPages page-aligned frames backed by a private
// anonymous mapping obtained with unix.Mmap.
func NewArena(nrPages int) (*Arena, error) {
	if nrPages <= 0 {
		return nil, fmt.Errorf("frameio: nrPages must be positive, got %d", nrPages)
	}
	size := nrPages * PageSize
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("frameio: mmap failed: %w", err)
	}
	release := func() error {
		if mem == nil {
			return nil
		}
		return unix.Munmap(mem)
	}
	return newArenaFrom(mem, release), nil
}
