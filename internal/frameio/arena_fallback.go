//go:build !unix

package frameio

import "fmt"

// NewArena reserves nrPages page-aligned frames from the Go heap on
// platforms without an anonymous-mmap syscall available.
func NewArena(nrPages int) (*Arena, error) {
	if nrPages <= 0 {
		return nil, fmt.Errorf("frameio: nrPages must be positive, got %d", nrPages)
	}
	mem := make([]byte, nrPages*PageSize)
	return newArenaFrom(mem, func() error { return nil }), nil
}
