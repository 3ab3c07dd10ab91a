package pool

import "errors"

var (
	// ErrOutOfMemory indicates that no free list held a block large enough
	// to satisfy an Alloc request. The pool was not mutated.
	ErrOutOfMemory = errors.New("pool: no free block of sufficient order")

	// ErrBadOrder indicates an order argument outside [0, max_order].
	ErrBadOrder = errors.New("pool: order exceeds max_order")

	// ErrInvalidRange indicates a New/NewEmpty argument that cannot
	// describe a valid frame range (non-positive page count, reserved
	// pages exceeding the range, etc.).
	ErrInvalidRange = errors.New("pool: invalid frame range")
)
