package pool

import (
	"encoding/binary"

	"github.com/joshuapare/pgalloc/internal/frameio"
)

// linkNodeSize is the number of header bytes a free block's head frame
// spends on its intrusive doubly-linked-list anchor: two uint64 addresses.
const linkNodeSize = 16

// freeArea is one order's doubly linked free list. The sentinel head/tail
// live here, in the Pool itself; the link nodes for the blocks on the list
// live in the blocks' own frame bytes (see readLink/writeLink), so no
// separate node allocation is ever needed.
type freeArea struct {
	head frameio.Virt
	tail frameio.Virt
}

func emptyFreeArea() freeArea {
	return freeArea{head: frameio.NilVirt, tail: frameio.NilVirt}
}

type linkNode struct {
	prev frameio.Virt
	next frameio.Virt
}

func readLink(sp frameio.Space, v frameio.Virt) linkNode {
	b := sp.Bytes(v, linkNodeSize)
	return linkNode{
		prev: frameio.Virt(binary.LittleEndian.Uint64(b[0:8])),
		next: frameio.Virt(binary.LittleEndian.Uint64(b[8:16])),
	}
}

func writeLink(sp frameio.Space, v frameio.Virt, ln linkNode) {
	b := sp.Bytes(v, linkNodeSize)
	binary.LittleEndian.PutUint64(b[0:8], uint64(ln.prev))
	binary.LittleEndian.PutUint64(b[8:16], uint64(ln.next))
}

// zeroLink clears a block's link-node bytes. Called whenever a block leaves
// a free list, since allocated frames must start zeroed and the link bytes
// are the only part of a newly-popped block release doesn't already zero.
func zeroLink(sp frameio.Space, v frameio.Virt) {
	b := sp.Bytes(v, linkNodeSize)
	clear(b)
}

// pushTail inserts v (a head descriptor's virtual address) at the tail of
// the free list for order k.
func (pl *Pool) pushTail(k int32, v frameio.Virt) {
	area := &pl.freeArea[k]
	ln := linkNode{prev: area.tail, next: frameio.NilVirt}
	writeLink(pl.space, v, ln)
	if area.tail != frameio.NilVirt {
		old := readLink(pl.space, area.tail)
		old.next = v
		writeLink(pl.space, area.tail, old)
	} else {
		area.head = v
	}
	area.tail = v
}

// removeFromList unlinks the block at v from the free list for order k,
// given only v itself — no list traversal is required.
func (pl *Pool) removeFromList(k int32, v frameio.Virt) {
	area := &pl.freeArea[k]
	ln := readLink(pl.space, v)
	if ln.prev != frameio.NilVirt {
		prevLn := readLink(pl.space, ln.prev)
		prevLn.next = ln.next
		writeLink(pl.space, ln.prev, prevLn)
	} else {
		area.head = ln.next
	}
	if ln.next != frameio.NilVirt {
		nextLn := readLink(pl.space, ln.next)
		nextLn.prev = ln.prev
		writeLink(pl.space, ln.next, nextLn)
	} else {
		area.tail = ln.prev
	}
	zeroLink(pl.space, v)
}

// popHead removes and returns the head of the free list for order k, or
// false if the list is empty.
func (pl *Pool) popHead(k int32) (frameio.Virt, bool) {
	area := &pl.freeArea[k]
	if area.head == frameio.NilVirt {
		return frameio.NilVirt, false
	}
	v := area.head
	pl.removeFromList(k, v)
	return v, true
}

// removeDescriptor removes the block headed by descriptor b, at order k,
// from its free list. Used during coalescing, where b is an arbitrary
// buddy rather than necessarily a list head.
func (pl *Pool) removeDescriptor(k int32, b *frameio.PageDescriptor) {
	pl.removeFromList(k, pl.space.VirtOf(b))
}
