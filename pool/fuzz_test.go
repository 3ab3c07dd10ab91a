package pool

import (
	"math/rand"
	"testing"

	"github.com/joshuapare/pgalloc/internal/frameio"
)

// Test_Fuzz_RandomAllocFree_GuardInvariants runs a fixed-seed sequence of
// random alloc/retain/release operations, re-checking I1-I4 after every
// step. A fixed seed keeps the sequence reproducible across runs.
func Test_Fuzz_RandomAllocFree_GuardInvariants(t *testing.T) {
	const nrPages = 256
	pl, _ := newTestPool(t, nrPages)
	rng := rand.New(rand.NewSource(1))

	type live struct {
		v    frameio.Virt
		refs int
	}
	var outstanding []live

	for step := 0; step < 2000; step++ {
		switch {
		case len(outstanding) == 0 || rng.Intn(3) != 0:
			order := int32(rng.Intn(int(pl.MaxOrder()) + 1))
			v, err := pl.Alloc(order)
			if err == nil {
				outstanding = append(outstanding, live{v: v, refs: 1})
			}
		case rng.Intn(2) == 0 && len(outstanding) > 0:
			i := rng.Intn(len(outstanding))
			pl.Retain(outstanding[i].v)
			outstanding[i].refs++
		default:
			i := rng.Intn(len(outstanding))
			pl.Release(outstanding[i].v)
			outstanding[i].refs--
			if outstanding[i].refs == 0 {
				outstanding[i] = outstanding[len(outstanding)-1]
				outstanding = outstanding[:len(outstanding)-1]
			}
		}
		checkInvariants(t, pl)
	}

	for _, l := range outstanding {
		for i := 0; i < l.refs; i++ {
			pl.Release(l.v)
		}
	}
	checkInvariants(t, pl)
	if got := pl.FreePagesSnapshot(); got != nrPages {
		t.Fatalf("after draining all outstanding blocks, free_pages = %d, want %d", got, nrPages)
	}
}
