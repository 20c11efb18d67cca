package engine

import (
	"sync"

	"github.com/roach88/sparsesim/internal/ir"
)

// forRange calls fn over [0, n) split into contiguous chunks. Chunks run on
// separate goroutines when more than one worker is configured and n reaches
// the parallel threshold; otherwise fn(0, n) runs on the caller.
//
// fn must only write state owned by its own index range.
func (e *Engine) forRange(n int, fn func(lo, hi int)) {
	workers := e.workers
	if workers < 2 || n < e.threshold {
		fn(0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// forEach applies fn to every entry in place.
func (e *Engine) forEach(entries []ir.Entry, fn func(*ir.Entry)) {
	e.forRange(len(entries), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			fn(&entries[i])
		}
	})
}
