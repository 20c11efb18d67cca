package engine

import (
	"fmt"
	"math"

	"github.com/roach88/sparsesim/internal/ir"
)

// transform applies one validated gate to the entry slice and returns the
// resulting slice. Bit-permutation and phase gates rewrite entries in place;
// Hadamard and Reset build a contribution list and fold it with merge.
func (e *Engine) transform(g ir.Gate, entries []ir.Entry) []ir.Entry {
	q := g.Qubits

	switch g.Kind {
	case ir.PauliX:
		e.forEach(entries, func(en *ir.Entry) {
			en.Basis = en.Basis.Flip(q[0])
		})
		return entries

	case ir.PauliY:
		e.forEach(entries, func(en *ir.Entry) {
			if en.Basis.Bit(q[0]) == 0 {
				en.Amplitude = en.Amplitude.MulI()
			} else {
				en.Amplitude = en.Amplitude.MulNegI()
			}
			en.Basis = en.Basis.Flip(q[0])
		})
		return entries

	case ir.PauliZ:
		e.forEach(entries, func(en *ir.Entry) {
			if en.Basis.Bit(q[0]) == 1 {
				en.Amplitude = en.Amplitude.Neg()
			}
		})
		return entries

	case ir.CNOT:
		e.forEach(entries, func(en *ir.Entry) {
			if en.Basis.Bit(q[0]) == 1 {
				en.Basis = en.Basis.Flip(q[1])
			}
		})
		return entries

	case ir.CCNOT:
		e.forEach(entries, func(en *ir.Entry) {
			if en.Basis.Bit(q[0]) == 1 && en.Basis.Bit(q[1]) == 1 {
				en.Basis = en.Basis.Flip(q[2])
			}
		})
		return entries

	case ir.InvertAllZero:
		e.forEach(entries, func(en *ir.Entry) {
			if en.Basis.AllZero(q) {
				en.Amplitude = en.Amplitude.Neg()
			}
		})
		return entries

	case ir.InvertAllOne:
		e.forEach(entries, func(en *ir.Entry) {
			if en.Basis.AllOne(q) {
				en.Amplitude = en.Amplitude.Neg()
			}
		})
		return entries

	case ir.InvertSomeOne:
		e.forEach(entries, func(en *ir.Entry) {
			if !en.Basis.AllZero(q) {
				en.Amplitude = en.Amplitude.Neg()
			}
		})
		return entries

	case ir.Reset:
		e.forEach(entries, func(en *ir.Entry) {
			en.Basis = en.Basis.Clear(q)
		})
		return merge(entries, false)

	case ir.Hadamard:
		return merge(e.hadamard(q[0], entries), !e.keepCancelled)

	case ir.Diffusion:
		return diffusion(q, entries)

	default:
		// Validate rejects unknown kinds before transform is reached.
		panic(fmt.Sprintf("engine: unhandled gate kind %s", g.Kind))
	}
}

// hadamard maps every entry to its two contributions. Entry i writes slots
// 2i and 2i+1, so the map has no shared writes and may run in parallel.
func (e *Engine) hadamard(q int, entries []ir.Entry) []ir.Entry {
	out := make([]ir.Entry, 2*len(entries))
	e.forRange(len(entries), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			en := entries[i]
			half := en.Amplitude.Scale(ir.InvSqrt2)

			out[2*i] = ir.Entry{Basis: en.Basis.With(q, 0), Amplitude: half}
			if en.Basis.Bit(q) == 0 {
				out[2*i+1] = ir.Entry{Basis: en.Basis.With(q, 1), Amplitude: half}
			} else {
				out[2*i+1] = ir.Entry{Basis: en.Basis.With(q, 1), Amplitude: half.Neg()}
			}
		}
	})
	return out
}

// diffusion reflects every stored amplitude about the mean of its group,
// where a group is the set of entries that agree on all unlisted qubits:
//
//	a' = −a + (2 / 2^k) · Σ(group)
//
// With the whole register listed there is a single group. Only stored
// entries are updated; absent assignments stay absent.
func diffusion(targets []int, entries []ir.Entry) []ir.Entry {
	factor := math.Ldexp(1, 1-len(targets))

	sums := make(map[ir.Basis]ir.Amplitude)
	for _, en := range entries {
		key := en.Basis.Clear(targets)
		sums[key] = sums[key].Add(en.Amplitude)
	}

	for i := range entries {
		sum := sums[entries[i].Basis.Clear(targets)]
		entries[i].Amplitude = entries[i].Amplitude.Neg().Add(sum.Scale(factor))
	}
	return entries
}
