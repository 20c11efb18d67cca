package engine

import (
	"github.com/roach88/sparsesim/internal/ir"
)

// merge folds contributions that share a basis assignment by summing their
// amplitudes. The surviving entry for each basis keeps the position of its
// first contribution, so the result order depends only on the input order.
//
// With dropZero set, merged entries whose magnitude is below
// ir.ZeroTolerance are removed.
func merge(contribs []ir.Entry, dropZero bool) []ir.Entry {
	index := make(map[ir.Basis]int, len(contribs))
	out := make([]ir.Entry, 0, len(contribs))

	for _, c := range contribs {
		if i, ok := index[c.Basis]; ok {
			out[i].Amplitude = out[i].Amplitude.Add(c.Amplitude)
			continue
		}
		index[c.Basis] = len(out)
		out = append(out, c)
	}

	if !dropZero {
		return out
	}

	kept := out[:0]
	for _, en := range out {
		if !en.Amplitude.IsZero() {
			kept = append(kept, en)
		}
	}
	return kept
}
