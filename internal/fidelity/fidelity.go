// Package fidelity measures the approximation error that state-drop eviction
// introduces.
package fidelity

import (
	"math"

	"github.com/roach88/sparsesim/internal/ir"
)

// Error returns the L2 distance between a truncated state and its reference,
// with both embedded in the full basis space:
//
//	√ Σ_{r ∈ reference} |r.a − truncated[r.basis]|²
//
// where an assignment missing from truncated contributes |r.a|².
//
// Truncation only removes entries, so every basis in truncated must also be
// in reference; otherwise an UNKNOWN_BASIS precondition error is returned.
// Duplicate bases in either input are DUPLICATE_BASIS errors.
func Error(truncated, reference []ir.Entry) (float64, error) {
	kept := make(map[ir.Basis]ir.Amplitude, len(truncated))
	for _, e := range truncated {
		if _, dup := kept[e.Basis]; dup {
			return 0, ir.NewPreconditionError(ir.ErrCodeDuplicateBasis,
				"truncated state lists basis %s twice", e.Basis)
		}
		kept[e.Basis] = e.Amplitude
	}

	seen := make(map[ir.Basis]bool, len(reference))
	var sum float64
	for _, r := range reference {
		if seen[r.Basis] {
			return 0, ir.NewPreconditionError(ir.ErrCodeDuplicateBasis,
				"reference state lists basis %s twice", r.Basis)
		}
		seen[r.Basis] = true
		sum += r.Amplitude.Sub(kept[r.Basis]).Norm2()
	}

	for _, e := range truncated {
		if !seen[e.Basis] {
			return 0, &ir.PreconditionError{
				Code:    ir.ErrCodeUnknownBasis,
				Message: "truncated state holds a basis missing from the reference",
				Gate:    -1,
				Details: map[string]string{"basis": e.Basis.String()},
			}
		}
	}

	return math.Sqrt(sum), nil
}

// Retained returns the share of the reference's squared magnitude that the
// truncated state still carries on its surviving entries: Σ|r.a|² over
// reference entries present in truncated, divided by Σ|r.a|².
// An empty reference retains 1.
func Retained(truncated, reference []ir.Entry) float64 {
	present := make(map[ir.Basis]bool, len(truncated))
	for _, e := range truncated {
		present[e.Basis] = true
	}

	var total, kept float64
	for _, r := range reference {
		n := r.Amplitude.Norm2()
		total += n
		if present[r.Basis] {
			kept += n
		}
	}
	if total == 0 {
		return 1
	}
	return kept / total
}
