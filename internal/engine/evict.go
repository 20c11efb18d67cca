package engine

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/roach88/sparsesim/internal/ir"
)

// Evict enforces the state-drop capacity bound.
//
// When len(entries) > capacity, the len(entries) − capacity entries with the
// lowest importance (|a|² rounded to importanceQuantum) are removed. Equal
// importances are ordered by one
// draw from rng per entry, taken in storage order, so a fixed seed gives a
// fixed eviction. Survivors keep their relative order and their amplitudes:
// the store is deliberately left unnormalized.
//
// Evict returns the surviving entries and how many were dropped. A capacity
// of 0 or less disables eviction.
func Evict(entries []ir.Entry, capacity int, rng *rand.Rand) ([]ir.Entry, int) {
	n := len(entries)
	if capacity <= 0 || n <= capacity {
		return entries, 0
	}

	ranks := make([]evictionRank, n)
	for i, en := range entries {
		ranks[i] = evictionRank{pos: i, importance: quantize(en.Amplitude.Norm2()), tiebreak: rng.Uint64()}
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].importance != ranks[j].importance {
			return ranks[i].importance < ranks[j].importance
		}
		return ranks[i].tiebreak < ranks[j].tiebreak
	})

	drop := n - capacity
	dropped := make([]bool, n)
	for _, r := range ranks[:drop] {
		dropped[r.pos] = true
	}

	kept := entries[:0]
	for i, en := range entries {
		if !dropped[i] {
			kept = append(kept, en)
		}
	}
	return kept, drop
}

// importanceQuantum is the resolution importances are compared at. Squared
// magnitudes that differ only by rounding noise from gate arithmetic rank
// as ties.
const importanceQuantum = 1e-12

func quantize(norm2 float64) float64 {
	return math.Round(norm2 / importanceQuantum)
}

type evictionRank struct {
	pos        int
	importance float64
	tiebreak   uint64
}
