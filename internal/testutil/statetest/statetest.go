// Package statetest holds test assertions over sparse state stores.
package statetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/state"
)

// Tolerance is the default numerical tolerance for amplitude comparisons.
const Tolerance = 1e-9

// Entry builds an ir.Entry from a '0'/'1' basis string; it panics on a
// malformed basis.
func Entry(bits string, re, im float64) ir.Entry {
	return ir.Entry{Basis: ir.MustParseBasis(bits), Amplitude: ir.Amplitude{Re: re, Im: im}}
}

// NewStore seeds a store from entries and fails the test on error.
func NewStore(t *testing.T, qubits int, entries ...ir.Entry) *state.Store {
	t.Helper()
	var (
		s   *state.Store
		err error
	)
	if len(entries) == 0 {
		s, err = state.New(qubits)
	} else {
		s, err = state.NewFromEntries(qubits, entries)
	}
	require.NoError(t, err)
	return s
}

// AssertEntries checks that got holds exactly the bases of want, with every
// amplitude within tol. Order is ignored.
func AssertEntries(t *testing.T, want, got []ir.Entry, tol float64) {
	t.Helper()

	gotByBasis := make(map[string]ir.Amplitude, len(got))
	for _, e := range got {
		gotByBasis[e.Basis.String()] = e.Amplitude
	}
	wantBases := make([]string, 0, len(want))
	for _, e := range want {
		wantBases = append(wantBases, e.Basis.String())
	}
	gotBases := make([]string, 0, len(got))
	for _, e := range got {
		gotBases = append(gotBases, e.Basis.String())
	}
	if !assert.ElementsMatch(t, wantBases, gotBases, "basis assignments differ") {
		return
	}

	for _, e := range want {
		amp := gotByBasis[e.Basis.String()]
		assert.InDelta(t, e.Amplitude.Re, amp.Re, tol, "re of %s", e.Basis)
		assert.InDelta(t, e.Amplitude.Im, amp.Im, tol, "im of %s", e.Basis)
	}
}

// AssertStore checks a store's contents against want (see AssertEntries)
// and its structural invariants.
func AssertStore(t *testing.T, want []ir.Entry, s *state.Store, tol float64) {
	t.Helper()
	require.NoError(t, s.CheckInvariants())
	AssertEntries(t, want, s.Snapshot(), tol)
}

// AssertNormalized checks Σ|a|² = 1 within tol.
func AssertNormalized(t *testing.T, s *state.Store, tol float64) {
	t.Helper()
	assert.InDelta(t, 1.0, s.Norm(), tol, "store is not normalized")
}
