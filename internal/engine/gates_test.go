package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/state"
	"github.com/roach88/sparsesim/internal/testutil/statetest"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func apply(t *testing.T, e *Engine, s *state.Store, gates ...ir.Gate) {
	t.Helper()
	for _, g := range gates {
		require.NoError(t, e.Apply(g, s))
	}
}

// mixedState builds a 4-qubit state with several entries and non-trivial
// phases, so involution checks exercise more than one key.
func mixedState(t *testing.T, e *Engine) *state.Store {
	t.Helper()
	s := statetest.NewStore(t, 4)
	apply(t, e, s,
		ir.NewGate(ir.Hadamard, 0),
		ir.NewGate(ir.Hadamard, 1),
		ir.NewGate(ir.Hadamard, 3),
		ir.NewGate(ir.PauliY, 1),
		ir.NewGate(ir.CNOT, 0, 2),
	)
	require.Equal(t, 8, s.Len())
	return s
}

func TestInvolutionGates(t *testing.T) {
	gates := []ir.Gate{
		ir.NewGate(ir.PauliX, 2),
		ir.NewGate(ir.PauliZ, 0),
		ir.NewGate(ir.CNOT, 3, 1),
		ir.NewGate(ir.CCNOT, 0, 3, 2),
		ir.NewGate(ir.InvertAllZero, 0, 1),
		ir.NewGate(ir.InvertAllOne, 1, 3),
		ir.NewGate(ir.InvertSomeOne, 0, 2),
	}

	for _, g := range gates {
		t.Run(g.String(), func(t *testing.T) {
			e := newEngine(t)
			s := mixedState(t, e)
			before := s.Snapshot()

			apply(t, e, s, g)
			apply(t, e, s, g)

			assert.Equal(t, before, s.Snapshot(), "applying %s twice must be exact identity", g)
		})
	}
}

func TestPauliX(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 3)

	apply(t, e, s, ir.NewGate(ir.PauliX, 1))
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("010", 1, 0)}, s, 0)
}

func TestPauliY(t *testing.T) {
	e := newEngine(t)

	zero := statetest.NewStore(t, 1)
	apply(t, e, zero, ir.NewGate(ir.PauliY, 0))
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("1", 0, 1)}, zero, 0)

	one := statetest.NewStore(t, 1, statetest.Entry("1", 1, 0))
	apply(t, e, one, ir.NewGate(ir.PauliY, 0))
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("0", 0, -1)}, one, 0)

	// Y·Y = I
	apply(t, e, one, ir.NewGate(ir.PauliY, 0))
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("1", 1, 0)}, one, 0)
}

func TestPauliYRotatesComplexAmplitude(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 2,
		statetest.Entry("00", 0.6, 0),
		statetest.Entry("11", 0, 0.8),
	)

	apply(t, e, s, ir.NewGate(ir.PauliY, 0))

	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("10", 0, 0.6),  // bit was 0: (re, im) → (−im, re)
		statetest.Entry("01", 0.8, 0), // bit was 1: (re, im) → (im, −re)
	}, s, 0)
}

func TestPauliZ(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 2,
		statetest.Entry("00", 0.6, 0),
		statetest.Entry("01", 0, 0.8),
	)

	apply(t, e, s, ir.NewGate(ir.PauliZ, 1))
	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("00", 0.6, 0),
		statetest.Entry("01", 0, -0.8),
	}, s, 0)
}

func TestCNOTAndCCNOT(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 3,
		statetest.Entry("000", 0.5, 0),
		statetest.Entry("100", 0.5, 0),
		statetest.Entry("110", 0.5, 0),
		statetest.Entry("010", 0.5, 0),
	)

	apply(t, e, s, ir.NewGate(ir.CNOT, 0, 2))
	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("000", 0.5, 0),
		statetest.Entry("101", 0.5, 0),
		statetest.Entry("111", 0.5, 0),
		statetest.Entry("010", 0.5, 0),
	}, s, 0)

	apply(t, e, s, ir.NewGate(ir.CCNOT, 0, 1, 2))
	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("000", 0.5, 0),
		statetest.Entry("101", 0.5, 0),
		statetest.Entry("110", 0.5, 0),
		statetest.Entry("010", 0.5, 0),
	}, s, 0)
}

func TestInvertGates(t *testing.T) {
	uniform := func(t *testing.T) *state.Store {
		return statetest.NewStore(t, 2,
			statetest.Entry("00", 0.5, 0),
			statetest.Entry("01", 0.5, 0),
			statetest.Entry("10", 0.5, 0),
			statetest.Entry("11", 0.5, 0),
		)
	}

	tests := []struct {
		gate    ir.Gate
		negated []string
	}{
		{ir.NewGate(ir.InvertAllZero, 0, 1), []string{"00"}},
		{ir.NewGate(ir.InvertAllOne, 0, 1), []string{"11"}},
		{ir.NewGate(ir.InvertSomeOne, 0, 1), []string{"01", "10", "11"}},
		{ir.NewGate(ir.InvertAllZero, 1), []string{"00", "10"}},
		{ir.NewGate(ir.InvertAllOne, 0), []string{"10", "11"}},
		{ir.NewGate(ir.InvertSomeOne, 0), []string{"10", "11"}},
	}

	for _, tt := range tests {
		t.Run(tt.gate.String(), func(t *testing.T) {
			e := newEngine(t)
			s := uniform(t)
			apply(t, e, s, tt.gate)

			for _, bits := range []string{"00", "01", "10", "11"} {
				amp, ok := s.Lookup(ir.MustParseBasis(bits))
				require.True(t, ok)
				want := 0.5
				for _, n := range tt.negated {
					if n == bits {
						want = -0.5
					}
				}
				assert.Equal(t, want, amp.Re, bits)
			}
		})
	}
}

func TestResetMergesCollisions(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 2)
	apply(t, e, s, ir.NewGate(ir.Hadamard, 0))
	require.Equal(t, 2, s.Len())

	apply(t, e, s, ir.NewGate(ir.Reset, 0))

	// Collisions sum amplitudes; reset is not unitary, so the norm grows.
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("00", 2*ir.InvSqrt2, 0)}, s, 1e-12)
}

func TestResetCancellingCollision(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 2,
		statetest.Entry("10", ir.InvSqrt2, 0),
		statetest.Entry("00", -ir.InvSqrt2, 0),
	)

	apply(t, e, s, ir.NewGate(ir.Reset, 0, 1))

	// Reset keeps merged zero entries; only Hadamard drops them.
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("00", 0, 0)}, s, 1e-12)
}

func TestHadamardSplitScenario(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 1)

	apply(t, e, s, ir.NewGate(ir.Hadamard, 0))
	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("0", ir.InvSqrt2, 0),
		statetest.Entry("1", ir.InvSqrt2, 0),
	}, s, 1e-12)

	apply(t, e, s, ir.NewGate(ir.Hadamard, 0))
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("0", 1, 0)}, s, 1e-12)
}

func TestHadamardKeepCancelled(t *testing.T) {
	e := newEngine(t, WithKeepCancelled(true))
	s := statetest.NewStore(t, 1)

	apply(t, e, s, ir.NewGate(ir.Hadamard, 0), ir.NewGate(ir.Hadamard, 0))

	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("0", 1, 0),
		statetest.Entry("1", 0, 0),
	}, s, 1e-12)
	statetest.AssertNormalized(t, s, 1e-12)
}

func TestHadamardOnOneHasNegativeBranch(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 1, statetest.Entry("1", 1, 0))

	apply(t, e, s, ir.NewGate(ir.Hadamard, 0))
	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("0", ir.InvSqrt2, 0),
		statetest.Entry("1", -ir.InvSqrt2, 0),
	}, s, 1e-12)
}

func TestHadamardDoublingOnMixedState(t *testing.T) {
	for q := 0; q < 4; q++ {
		t.Run(fmt.Sprintf("q=%d", q), func(t *testing.T) {
			e := newEngine(t)
			s := mixedState(t, e)
			before := s.Snapshot()

			apply(t, e, s, ir.NewGate(ir.Hadamard, q), ir.NewGate(ir.Hadamard, q))

			statetest.AssertStore(t, before, s, 1e-12)
		})
	}
}

func TestDiffusionWholeRegister(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 2)

	c := ir.Superposition(0, 1)
	require.NoError(t, c.AppendGrover([]int{0, 1}, 1))
	_, err := e.Run(c, s)
	require.NoError(t, err)

	amp, ok := s.Lookup(ir.MustParseBasis("00"))
	require.True(t, ok)
	assert.InDelta(t, 1.0, amp.Re, 1e-12)
	statetest.AssertNormalized(t, s, 1e-12)
}

func TestDiffusionGroupsByUnlistedQubits(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 2,
		statetest.Entry("00", 0.5, 0),
		statetest.Entry("10", 0.5, 0),
		statetest.Entry("01", 0.5, 0),
		statetest.Entry("11", -0.5, 0),
	)

	apply(t, e, s, ir.NewGate(ir.Diffusion, 0))

	statetest.AssertStore(t, []ir.Entry{
		statetest.Entry("00", 0.5, 0),
		statetest.Entry("10", 0.5, 0),
		statetest.Entry("01", -0.5, 0),
		statetest.Entry("11", 0.5, 0),
	}, s, 1e-12)
}

func TestDiffusionKeepsAbsentEntriesAbsent(t *testing.T) {
	e := newEngine(t)
	s := statetest.NewStore(t, 2, statetest.Entry("01", 1, 0))

	apply(t, e, s, ir.NewGate(ir.Diffusion, 0, 1))

	// −1 + (2/4)·1
	statetest.AssertStore(t, []ir.Entry{statetest.Entry("01", -0.5, 0)}, s, 1e-12)
}

func TestNormalizationUnderUnitaryGates(t *testing.T) {
	c := ir.NewCircuit(
		ir.NewGate(ir.Hadamard, 0),
		ir.NewGate(ir.Hadamard, 2),
		ir.NewGate(ir.PauliY, 1),
		ir.NewGate(ir.CNOT, 0, 1),
		ir.NewGate(ir.Hadamard, 1),
		ir.NewGate(ir.CCNOT, 0, 1, 3),
		ir.NewGate(ir.PauliZ, 3),
		ir.NewGate(ir.Hadamard, 3),
		ir.NewGate(ir.InvertSomeOne, 1, 2),
		ir.NewGate(ir.Diffusion, 0, 1, 2, 3),
		ir.NewGate(ir.Hadamard, 0),
		ir.NewGate(ir.InvertAllOne, 0, 3),
		ir.NewGate(ir.PauliX, 2),
	)

	e := newEngine(t)
	s := statetest.NewStore(t, 4)
	_, err := e.Run(c, s)
	require.NoError(t, err)

	statetest.AssertNormalized(t, s, 1e-6)
	require.NoError(t, s.CheckInvariants())
}

func TestMergeKeepsFirstOccurrenceOrder(t *testing.T) {
	in := []ir.Entry{
		statetest.Entry("10", 0.25, 0),
		statetest.Entry("00", 0.5, 0),
		statetest.Entry("10", -0.25, 0),
		statetest.Entry("01", 0, 0.5),
		statetest.Entry("00", 0.5, 0),
	}

	kept := merge(append([]ir.Entry(nil), in...), false)
	require.Len(t, kept, 3)
	assert.Equal(t, "10", kept[0].Basis.String())
	assert.Equal(t, "00", kept[1].Basis.String())
	assert.Equal(t, "01", kept[2].Basis.String())
	assert.Equal(t, 1.0, kept[1].Amplitude.Re)

	dropped := merge(append([]ir.Entry(nil), in...), true)
	require.Len(t, dropped, 2)
	assert.Equal(t, "00", dropped[0].Basis.String())
	assert.Equal(t, "01", dropped[1].Basis.String())
}
