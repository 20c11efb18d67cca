package engine

import (
	"fmt"

	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/state"
)

// ProgramOptions returns the options a program carries: its capacity and
// its tie-break seed. Options passed after these override them.
func ProgramOptions(p *ir.Program) []Option {
	return []Option{WithCapacity(p.Capacity), WithSeed(p.Seed)}
}

// RunProgram validates p, seeds a fresh store from p.Initial (or the
// all-zero state when it is empty) and runs p.Circuit on it.
func (e *Engine) RunProgram(p *ir.Program) (*state.Store, Stats, error) {
	if err := p.Validate(); err != nil {
		return nil, Stats{}, err
	}

	var (
		s   *state.Store
		err error
	)
	if len(p.Initial) > 0 {
		s, err = state.NewFromEntries(p.Qubits, p.Initial)
	} else {
		s, err = state.New(p.Qubits)
	}
	if err != nil {
		return nil, Stats{}, fmt.Errorf("program %q: %w", p.Name, err)
	}

	stats, err := e.Run(p.Circuit, s)
	if err != nil {
		return nil, stats, fmt.Errorf("program %q: %w", p.Name, err)
	}
	return s, stats, nil
}
