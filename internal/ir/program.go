package ir

// Program bundles everything a single simulation run needs.
//
// Programs are produced by the compiler (CUE circuit definitions) and by the
// harness (YAML scenarios). A nil Initial means the all-zero start state.
type Program struct {
	// Name identifies the program in output and in the results database.
	Name string

	// Qubits is the register width.
	Qubits int

	// Capacity is the state-drop bound; 0 means unbounded.
	Capacity int

	// Seed drives the eviction tie-break source.
	Seed uint64

	// Circuit is the gate sequence to run.
	Circuit *Circuit

	// Initial optionally seeds the store with explicit entries.
	Initial []Entry
}

// Validate checks the program's static preconditions: a positive register
// width, a non-negative capacity, a circuit that fits the register, and seed
// entries of matching width.
func (p *Program) Validate() error {
	if p.Qubits <= 0 {
		return NewPreconditionError(ErrCodeInvalidQubitCount,
			"program %q: register width must be positive, got %d", p.Name, p.Qubits)
	}
	if p.Capacity < 0 {
		return NewPreconditionError(ErrCodeInvalidCapacity,
			"program %q: capacity must not be negative, got %d", p.Name, p.Capacity)
	}
	if p.Circuit != nil {
		if err := p.Circuit.Validate(p.Qubits); err != nil {
			return err
		}
	}
	for _, e := range p.Initial {
		if e.Basis.Len() != p.Qubits {
			return NewPreconditionError(ErrCodeBasisLengthMismatch,
				"program %q: initial basis %s has %d qubits, register has %d",
				p.Name, e.Basis, e.Basis.Len(), p.Qubits)
		}
	}
	return nil
}
