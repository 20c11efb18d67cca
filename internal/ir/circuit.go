package ir

// Circuit is an ordered sequence of gates.
//
// Circuits grow only at either end. The engine iterates a circuit without
// mutating it; Gates returns a copy so callers cannot alias the backing array.
type Circuit struct {
	gates []Gate
}

// NewCircuit creates a circuit from the given gates, in order.
func NewCircuit(gates ...Gate) *Circuit {
	c := &Circuit{gates: make([]Gate, 0, len(gates))}
	c.gates = append(c.gates, gates...)
	return c
}

// Append adds gates to the end of the circuit.
func (c *Circuit) Append(gates ...Gate) {
	c.gates = append(c.gates, gates...)
}

// Prepend adds gates to the front of the circuit, preserving their order.
func (c *Circuit) Prepend(gates ...Gate) {
	merged := make([]Gate, 0, len(gates)+len(c.gates))
	merged = append(merged, gates...)
	c.gates = append(merged, c.gates...)
}

// Extend appends every gate of other.
func (c *Circuit) Extend(other *Circuit) {
	if other == nil {
		return
	}
	c.gates = append(c.gates, other.gates...)
}

// Len returns the number of gates.
func (c *Circuit) Len() int {
	if c == nil {
		return 0
	}
	return len(c.gates)
}

// Gate returns the gate at position i.
func (c *Circuit) Gate(i int) Gate {
	return c.gates[i]
}

// Gates returns a copy of the gate sequence.
func (c *Circuit) Gates() []Gate {
	if c == nil {
		return nil
	}
	out := make([]Gate, len(c.gates))
	copy(out, c.gates)
	return out
}

// RequiredQubits returns the register width needed to run the circuit:
// the highest referenced qubit index plus one, or 1 for an empty circuit.
func (c *Circuit) RequiredQubits() int {
	highest := 0
	for _, g := range c.Gates() {
		for _, q := range g.Qubits {
			if q > highest {
				highest = q
			}
		}
	}
	return highest + 1
}

// Validate checks every gate against a register of the given width.
// The first failure is returned bound to its gate position.
func (c *Circuit) Validate(qubits int) error {
	if qubits <= 0 {
		return NewPreconditionError(ErrCodeInvalidQubitCount, "register width must be positive, got %d", qubits)
	}
	for i, g := range c.Gates() {
		if err := g.Validate(qubits); err != nil {
			if pe, ok := err.(*PreconditionError); ok {
				return pe.AtGate(i)
			}
			return err
		}
	}
	return nil
}
