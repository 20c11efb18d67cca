package compiler

import (
	"fmt"

	"github.com/roach88/sparsesim/internal/ir"
)

// Definition is the decoded form of a circuit definition. CUE files and
// harness YAML scenarios share it, so both carry the same fields.
type Definition struct {
	Qubits        int        `json:"qubits,omitempty" yaml:"qubits,omitempty"`
	Capacity      int        `json:"capacity,omitempty" yaml:"capacity,omitempty"`
	Seed          uint64     `json:"seed,omitempty" yaml:"seed,omitempty"`
	Prepare       []GateDef  `json:"prepare,omitempty" yaml:"prepare,omitempty"`
	Superposition []int      `json:"superposition,omitempty" yaml:"superposition,omitempty"`
	Adder         *AdderDef  `json:"adder,omitempty" yaml:"adder,omitempty"`
	Gates         []GateDef  `json:"gates,omitempty" yaml:"gates,omitempty"`
	Grover        *GroverDef `json:"grover,omitempty" yaml:"grover,omitempty"`
	Initial       []EntryDef `json:"initial,omitempty" yaml:"initial,omitempty"`
}

// GateDef names one gate and its qubits.
type GateDef struct {
	Kind   string `json:"kind" yaml:"kind"`
	Qubits []int  `json:"qubits" yaml:"qubits"`
}

// AdderDef places an addition circuit on the register.
type AdderDef struct {
	A       []int `json:"a" yaml:"a"`
	B       []int `json:"b" yaml:"b"`
	Out     []int `json:"out" yaml:"out"`
	Ancilla []int `json:"ancilla" yaml:"ancilla"`
}

// GroverDef appends Grover rounds over Targets. Zero iterations selects
// ir.GroverIterations(len(Targets)).
type GroverDef struct {
	Targets    []int `json:"targets" yaml:"targets"`
	Iterations int   `json:"iterations,omitempty" yaml:"iterations,omitempty"`
}

// EntryDef is one explicit seed entry.
type EntryDef struct {
	Bits string  `json:"bits" yaml:"bits"`
	Re   float64 `json:"re" yaml:"re"`
	Im   float64 `json:"im,omitempty" yaml:"im,omitempty"`
}

// Gate resolves the definition to an ir.Gate.
func (g GateDef) Gate() (ir.Gate, error) {
	kind, err := ir.ParseGateKind(g.Kind)
	if err != nil {
		return ir.Gate{}, err
	}
	return ir.NewGate(kind, g.Qubits...), nil
}

// Circuit assembles prepare ++ superposition ++ adder ++ gates ++ grover.
func (d *Definition) Circuit() (*ir.Circuit, error) {
	c := ir.NewCircuit()

	for i, g := range d.Prepare {
		gate, err := g.Gate()
		if err != nil {
			return nil, fmt.Errorf("prepare[%d]: %w", i, err)
		}
		c.Append(gate)
	}

	c.Extend(ir.Superposition(d.Superposition...))

	if d.Adder != nil {
		add, err := ir.AdditionCircuit(d.Adder.A, d.Adder.B, d.Adder.Out, d.Adder.Ancilla)
		if err != nil {
			return nil, fmt.Errorf("adder: %w", err)
		}
		c.Extend(add)
	}

	for i, g := range d.Gates {
		gate, err := g.Gate()
		if err != nil {
			return nil, fmt.Errorf("gates[%d]: %w", i, err)
		}
		c.Append(gate)
	}

	if d.Grover != nil {
		if err := c.AppendGrover(d.Grover.Targets, d.Grover.Iterations); err != nil {
			return nil, fmt.Errorf("grover: %w", err)
		}
	}

	return c, nil
}

// Entries parses the explicit seed entries.
func (d *Definition) Entries() ([]ir.Entry, error) {
	if len(d.Initial) == 0 {
		return nil, nil
	}
	entries := make([]ir.Entry, 0, len(d.Initial))
	for i, e := range d.Initial {
		entry, err := ir.NewEntry(e.Bits, e.Re, e.Im)
		if err != nil {
			return nil, fmt.Errorf("initial[%d]: %w", i, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Program builds and validates the program named name.
//
// An omitted register width is inferred from the seed entries when present,
// otherwise from the highest qubit the circuit touches.
func (d *Definition) Program(name string) (*ir.Program, error) {
	c, err := d.Circuit()
	if err != nil {
		return nil, err
	}
	initial, err := d.Entries()
	if err != nil {
		return nil, err
	}

	qubits := d.Qubits
	if qubits == 0 {
		if len(initial) > 0 {
			qubits = initial[0].Basis.Len()
		} else {
			qubits = c.RequiredQubits()
		}
	}

	p := &ir.Program{
		Name:     name,
		Qubits:   qubits,
		Capacity: d.Capacity,
		Seed:     d.Seed,
		Circuit:  c,
		Initial:  initial,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
