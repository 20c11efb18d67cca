package ir

import (
	"fmt"
	"strings"
)

// GateKind identifies one member of the fixed gate set.
//
// The set is closed: every switch over GateKind in this module is exhaustive
// and falls through to ErrCodeUnknownGate for anything else.
type GateKind int

const (
	// GateUnknown is the zero value and is never a valid gate.
	GateUnknown GateKind = iota
	Hadamard
	CNOT
	CCNOT
	PauliX
	PauliY
	PauliZ
	Reset
	InvertAllZero
	InvertSomeOne
	InvertAllOne
	Diffusion
)

// gateNames maps kinds to their wire names (CUE, YAML, SQLite, JSON).
var gateNames = map[GateKind]string{
	Hadamard:      "hadamard",
	CNOT:          "cnot",
	CCNOT:         "ccnot",
	PauliX:        "paulix",
	PauliY:        "pauliy",
	PauliZ:        "pauliz",
	Reset:         "reset",
	InvertAllZero: "invert_all_zero",
	InvertSomeOne: "invert_some_one",
	InvertAllOne:  "invert_all_one",
	Diffusion:     "diffusion",
}

// AllGateKinds lists the gate set in declaration order.
var AllGateKinds = []GateKind{
	Hadamard, CNOT, CCNOT, PauliX, PauliY, PauliZ,
	Reset, InvertAllZero, InvertSomeOne, InvertAllOne, Diffusion,
}

// String returns the wire name of the kind.
func (k GateKind) String() string {
	if name, ok := gateNames[k]; ok {
		return name
	}
	return fmt.Sprintf("gate(%d)", int(k))
}

// Valid reports whether k belongs to the fixed gate set.
func (k GateKind) Valid() bool {
	_, ok := gateNames[k]
	return ok
}

// ParseGateKind resolves a wire name (case-insensitive) to a GateKind.
func ParseGateKind(name string) (GateKind, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for kind, n := range gateNames {
		if n == lower {
			return kind, nil
		}
	}
	return GateUnknown, NewPreconditionError(ErrCodeUnknownGate, "unknown gate %q", name)
}

// Arity returns the exact number of qubits the kind takes, or 0 when the kind
// accepts any non-empty list.
func (k GateKind) Arity() int {
	switch k {
	case Hadamard, PauliX, PauliY, PauliZ:
		return 1
	case CNOT:
		return 2
	case CCNOT:
		return 3
	default:
		return 0
	}
}

// Grows reports whether the kind can increase the number of stored entries.
// Only Hadamard splits entries; the eviction policy runs after it.
func (k GateKind) Grows() bool {
	return k == Hadamard
}

// Gate is an immutable gate descriptor: a kind plus ordered target qubits.
type Gate struct {
	Kind   GateKind `json:"kind"`
	Qubits []int    `json:"qubits"`
}

// NewGate creates a gate descriptor. The qubit slice is copied.
func NewGate(kind GateKind, qubits ...int) Gate {
	q := make([]int, len(qubits))
	copy(q, qubits)
	return Gate{Kind: kind, Qubits: q}
}

// String renders the gate as "kind[q0 q1 ...]".
func (g Gate) String() string {
	return fmt.Sprintf("%s%v", g.Kind, g.Qubits)
}

// Validate checks the gate against a register of the given width.
func (g Gate) Validate(qubits int) error {
	if !g.Kind.Valid() {
		return NewPreconditionError(ErrCodeUnknownGate, "unknown gate kind %d", int(g.Kind))
	}

	if arity := g.Kind.Arity(); arity > 0 && len(g.Qubits) != arity {
		return NewPreconditionError(ErrCodeInvalidArity,
			"%s takes %d qubit(s), got %d", g.Kind, arity, len(g.Qubits))
	}
	if len(g.Qubits) == 0 {
		return NewPreconditionError(ErrCodeInvalidArity, "%s requires at least one qubit", g.Kind)
	}

	seen := make(map[int]bool, len(g.Qubits))
	for _, q := range g.Qubits {
		if q < 0 || q >= qubits {
			return &PreconditionError{
				Code:    ErrCodeQubitOutOfRange,
				Message: fmt.Sprintf("%s targets qubit %d outside register [0, %d)", g.Kind, q, qubits),
				Gate:    -1,
				Details: map[string]string{
					"qubit":    fmt.Sprintf("%d", q),
					"register": fmt.Sprintf("%d", qubits),
				},
			}
		}
		if seen[q] {
			return NewPreconditionError(ErrCodeDuplicateQubit, "%s lists qubit %d twice", g.Kind, q)
		}
		seen[q] = true
	}

	return nil
}
