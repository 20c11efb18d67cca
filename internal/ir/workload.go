package ir

import (
	"math"
)

// AncillaCount is the number of scratch qubits the addition circuit uses.
const AncillaCount = 4

// AdditionCircuit builds a ripple-carry adder computing out = a + b.
//
// a and b are the addend ranges (least significant qubit first) and must have
// the same length k ≥ 1. out must hold at least k+1 qubits; its bit k receives
// the final carry. anc must hold exactly four scratch qubits, all of which are
// returned to 0. Every listed qubit must be distinct. The circuit uses only
// CNOT, CCNOT and Reset.
//
// Ancilla roles: anc[0] carries into the current bit, anc[1] and anc[2] hold
// the two carry-generating terms, anc[3] computes their OR.
func AdditionCircuit(a, b, out, anc []int) (*Circuit, error) {
	if err := checkAdderRanges(a, b, out, anc); err != nil {
		return nil, err
	}

	c0, c1, c2, c3 := anc[0], anc[1], anc[2], anc[3]
	c := NewCircuit()

	for i := range a {
		c.Append(
			NewGate(CNOT, a[i], out[i]),
			NewGate(CNOT, b[i], out[i]),
		)
		if i == 0 {
			c.Append(NewGate(CCNOT, a[i], b[i], c0))
			continue
		}

		c.Append(
			// carry terms: (a⊕b)·cin and a·b
			NewGate(CCNOT, out[i], c0, c1),
			NewGate(CCNOT, a[i], b[i], c2),
			// c3 = c1 OR c2
			NewGate(CNOT, c1, c3),
			NewGate(CNOT, c2, c3),
			NewGate(CCNOT, c1, c2, c3),
			// uncompute the carry terms
			NewGate(CCNOT, out[i], c0, c1),
			NewGate(CCNOT, a[i], b[i], c2),
			// sum bit
			NewGate(CNOT, c0, out[i]),
			// swap c0 and c3 so c0 holds the outgoing carry
			NewGate(CNOT, c0, c3),
			NewGate(CNOT, c3, c0),
			NewGate(CNOT, c0, c3),
			// drop the incoming carry
			NewGate(Reset, c3),
		)
	}

	c.Append(
		NewGate(CNOT, c0, out[len(a)]),
		NewGate(Reset, c0),
	)
	return c, nil
}

func checkAdderRanges(a, b, out, anc []int) error {
	if len(a) == 0 {
		return NewPreconditionError(ErrCodeMalformedRange, "addend range must not be empty")
	}
	if len(a) != len(b) {
		return NewPreconditionError(ErrCodeMalformedRange,
			"addend ranges differ in length: %d and %d", len(a), len(b))
	}
	if len(out) <= len(a) {
		return NewPreconditionError(ErrCodeMalformedRange,
			"output range needs more than %d qubits, got %d", len(a), len(out))
	}
	if len(anc) != AncillaCount {
		return NewPreconditionError(ErrCodeMalformedRange,
			"adder needs exactly %d ancillary qubits, got %d", AncillaCount, len(anc))
	}

	seen := make(map[int]bool, len(a)+len(b)+len(out)+len(anc))
	for _, r := range [][]int{a, b, out, anc} {
		for _, q := range r {
			if q < 0 {
				return NewPreconditionError(ErrCodeQubitOutOfRange, "negative qubit index %d", q)
			}
			if seen[q] {
				return NewPreconditionError(ErrCodeDuplicateQubit, "qubit %d appears in more than one adder range", q)
			}
			seen[q] = true
		}
	}
	return nil
}

// Superposition returns one Hadamard per listed qubit.
func Superposition(qubits ...int) *Circuit {
	c := NewCircuit()
	for _, q := range qubits {
		c.Append(NewGate(Hadamard, q))
	}
	return c
}

// GroverIterations is the default number of Grover rounds for a target
// range of the given width: ⌊√width⌋ + 1.
func GroverIterations(width int) int {
	return int(math.Floor(math.Sqrt(float64(width)))) + 1
}

// AppendGrover appends rounds of {InvertAllZero, Diffusion} over targets.
// iterations == 0 selects GroverIterations(len(targets)).
func (c *Circuit) AppendGrover(targets []int, iterations int) error {
	if len(targets) == 0 {
		return NewPreconditionError(ErrCodeMalformedRange, "grover target range must not be empty")
	}
	if iterations < 0 {
		return NewPreconditionError(ErrCodeMalformedRange, "grover iterations must not be negative, got %d", iterations)
	}
	if iterations == 0 {
		iterations = GroverIterations(len(targets))
	}
	for i := 0; i < iterations; i++ {
		c.Append(
			NewGate(InvertAllZero, targets...),
			NewGate(Diffusion, targets...),
		)
	}
	return nil
}
