package compiler

import (
	"errors"
	"fmt"
	"math"

	"github.com/roach88/sparsesim/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrInvalidQubitCount = "E200" // register width must be positive
	ErrUnknownGate       = "E201" // gate kind outside the gate set
	ErrGateArity         = "E202" // wrong number of qubits for the gate
	ErrQubitOutOfRange   = "E203" // qubit index outside the register
	ErrDuplicateQubit    = "E204" // qubit listed twice in one gate or range
	ErrAdderRange        = "E205" // malformed adder ranges
	ErrGroverRange       = "E206" // malformed grover targets or iterations
	ErrInitialBasis      = "E207" // malformed, mis-sized or repeated seed basis
	ErrInitialNorm       = "E208" // seed amplitudes not normalized
	ErrNegativeCapacity  = "E209" // capacity below zero
)

// ValidationError represents a circuit definition validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a decoded definition.
// Returns all errors found (does not fail-fast).
func Validate(def *Definition) []ValidationError {
	var errs []ValidationError

	width := def.Qubits
	if def.Qubits < 0 {
		errs = append(errs, ValidationError{
			Field:   "qubits",
			Message: fmt.Sprintf("register width must be positive, got %d", def.Qubits),
			Code:    ErrInvalidQubitCount,
		})
	}
	if width <= 0 {
		// Width is inferred at build time; only index sign is checkable.
		width = math.MaxInt
	}

	if def.Capacity < 0 {
		errs = append(errs, ValidationError{
			Field:   "capacity",
			Message: fmt.Sprintf("capacity must not be negative, got %d", def.Capacity),
			Code:    ErrNegativeCapacity,
		})
	}

	errs = append(errs, validateGates("prepare", def.Prepare, width)...)
	for i, q := range def.Superposition {
		if q < 0 || q >= width {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("superposition[%d]", i),
				Message: fmt.Sprintf("qubit %d outside register", q),
				Code:    ErrQubitOutOfRange,
			})
		}
	}

	if a := def.Adder; a != nil {
		if _, err := ir.AdditionCircuit(a.A, a.B, a.Out, a.Ancilla); err != nil {
			errs = append(errs, ValidationError{Field: "adder", Message: err.Error(), Code: ErrAdderRange})
		} else if width != math.MaxInt {
			errs = append(errs, checkRange("adder", width, a.A, a.B, a.Out, a.Ancilla)...)
		}
	}

	errs = append(errs, validateGates("gates", def.Gates, width)...)

	if g := def.Grover; g != nil {
		scratch := ir.NewCircuit()
		if err := scratch.AppendGrover(g.Targets, g.Iterations); err != nil {
			errs = append(errs, ValidationError{Field: "grover", Message: err.Error(), Code: ErrGroverRange})
		} else {
			errs = append(errs, validateGate("grover", ir.NewGate(ir.Diffusion, g.Targets...), width)...)
		}
	}

	errs = append(errs, validateInitial(def)...)
	return errs
}

func validateGates(field string, gates []GateDef, width int) []ValidationError {
	var errs []ValidationError
	for i, g := range gates {
		path := fmt.Sprintf("%s[%d]", field, i)
		gate, err := g.Gate()
		if err != nil {
			errs = append(errs, ValidationError{Field: path, Message: err.Error(), Code: ErrUnknownGate})
			continue
		}
		errs = append(errs, validateGate(path, gate, width)...)
	}
	return errs
}

func validateGate(field string, g ir.Gate, width int) []ValidationError {
	err := g.Validate(width)
	if err == nil {
		return nil
	}
	return []ValidationError{{Field: field, Message: err.Error(), Code: codeFor(err)}}
}

// checkRange reports indices of an otherwise well-formed range set that fall
// outside the register.
func checkRange(field string, width int, ranges ...[]int) []ValidationError {
	var errs []ValidationError
	for _, r := range ranges {
		for _, q := range r {
			if q >= width {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("qubit %d outside register [0, %d)", q, width),
					Code:    ErrQubitOutOfRange,
				})
			}
		}
	}
	return errs
}

func validateInitial(def *Definition) []ValidationError {
	if len(def.Initial) == 0 {
		return nil
	}

	var errs []ValidationError
	want := def.Qubits
	seen := make(map[string]bool, len(def.Initial))
	var sum float64

	for i, e := range def.Initial {
		path := fmt.Sprintf("initial[%d]", i)
		b, err := ir.ParseBasis(e.Bits)
		if err != nil {
			errs = append(errs, ValidationError{Field: path, Message: err.Error(), Code: ErrInitialBasis})
			continue
		}
		if want <= 0 {
			want = b.Len()
		}
		if b.Len() != want {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("basis %s has %d qubits, register has %d", e.Bits, b.Len(), want),
				Code:    ErrInitialBasis,
			})
		}
		if seen[e.Bits] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("basis %s listed twice", e.Bits),
				Code:    ErrInitialBasis,
			})
		}
		seen[e.Bits] = true
		sum += e.Re*e.Re + e.Im*e.Im
	}

	if math.Abs(sum-1) > ir.NormTolerance {
		errs = append(errs, ValidationError{
			Field:   "initial",
			Message: fmt.Sprintf("squared magnitudes sum to %g, want 1", sum),
			Code:    ErrInitialNorm,
		})
	}
	return errs
}

// codeFor maps a gate precondition to its validation code.
func codeFor(err error) string {
	var pe *ir.PreconditionError
	if !errors.As(err, &pe) {
		return ErrUnknownGate
	}
	switch pe.Code {
	case ir.ErrCodeInvalidArity:
		return ErrGateArity
	case ir.ErrCodeQubitOutOfRange:
		return ErrQubitOutOfRange
	case ir.ErrCodeDuplicateQubit:
		return ErrDuplicateQubit
	default:
		return ErrUnknownGate
	}
}
