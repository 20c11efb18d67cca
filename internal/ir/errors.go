package ir

import (
	"errors"
	"fmt"
)

// PreconditionError reports a caller error that makes an operation
// impossible to perform: malformed qubit ranges, unnormalized seed states,
// out-of-range indices, unknown gate kinds.
//
// Precondition errors are fatal for the run that raised them. They are
// returned at the call that violates them and never silently corrected.
type PreconditionError struct {
	// Code identifies the error category.
	Code PreconditionCode

	// Message is a human-readable description.
	Message string

	// Gate is the offending gate position within a circuit, or -1.
	Gate int

	// Details contains additional context.
	Details map[string]string
}

// PreconditionCode categorizes precondition errors.
type PreconditionCode string

const (
	// ErrCodeQubitOutOfRange indicates a qubit index outside the tracked register.
	ErrCodeQubitOutOfRange PreconditionCode = "QUBIT_OUT_OF_RANGE"

	// ErrCodeInvalidArity indicates a gate received the wrong number of qubits.
	ErrCodeInvalidArity PreconditionCode = "INVALID_ARITY"

	// ErrCodeDuplicateQubit indicates a qubit listed twice where distinct qubits are required.
	ErrCodeDuplicateQubit PreconditionCode = "DUPLICATE_QUBIT"

	// ErrCodeUnknownGate indicates a gate kind outside the fixed gate set.
	ErrCodeUnknownGate PreconditionCode = "UNKNOWN_GATE"

	// ErrCodeMalformedRange indicates mismatched or undersized qubit ranges.
	ErrCodeMalformedRange PreconditionCode = "MALFORMED_RANGE"

	// ErrCodeUnnormalizedState indicates a seed state whose squared magnitudes do not sum to 1.
	ErrCodeUnnormalizedState PreconditionCode = "UNNORMALIZED_STATE"

	// ErrCodeBasisLengthMismatch indicates a basis assignment of the wrong width.
	ErrCodeBasisLengthMismatch PreconditionCode = "BASIS_LENGTH_MISMATCH"

	// ErrCodeDuplicateBasis indicates two entries sharing one basis assignment.
	ErrCodeDuplicateBasis PreconditionCode = "DUPLICATE_BASIS"

	// ErrCodeUnknownBasis indicates a truncated entry missing from the reference.
	ErrCodeUnknownBasis PreconditionCode = "UNKNOWN_BASIS"

	// ErrCodeInvalidCapacity indicates a negative state-drop capacity.
	ErrCodeInvalidCapacity PreconditionCode = "INVALID_CAPACITY"

	// ErrCodeInvalidQubitCount indicates a register of zero or negative width.
	ErrCodeInvalidQubitCount PreconditionCode = "INVALID_QUBIT_COUNT"
)

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	if e.Gate >= 0 {
		return fmt.Sprintf("%s: %s (gate=%d)", e.Code, e.Message, e.Gate)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewPreconditionError creates a PreconditionError not tied to a gate position.
func NewPreconditionError(code PreconditionCode, format string, args ...any) *PreconditionError {
	return &PreconditionError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Gate:    -1,
	}
}

// AtGate returns a copy of the error bound to a gate position.
func (e *PreconditionError) AtGate(index int) *PreconditionError {
	cp := *e
	cp.Gate = index
	return &cp
}

// IsPrecondition returns true if the error is a precondition violation.
// Uses errors.As to handle wrapped errors.
func IsPrecondition(err error) bool {
	var pe *PreconditionError
	return errors.As(err, &pe)
}

// PreconditionCodeOf returns the code of a wrapped precondition error, or "".
func PreconditionCodeOf(err error) PreconditionCode {
	var pe *PreconditionError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
