package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/sparsesim/internal/ir"
)

// CircuitsField is the top-level CUE field holding named circuit definitions.
const CircuitsField = "circuit"

// CompileCircuit parses a CUE value into a Program.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the circuit struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`circuit: bell: { gates: [...] }`)
//	p, err := CompileCircuit(v.LookupPath(cue.ParsePath("circuit.bell")))
func CompileCircuit(v cue.Value) (*ir.Program, error) {
	def, err := DecodeCircuit(v)
	if err != nil {
		return nil, err
	}

	name := circuitName(v)
	p, err := def.Program(name)
	if err != nil {
		return nil, &CompileError{
			Field:   "circuit." + name,
			Message: err.Error(),
			Pos:     v.Pos(),
			Err:     err,
		}
	}
	return p, nil
}

// DecodeCircuit checks v against the #Circuit schema and decodes it without
// building the gate sequence.
func DecodeCircuit(v cue.Value) (*Definition, error) {
	if !v.Exists() {
		return nil, &CompileError{Field: "circuit", Message: "circuit definition not found"}
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema, err := circuitSchema(v.Context())
	if err != nil {
		return nil, fmt.Errorf("compiling circuit schema: %w", err)
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	def := &Definition{}
	if err := unified.Decode(def); err != nil {
		return nil, formatCUEError(err)
	}
	return def, nil
}

// circuitName returns the last label of v's path.
func circuitName(v cue.Value) string {
	sels := v.Path().Selectors()
	if len(sels) == 0 {
		return ""
	}
	last := sels[len(sels)-1]
	if last.LabelType() == cue.StringLabel {
		return last.Unquoted()
	}
	return last.String()
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos

	// Err is the underlying cause, if any.
	Err error
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Report the first error, with its position when CUE has one.
	firstErr := errs[0]
	ce := &CompileError{
		Field:   "cue",
		Message: firstErr.Error(),
		Err:     err,
	}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
