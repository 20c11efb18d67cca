package harness

import (
	"github.com/roach88/sparsesim/internal/engine"
	"github.com/roach88/sparsesim/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all assertions hold.
	Pass bool `json:"pass"`

	// RunID identifies the bounded run in the results database.
	RunID string `json:"run_id"`

	// ReferenceID identifies the unbounded reference run, if requested.
	ReferenceID string `json:"reference_id,omitempty"`

	// Qubits is the register width of the program.
	Qubits int `json:"qubits"`

	// Entries is the final state, ordered by basis.
	Entries []ir.Entry `json:"entries"`

	// Norm is Σ|a|² over Entries.
	Norm float64 `json:"norm"`

	// Stats summarizes the bounded run.
	Stats engine.Stats `json:"stats"`

	// FidelityError is the L2 distance to the reference run, if requested.
	FidelityError *float64 `json:"fidelity_error,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Entries: []ir.Entry{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
