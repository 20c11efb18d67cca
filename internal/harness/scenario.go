package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/sparsesim/internal/compiler"
)

// Scenario defines a simulation test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the circuit definition to run.
	Program compiler.Definition `yaml:"program"`

	// Reference also runs the program without a capacity bound and records
	// the fidelity error of the bounded run against it.
	Reference bool `yaml:"reference,omitempty"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Assertion validates the final state of a run.
type Assertion struct {
	// Type specifies the assertion type:
	// - "entry_count": exactly Count entries are stored
	// - "max_entries": at most Count entries are stored
	// - "norm": Σ|a|² equals Value within Tolerance
	// - "amplitude": basis Bits holds (Re, Im) within Tolerance
	// - "register_value": every entry encodes Value on Qubits
	// - "fidelity_error": the reference distance equals Value within Tolerance
	// - "unique": no basis assignment is stored twice
	Type string `yaml:"type"`

	// Count is the expected entry count (entry_count, max_entries).
	Count int `yaml:"count,omitempty"`

	// Value is the expected norm, register value or fidelity error.
	Value *float64 `yaml:"value,omitempty"`

	// Tolerance bounds float comparisons. Zero selects DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	// Bits is the basis assignment to inspect (amplitude).
	Bits string `yaml:"bits,omitempty"`

	// Re and Im are the expected amplitude parts (amplitude).
	Re float64 `yaml:"re,omitempty"`
	Im float64 `yaml:"im,omitempty"`

	// Qubits is the register read by register_value, little-endian.
	Qubits []int `yaml:"qubits,omitempty"`
}

// Assertion type constants.
const (
	AssertEntryCount    = "entry_count"
	AssertMaxEntries    = "max_entries"
	AssertNorm          = "norm"
	AssertAmplitude     = "amplitude"
	AssertRegisterValue = "register_value"
	AssertFidelityError = "fidelity_error"
	AssertUnique        = "unique"
)

// DefaultTolerance is used by float assertions that do not set one.
const DefaultTolerance = 1e-9

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field validation.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and assertion shapes.
// Program-level checks are reported by compiler.Validate.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if errs := compiler.Validate(&s.Program); len(errs) > 0 {
		return fmt.Errorf("program: %w", errs[0])
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, s.Reference); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion checks that an assertion carries the fields its type needs.
func validateAssertion(index int, a Assertion, reference bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if a.Tolerance < 0 {
		return fmt.Errorf("assertions[%d]: tolerance must be non-negative", index)
	}

	switch a.Type {
	case AssertEntryCount, AssertMaxEntries:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertNorm:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for norm", index)
		}
	case AssertAmplitude:
		if a.Bits == "" {
			return fmt.Errorf("assertions[%d]: bits is required for amplitude", index)
		}
	case AssertRegisterValue:
		if len(a.Qubits) == 0 {
			return fmt.Errorf("assertions[%d]: qubits is required for register_value", index)
		}
		if a.Value == nil || *a.Value < 0 || *a.Value != float64(uint64(*a.Value)) {
			return fmt.Errorf("assertions[%d]: value must be a non-negative integer for register_value", index)
		}
	case AssertFidelityError:
		if !reference {
			return fmt.Errorf("assertions[%d]: fidelity_error requires reference: true", index)
		}
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for fidelity_error", index)
		}
	case AssertUnique:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
