package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sparsesim/internal/ir"
)

// Snapshot renders the golden form of a result: canonical JSON of the
// scenario name, register width, the final entries ordered by basis, and the
// fidelity error when a reference run was made. Amplitudes are fixed to six
// decimals so float noise below 1e-6 never changes a golden file.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	entries := make([]any, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = map[string]any{
			"basis": e.Basis.String(),
			"re":    ir.FormatAmplitude(e.Amplitude.Re),
			"im":    ir.FormatAmplitude(e.Amplitude.Im),
		}
	}

	snapshot := map[string]any{
		"scenario": scenarioName,
		"qubits":   result.Qubits,
		"entries":  entries,
	}
	if result.FidelityError != nil {
		snapshot["fidelity_error"] = ir.FormatAmplitude(*result.FidelityError)
	}
	return ir.MarshalCanonical(snapshot)
}

// RunWithGolden executes a scenario and compares its final state against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the state doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
