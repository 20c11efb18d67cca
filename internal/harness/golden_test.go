package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparsesim/internal/ir"
)

// Golden files live in testdata/golden. To regenerate them, run:
//
//	go test ./internal/harness -run TestScenarioGoldens -update
func TestScenarioGoldens(t *testing.T) {
	for _, name := range []string{"bell", "adder-2bit", "drop-biased", "grover-2", "grover-3-bounded"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "assertion failures: %v", result.Errors)
		})
	}
}

func TestSnapshot_Format(t *testing.T) {
	fe := 0.25
	result := &Result{
		Qubits: 2,
		Entries: []ir.Entry{
			{Basis: ir.MustParseBasis("01"), Amplitude: ir.Amplitude{Re: -0.0000001, Im: 0.5}},
			{Basis: ir.MustParseBasis("10"), Amplitude: ir.Amplitude{Re: 1.0 / 3}},
		},
		FidelityError: &fe,
	}

	data, err := Snapshot("fmt", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"entries":[{"basis":"01","im":"0.500000","re":"0.000000"},{"basis":"10","im":"0.000000","re":"0.333333"}],`+
			`"fidelity_error":"0.250000","qubits":2,"scenario":"fmt"}`,
		string(data))
}

func TestSnapshot_EmptyState(t *testing.T) {
	data, err := Snapshot("empty", &Result{Qubits: 1, Entries: []ir.Entry{}})
	require.NoError(t, err)
	assert.Equal(t, `{"entries":[],"qubits":1,"scenario":"empty"}`, string(data))
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "bell.yaml"))
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot(scenario.Name, first)
	require.NoError(t, err)
	b, err := Snapshot(scenario.Name, second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}
