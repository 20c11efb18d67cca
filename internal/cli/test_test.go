package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bellScenario = heredoc.Doc(`
	name: bell
	program:
	  qubits: 2
	  prepare:
	    - {kind: hadamard, qubits: [0]}
	    - {kind: cnot, qubits: [0, 1]}
	assertions:
	  - {type: entry_count, count: 2}
	  - {type: norm, value: 1}
`)

var failingScenario = heredoc.Doc(`
	name: wrong
	program:
	  qubits: 1
	  superposition: [0]
	assertions:
	  - {type: entry_count, count: 1}
`)

const bellGolden = `{"entries":[{"basis":"00","im":"0.000000","re":"0.707107"},{"basis":"11","im":"0.000000","re":"0.707107"}],"qubits":2,"scenario":"bell"}`

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	_, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	out, _, err := execute(NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Scenarios)
}

func TestTestCommandPassing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bell.yaml", bellScenario)

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ bell")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
	assert.Contains(t, out, "All scenarios passed")
}

func TestTestCommandFailingJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bell.yaml", bellScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)
	writeFile(t, dir, "broken.yml", "name: [")

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 2, result.Failed)

	byName := make(map[string]ScenarioResult)
	for _, s := range result.Scenarios {
		byName[s.Name] = s
	}
	assert.True(t, byName["bell"].Pass)
	assert.Equal(t, 2, byName["bell"].Entries)
	require.Contains(t, byName, "wrong")
	assert.False(t, byName["wrong"].Pass)
	require.Len(t, byName["wrong"].Errors, 1)
	assert.Contains(t, byName["wrong"].Errors[0], "entry_count")
	require.Contains(t, byName, "broken.yml")
	assert.Contains(t, byName["broken.yml"].Errors[0], "failed to load scenario")
}

func TestTestCommandGoldenLifecycle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bell.yaml", bellScenario)
	goldenPath := filepath.Join(dir, "golden", "bell.golden")

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "--update", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")

	data, err := os.ReadFile(goldenPath)
	require.NoError(t, err)
	assert.Equal(t, bellGolden, string(data))

	_, _, err = execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(goldenPath, []byte(`{"entries":[],"qubits":2,"scenario":"bell"}`), 0644))
	out, _, err = execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "does not match golden file")
}

func TestTestCommandFilter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bell.yaml", bellScenario)
	writeFile(t, dir, "wrong.yaml", failingScenario)

	out, _, err := execute(NewTestCommand(&RootOptions{Format: "json"}), "--filter", "be*", dir)
	require.NoError(t, err)

	var result TestResult
	decodeResponse(t, out, &result)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "bell", result.Scenarios[0].Name)
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", bellScenario)
	writeFile(t, dir, "nested/b.yml", bellScenario)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, "golden/c.yaml", bellScenario)

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.yaml"),
		filepath.Join(dir, "nested", "b.yml"),
	}, files)

	_, err = findScenarioFiles(dir, "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "bell.golden"), goldenFilePath("scenarios", "bell"))
}
