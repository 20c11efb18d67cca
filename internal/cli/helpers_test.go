package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

var bellCUE = heredoc.Doc(`
	package circuits

	circuit: bell: {
		qubits: 2
		prepare: [
			{kind: "hadamard", qubits: [0]},
			{kind: "cnot", qubits: [0, 1]},
		]
	}
`)

// biasedCUE keeps |0> at 0.989949 and |1> at -0.141421 after the Hadamard,
// so a capacity of 1 always drops |1>.
var biasedCUE = heredoc.Doc(`
	package circuits

	circuit: biased: {
		initial: [
			{bits: "0", re: 0.6},
			{bits: "1", re: 0.8},
		]
		superposition: [0]
	}
`)

// interferenceCUE cancels every entry with qubit 1 set on its last Hadamard.
// Capacity 3 drops one entry before that, so the bounded run keeps a
// surviving partner that the unbounded state has cancelled.
var interferenceCUE = heredoc.Doc(`
	package circuits

	circuit: interference: {
		qubits: 2
		capacity: 3
		seed: 1
		gates: [
			{kind: "hadamard", qubits: [0]},
			{kind: "hadamard", qubits: [1]},
			{kind: "hadamard", qubits: [1]},
		]
	}
`)

var twoCircuitsCUE = heredoc.Doc(`
	package circuits

	circuit: flip: {
		qubits: 1
		gates: [{kind: "paulix", qubits: [0]}]
	}

	circuit: sweep: {
		qubits: 3
		capacity: 4
		seed: 5
		superposition: [0, 1, 2]
	}
`)

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// decodeResponse decodes a CLIResponse whose data is unmarshalled into data.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		Status        string          `json:"status"`
		RunID         string          `json:"run_id"`
		EngineVersion string          `json:"engine_version"`
		Data          json.RawMessage `json:"data"`
		Error         *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, RunID: raw.RunID, EngineVersion: raw.EngineVersion, Error: raw.Error}
}
