package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/store"
)

func TestReplayCommand_Deterministic(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	path := writeFile(t, dir, "two.cue", twoCircuitsCUE)
	recordRun(t, dbPath, path, []string{"run-1"}, "--circuit", "sweep", "--capacity", "3", "--seed", "11")

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--run", "run-1", path)
	require.NoError(t, err)

	var result ReplayResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.RunID)
	assert.True(t, result.Deterministic)
	assert.Empty(t, result.Differences)
	assert.Equal(t, "sweep", result.Circuit)
	assert.Equal(t, 3, result.Capacity)
	assert.Equal(t, uint64(11), result.Seed)
	assert.Equal(t, 3, result.Entries)

	text, _, err := execute(NewReplayCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--run", "run-1", "--workers", "4", path)
	require.NoError(t, err)
	assert.Contains(t, text, "Replay reproduced the recorded state")
}

func TestReplayCommand_CircuitChanged(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	recordRun(t, dbPath, writeFile(t, dir, "v1/bell.cue", bellCUE), []string{"run-1"})

	changed := writeFile(t, dir, "v2/bell.cue", heredoc.Doc(`
		package circuits

		circuit: bell: {
			qubits: 2
			prepare: [{kind: "hadamard", qubits: [1]}]
		}
	`))

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--run", "run-1", changed)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeHashChanged, resp.Error.Code)
}

func TestReplayCommand_Divergence(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "runs.db")
	path := writeFile(t, dir, "bell.cue", bellCUE)
	p, err := selectProgram(path, "")
	require.NoError(t, err)

	// Record a run of the same circuit with a tampered state.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	err = st.WriteRun(context.Background(), store.Run{
		ID:            "forged",
		CircuitName:   "bell",
		CircuitHash:   ir.MustCircuitHash(p.Circuit),
		Qubits:        2,
		Gates:         2,
		Entries:       1,
		Norm:          1,
		EngineVersion: ir.EngineVersion,
	}, []ir.Entry{{Basis: ir.MustParseBasis("01"), Amplitude: ir.Amplitude{Re: 1}}})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--run", "forged", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result ReplayResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDivergence, resp.Error.Code)
	assert.False(t, result.Deterministic)
	half := fmt.Sprintf("%g", ir.InvSqrt2)
	assert.Equal(t, []string{
		"entry count: recorded 1, replayed 2",
		"00: not recorded, replayed (" + half + ", 0)",
		"11: not recorded, replayed (" + half + ", 0)",
		"01: recorded (1, 0), not replayed",
	}, result.Differences)
}

func TestReplayCommand_UnknownRun(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bell.cue", bellCUE)

	out, _, err := execute(NewReplayCommand(&RootOptions{Format: "json"}), "--db", filepath.Join(dir, "runs.db"), "--run", "nope", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	resp := decodeResponse(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeRunNotFound, resp.Error.Code)
}

func TestDiffSnapshots(t *testing.T) {
	a := ir.Entry{Basis: ir.MustParseBasis("0"), Amplitude: ir.Amplitude{Re: 0.6}}
	b := ir.Entry{Basis: ir.MustParseBasis("1"), Amplitude: ir.Amplitude{Re: 0.8}}
	b2 := ir.Entry{Basis: ir.MustParseBasis("1"), Amplitude: ir.Amplitude{Re: 0.8, Im: 1e-17}}

	assert.Empty(t, diffSnapshots([]ir.Entry{a, b}, []ir.Entry{a, b}))
	assert.Equal(t, []string{"1: recorded (0.8, 0), replayed (0.8, 1e-17)"},
		diffSnapshots([]ir.Entry{a, b}, []ir.Entry{a, b2}))

	many := make([]ir.Entry, 20)
	for i := range many {
		many[i] = ir.Entry{Basis: ir.NewBasis(5).Flip(i%5), Amplitude: ir.Amplitude{Re: float64(i)}}
	}
	assert.Len(t, diffSnapshots(many, nil), maxReportedDiffs)
}
