package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/store"
)

// maxReportedDiffs caps the per-basis differences a replay reports.
const maxReportedDiffs = 8

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string
	Circuit  string // optional - defaults to the recorded circuit name
	Workers  int
}

// ReplayResult holds the outcome of replaying one recorded run.
type ReplayResult struct {
	RunID         string   `json:"run_id"`
	Circuit       string   `json:"circuit"`
	CircuitHash   string   `json:"circuit_hash"`
	Capacity      int      `json:"capacity"`
	Seed          uint64   `json:"seed"`
	Reference     bool     `json:"reference,omitempty"`
	Entries       int      `json:"entries"`
	Deterministic bool     `json:"deterministic"`
	Differences   []string `json:"differences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <path>",
		Short: "Re-execute a recorded run and verify determinism",
		Long: `Re-execute a recorded run and verify it reproduces the same final state.

The circuit is recompiled from <path> and must hash to the recorded circuit
hash. It is then run again with the recorded capacity and seed, and the
final state is compared entry by entry, bit for bit, with the stored one.

Exit codes:
  0 - The replay reproduced the recorded state
  1 - The state diverged or the circuit changed
  2 - Command error (database not found, unknown run, etc.)

Examples:
  sparsesim replay ./circuits --run 0190a6c2-... --db ./runs.db
  sparsesim replay ./circuits/grover.cue --run 0190a6c2-... --db ./runs.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run to replay (required)")
	_ = cmd.MarkFlagRequired("run")
	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "circuit name (defaults to the recorded one)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "goroutines for per-entry gate work on large states (0 = GOMAXPROCS)")

	return cmd
}

func runReplay(opts *ReplayOptions, path string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	recorded, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, sql.ErrNoRows) {
		return formatter.Fail(ExitCommandError, ErrCodeRunNotFound, fmt.Sprintf("run %s not found", opts.RunID), nil)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
	}
	want, err := st.ReadSnapshot(ctx, opts.RunID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read snapshot", err)
	}

	name := opts.Circuit
	if name == "" {
		name = recorded.CircuitName
	}
	p, err := selectProgram(path, name)
	if err != nil {
		return failLoad(formatter, err)
	}

	program := *p
	program.Seed = recorded.Seed
	program.Capacity = recorded.Capacity

	hash, err := ir.CircuitHash(program.Circuit)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to hash circuit", err)
	}
	if hash != recorded.CircuitHash {
		return formatter.Fail(ExitFailure, ErrCodeHashChanged,
			fmt.Sprintf("circuit %q hashes to %s, run %s recorded %s", program.Name, hash, recorded.ID, recorded.CircuitHash), nil)
	}

	logger.Info("replaying run", "run_id", recorded.ID, "circuit", program.Name,
		"capacity", program.Capacity, "seed", program.Seed, "reference", recorded.Reference)

	rs := runSettings{Capacity: program.Capacity, Workers: opts.Workers, Reference: recorded.Reference}
	replayed, err := executeProgram(&program, rs, recorded.ID, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRunFailed, "replay failed", err)
	}

	diffs := diffSnapshots(want, replayed.Snapshot)
	result := ReplayResult{
		RunID:         recorded.ID,
		Circuit:       program.Name,
		CircuitHash:   hash,
		Capacity:      program.Capacity,
		Seed:          program.Seed,
		Reference:     recorded.Reference,
		Entries:       len(replayed.Snapshot),
		Deterministic: len(diffs) == 0,
		Differences:   diffs,
	}

	if opts.Format == "json" {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// diffSnapshots lists where got differs from want. Both must be ordered by
// basis. Amplitudes are compared exactly.
func diffSnapshots(want, got []ir.Entry) []string {
	var diffs []string
	add := func(format string, args ...any) {
		if len(diffs) < maxReportedDiffs {
			diffs = append(diffs, fmt.Sprintf(format, args...))
		}
	}

	if len(want) != len(got) {
		add("entry count: recorded %d, replayed %d", len(want), len(got))
	}

	wantByBasis := make(map[ir.Basis]ir.Amplitude, len(want))
	for _, e := range want {
		wantByBasis[e.Basis] = e.Amplitude
	}
	seen := make(map[ir.Basis]bool, len(got))
	for _, e := range got {
		seen[e.Basis] = true
		a, ok := wantByBasis[e.Basis]
		switch {
		case !ok:
			add("%s: not recorded, replayed (%g, %g)", e.Basis, e.Amplitude.Re, e.Amplitude.Im)
		case a != e.Amplitude:
			add("%s: recorded (%g, %g), replayed (%g, %g)", e.Basis, a.Re, a.Im, e.Amplitude.Re, e.Amplitude.Im)
		}
	}
	for _, e := range want {
		if !seen[e.Basis] {
			add("%s: recorded (%g, %g), not replayed", e.Basis, e.Amplitude.Re, e.Amplitude.Im)
		}
	}
	return diffs
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	if result.Deterministic {
		return formatter.Report(result.RunID, result, nil)
	}

	err := formatter.Report(result.RunID, result, &CLIError{
		Code:    ErrCodeDivergence,
		Message: "replayed state differs from the recorded state",
	})
	if err != nil {
		return err
	}
	// Divergence = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}

// outputReplayText outputs the replay result as text.
func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer

	fmt.Fprintln(w, renderSummary("Replay "+result.RunID, []field{
		{"circuit", result.Circuit},
		{"hash", result.CircuitHash},
		{"capacity", capacityLabel(result.Capacity)},
		{"seed", fmt.Sprint(result.Seed)},
		{"entries", fmt.Sprint(result.Entries)},
	}))
	fmt.Fprintln(w)

	if result.Deterministic {
		fmt.Fprintf(w, "%s Replay reproduced the recorded state\n", passMark())
		return nil
	}

	for _, d := range result.Differences {
		fmt.Fprintf(w, "  %s\n", d)
	}
	fmt.Fprintf(w, "%s Replayed state differs from the recorded state\n", failMark())
	// Divergence = exit code 1
	return NewExitError(ExitFailure, "determinism verification failed")
}
