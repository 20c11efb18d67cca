package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparsesim/internal/engine"
	"github.com/roach88/sparsesim/internal/fidelity"
	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Circuit   string
	Capacity  int
	Seed      uint64
	Workers   int
	Database  string
	Reference bool

	// RunIDs allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunReport is the result of the run command.
type RunReport struct {
	RunID         string          `json:"run_id"`
	Circuit       string          `json:"circuit"`
	CircuitHash   string          `json:"circuit_hash"`
	Qubits        int             `json:"qubits"`
	Capacity      int             `json:"capacity"`
	Seed          uint64          `json:"seed"`
	Workers       int             `json:"workers"`
	Stats         engine.Stats    `json:"stats"`
	Norm          float64         `json:"norm"`
	DurationNS    int64           `json:"duration_ns"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	FidelityError *float64        `json:"fidelity_error,omitempty"`
	Retained      *float64        `json:"retained,omitempty"`
	Entries       []SnapshotEntry `json:"entries"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{RootOptions: rootOpts})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <path>",
		Short: "Simulate a circuit",
		Long: `Compile a circuit definition and simulate it.

The path is a .cue file or a directory of .cue files defining circuits
under the top-level "circuit" field. With more than one circuit defined,
--circuit selects which to run. Flags override the values in the file.

--capacity bounds the number of stored amplitudes (0 = unbounded). With
--reference the circuit also runs unbounded and the L2 distance between
the two final states is reported, together with the share of the
reference's probability mass held on the surviving entries. With --db both runs are recorded.

Example:
  sparsesim run ./circuits/bell.cue
  sparsesim run ./circuits --circuit adder --capacity 64 --seed 7
  sparsesim run ./circuits/grover.cue --capacity 8 --reference --db ./runs.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Circuit, "circuit", "", "name of the circuit to run")
	cmd.Flags().IntVar(&opts.Capacity, "capacity", 0, "maximum stored amplitudes, 0 for unbounded")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "eviction tie-break seed")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "goroutines for per-entry gate work on large states (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite results database")
	cmd.Flags().BoolVar(&opts.Reference, "reference", false, "also run unbounded and report the fidelity error")

	return cmd
}

func runSimulation(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	p, err := selectProgram(path, opts.Circuit)
	if err != nil {
		return failLoad(formatter, err)
	}

	program := *p
	if cmd.Flags().Changed("capacity") {
		program.Capacity = opts.Capacity
	}
	if cmd.Flags().Changed("seed") {
		program.Seed = opts.Seed
	}

	ids := opts.RunIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}

	logger.Info("running circuit", "circuit", program.Name, "qubits", program.Qubits,
		"gates", program.Circuit.Len(), "capacity", program.Capacity, "seed", program.Seed)

	bounded, err := executeProgram(&program, runSettings{Capacity: program.Capacity, Workers: opts.Workers},
		ids.Generate(), logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeRunFailed, "simulation failed", err)
	}

	var reference *execution
	var retained *float64
	if opts.Reference {
		reference, err = executeProgram(&program, runSettings{Workers: opts.Workers, Reference: true},
			ids.Generate(), logger)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeRunFailed, "reference simulation failed", err)
		}
		fe, err := fidelity.Error(bounded.Snapshot, reference.Snapshot)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeRunFailed, "fidelity error", err)
		}
		bounded.Run.ReferenceID = reference.Run.ID
		bounded.Run.FidelityError = &fe
		r := fidelity.Retained(bounded.Snapshot, reference.Snapshot)
		retained = &r
	}

	if opts.Database != "" {
		if err := recordRuns(cmd.Context(), opts.Database, logger, bounded, reference); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to record run", err)
		}
	}

	report := RunReport{
		RunID:         bounded.Run.ID,
		Circuit:       bounded.Run.CircuitName,
		CircuitHash:   bounded.Run.CircuitHash,
		Qubits:        bounded.Run.Qubits,
		Capacity:      bounded.Run.Capacity,
		Seed:          bounded.Run.Seed,
		Workers:       bounded.Workers,
		Stats:         bounded.Stats,
		Norm:          bounded.Run.Norm,
		DurationNS:    bounded.Run.Duration.Nanoseconds(),
		ReferenceID:   bounded.Run.ReferenceID,
		FidelityError: bounded.Run.FidelityError,
		Retained:      retained,
		Entries:       snapshotEntries(bounded.Snapshot),
	}

	if opts.Format == "json" {
		return formatter.Report(report.RunID, report, nil)
	}

	w := cmd.OutOrStdout()
	fields := runFields(bounded.Run)
	if retained != nil {
		fields = append(fields, field{"retained", strconv.FormatFloat(*retained, 'f', 6, 64)})
	}
	fmt.Fprintln(w, renderSummary("Run "+bounded.Run.ID, fields))
	fmt.Fprintln(w)
	fmt.Fprintln(w, renderEntries(bounded.Snapshot))
	return nil
}

// recordRuns writes the bounded run and, when present, its reference run.
// The reference row is written first so the bounded row can point at it.
func recordRuns(ctx context.Context, path string, logger *slog.Logger, bounded, reference *execution) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if reference != nil {
		if err := st.WriteRun(ctx, reference.Run, reference.Snapshot); err != nil {
			return fmt.Errorf("reference run: %w", err)
		}
	}
	if err := st.WriteRun(ctx, bounded.Run, bounded.Snapshot); err != nil {
		return err
	}
	logger.Info("run recorded", "db", path, "run_id", bounded.Run.ID)
	return nil
}

// selectProgram loads path and picks the named circuit, or the only one.
func selectProgram(path, name string) (*ir.Program, error) {
	result, errs := LoadCircuits(path, LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	if name != "" {
		p, ok := result.Lookup(name)
		if !ok {
			return nil, &LoadError{
				Code:    ErrCodeUnknownCircuit,
				Message: fmt.Sprintf("circuit %q not found (have %s)", name, programNames(result.Programs)),
			}
		}
		return p, nil
	}

	if len(result.Programs) > 1 {
		return nil, &LoadError{
			Code:    ErrCodeAmbiguous,
			Message: fmt.Sprintf("%d circuits defined, choose one with --circuit (%s)", len(result.Programs), programNames(result.Programs)),
		}
	}
	return result.Programs[0], nil
}

func programNames(programs []*ir.Program) string {
	names := make([]string, len(programs))
	for i, p := range programs {
		names[i] = strconv.Quote(p.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// failLoad reports a loader error as a command error.
func failLoad(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		_ = formatter.Error(loadErr.Code, loadErr.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load circuits", err)
	}
	return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to load circuits", err)
}
