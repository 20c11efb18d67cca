package cli

import (
	"errors"
	"fmt"
	"io"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/sparsesim/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Circuits []string                   `json:"circuits,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate circuit definitions without running them",
		Long: `Validate CUE circuit definitions without simulating them.

Checks every circuit under the top-level "circuit" field against the
#Circuit schema, then checks gate arities, qubit ranges, adder and grover
ranges and the normalization of initial entries. All errors are reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	value, fileCount, err := LoadCUE(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputValidateError(formatter, loadErr.Code, loadErr.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", fileCount, path)

	names, validationErrors := validateAll(value, formatter)
	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter, names)
}

// validateAll checks every circuit in the CUE value and returns the names of
// the circuits found along with all errors.
func validateAll(value cue.Value, formatter *OutputFormatter) ([]string, []compiler.ValidationError) {
	var (
		names     []string
		allErrors []compiler.ValidationError
	)

	circuits := value.LookupPath(cue.ParsePath(compiler.CircuitsField))
	if circuits.Exists() {
		iter, err := circuits.Fields()
		if err != nil {
			return nil, []compiler.ValidationError{{
				Field:   compiler.CircuitsField,
				Message: err.Error(),
				Code:    ErrCodeGeneric,
			}}
		}
		for iter.Next() {
			name := iter.Selector().Unquoted()
			names = append(names, name)
			formatter.VerboseLog("Validating circuit: %s", name)
			allErrors = append(allErrors, validateCircuit(name, iter.Value())...)
		}
	}

	if len(names) == 0 {
		allErrors = append(allErrors, compiler.ValidationError{
			Field:   compiler.CircuitsField,
			Message: "no circuits found",
			Code:    ErrCodeNoCircuits,
		})
	}

	return names, allErrors
}

// validateCircuit runs schema, then range, then build checks on one circuit.
// Later stages only run when the earlier ones pass.
func validateCircuit(name string, v cue.Value) []compiler.ValidationError {
	prefix := compiler.CircuitsField + "." + name

	def, err := compiler.DecodeCircuit(v)
	if err != nil {
		return []compiler.ValidationError{compileValidationError(prefix, err)}
	}

	errs := compiler.Validate(def)
	line := getLineFromCuePos(v.Pos())
	for i := range errs {
		errs[i].Field = prefix + "." + errs[i].Field
		if errs[i].Line == 0 {
			errs[i].Line = line
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if _, err := compiler.CompileCircuit(v); err != nil {
		return []compiler.ValidationError{compileValidationError(prefix, err)}
	}
	return nil
}

// compileValidationError converts a compile error to a validation error.
func compileValidationError(prefix string, err error) compiler.ValidationError {
	var cErr *compiler.CompileError
	if errors.As(err, &cErr) {
		return compiler.ValidationError{
			Field:   prefix,
			Message: cErr.Message,
			Code:    MapFieldToErrorCode(cErr.Field),
			Line:    getLineFromCuePos(cErr.Pos),
		}
	}
	return compiler.ValidationError{
		Field:   prefix,
		Message: err.Error(),
		Code:    ErrCodeGeneric,
	}
}

// getLineFromCuePos extracts line number from a token.Pos.
func getLineFromCuePos(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, names []string) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Circuits: names})
	}

	fmt.Fprintf(formatter.Writer, "%s %d circuit(s) valid\n", passMark(), len(names))
	for _, name := range names {
		fmt.Fprintf(formatter.Writer, "  %s\n", name)
	}
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Load errors are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}
		if err := writeJSON(formatter.Writer, response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintf(formatter.Writer, "%s Validation failed\n", failMark())
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidatePath validates all circuits under path.
// This is a helper function for external callers.
func ValidatePath(path string) ([]compiler.ValidationError, error) {
	value, _, err := LoadCUE(path)
	if err != nil {
		return nil, err
	}

	silentFormatter := &OutputFormatter{Format: "text", Verbose: false, Writer: io.Discard}
	_, errs := validateAll(value, silentFormatter)
	return errs, nil
}
