package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/sparsesim/internal/ir"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Failed scenarios, invalid circuits or a diverged replay
	ExitCommandError = 2 // Unreadable paths, unknown circuits or database errors
)

// ExitError carries the process exit code out of a command's RunE.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode returns the code of the first ExitError in err's chain, or
// ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as JSON envelopes or text.
// Diagnostics go to ErrWriter so they never interleave with a JSON envelope.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// CLIResponse is the JSON envelope every command writes. Commands that
// report on a single recorded or replayed run also name it at the top
// level, with the engine version that produced the state.
type CLIResponse struct {
	Status        string    `json:"status"` // "ok" or "error"
	RunID         string    `json:"run_id,omitempty"`
	EngineVersion string    `json:"engine_version,omitempty"`
	Data          any       `json:"data,omitempty"`
	Error         *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"` // ErrCode* value
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes data in an "ok" envelope.
func (f *OutputFormatter) Success(data any) error {
	return writeJSON(f.Writer, CLIResponse{Status: "ok", Data: data})
}

// Report writes the envelope for a single run. A non-nil failure marks the
// envelope as an error while still carrying data, as a diverged replay does.
func (f *OutputFormatter) Report(runID string, data any, failure *CLIError) error {
	response := CLIResponse{
		Status:        "ok",
		RunID:         runID,
		EngineVersion: ir.EngineVersion,
		Data:          data,
	}
	if failure != nil {
		response.Status = "error"
		response.Error = failure
	}
	return writeJSON(f.Writer, response)
}

// Error writes an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return writeJSON(f.Writer, CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports an error in the configured format and returns an ExitError
// carrying exitCode.
func (f *OutputFormatter) Fail(exitCode int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, msg, nil)
	return WrapExitError(exitCode, message, err)
}

// VerboseLog writes a diagnostic line when verbose mode is on.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func writeJSON(w io.Writer, response CLIResponse) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
