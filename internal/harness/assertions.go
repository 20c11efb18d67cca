package harness

import (
	"fmt"
	"math"
	"strings"

	"github.com/roach88/sparsesim/internal/ir"
)

// maxListedEntries caps how many entries an AssertionError prints.
const maxListedEntries = 16

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string     // Assertion type for categorization
	Expected string     // Human-readable expected outcome
	Actual   string     // Human-readable actual outcome
	Entries  []ir.Entry // Final state for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFinal state (%d entries):\n", len(e.Entries))
	for i, en := range e.Entries {
		if i == maxListedEntries {
			fmt.Fprintf(&buf, "  ... %d more\n", len(e.Entries)-i)
			break
		}
		fmt.Fprintf(&buf, "  %s  %s %s\n", en.Basis,
			ir.FormatAmplitude(en.Amplitude.Re), ir.FormatAmplitude(en.Amplitude.Im))
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns the
// failure messages in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertEntryCount:
		return assertEntryCount(result, a)
	case AssertMaxEntries:
		return assertMaxEntries(result, a)
	case AssertNorm:
		return assertNorm(result, a)
	case AssertAmplitude:
		return assertAmplitude(result, a)
	case AssertRegisterValue:
		return assertRegisterValue(result, a)
	case AssertFidelityError:
		return assertFidelityError(result, a)
	case AssertUnique:
		return assertUnique(result)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func tolerance(a Assertion) float64 {
	if a.Tolerance == 0 {
		return DefaultTolerance
	}
	return a.Tolerance
}

func assertEntryCount(result *Result, a Assertion) error {
	if len(result.Entries) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertEntryCount,
		Expected: fmt.Sprintf("%d entries", a.Count),
		Actual:   fmt.Sprintf("%d entries", len(result.Entries)),
		Entries:  result.Entries,
	}
}

func assertMaxEntries(result *Result, a Assertion) error {
	if len(result.Entries) <= a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertMaxEntries,
		Expected: fmt.Sprintf("at most %d entries", a.Count),
		Actual:   fmt.Sprintf("%d entries", len(result.Entries)),
		Entries:  result.Entries,
	}
}

func assertNorm(result *Result, a Assertion) error {
	if math.Abs(result.Norm-*a.Value) <= tolerance(a) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNorm,
		Expected: fmt.Sprintf("norm %g ± %g", *a.Value, tolerance(a)),
		Actual:   fmt.Sprintf("norm %g", result.Norm),
		Entries:  result.Entries,
	}
}

// assertAmplitude treats an absent basis as amplitude zero.
func assertAmplitude(result *Result, a Assertion) error {
	want := ir.Amplitude{Re: a.Re, Im: a.Im}
	got := ir.Amplitude{}
	found := false
	for _, e := range result.Entries {
		if e.Basis.String() == a.Bits {
			got, found = e.Amplitude, true
			break
		}
	}

	tol := tolerance(a)
	if math.Abs(got.Re-want.Re) <= tol && math.Abs(got.Im-want.Im) <= tol {
		return nil
	}

	actual := "absent"
	if found {
		actual = fmt.Sprintf("%s = (%g, %g)", a.Bits, got.Re, got.Im)
	}
	return &AssertionError{
		Type:     AssertAmplitude,
		Expected: fmt.Sprintf("%s = (%g, %g) ± %g", a.Bits, want.Re, want.Im, tol),
		Actual:   actual,
		Entries:  result.Entries,
	}
}

func assertRegisterValue(result *Result, a Assertion) error {
	want := uint64(*a.Value)
	for _, e := range result.Entries {
		for _, q := range a.Qubits {
			if q < 0 || q >= e.Basis.Len() {
				return &AssertionError{
					Type:     AssertRegisterValue,
					Expected: fmt.Sprintf("qubits %v inside a %d-qubit register", a.Qubits, e.Basis.Len()),
					Actual:   fmt.Sprintf("qubit %d", q),
					Entries:  result.Entries,
				}
			}
		}
		if got := e.Basis.Value(a.Qubits); got != want {
			return &AssertionError{
				Type:     AssertRegisterValue,
				Expected: fmt.Sprintf("every entry encodes %d on qubits %v", want, a.Qubits),
				Actual:   fmt.Sprintf("%s encodes %d", e.Basis, got),
				Entries:  result.Entries,
			}
		}
	}
	return nil
}

func assertFidelityError(result *Result, a Assertion) error {
	if result.FidelityError == nil {
		return &AssertionError{
			Type:     AssertFidelityError,
			Expected: fmt.Sprintf("fidelity error %g", *a.Value),
			Actual:   "no reference run",
			Entries:  result.Entries,
		}
	}
	if math.Abs(*result.FidelityError-*a.Value) <= tolerance(a) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFidelityError,
		Expected: fmt.Sprintf("fidelity error %g ± %g", *a.Value, tolerance(a)),
		Actual:   fmt.Sprintf("fidelity error %g", *result.FidelityError),
		Entries:  result.Entries,
	}
}

func assertUnique(result *Result) error {
	seen := make(map[ir.Basis]bool, len(result.Entries))
	for _, e := range result.Entries {
		if seen[e.Basis] {
			return &AssertionError{
				Type:     AssertUnique,
				Expected: "distinct basis assignments",
				Actual:   fmt.Sprintf("%s stored twice", e.Basis),
				Entries:  result.Entries,
			}
		}
		seen[e.Basis] = true
	}
	return nil
}
