package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/roach88/sparsesim/internal/ir"
	"github.com/roach88/sparsesim/internal/store"
)

// maxTableRows caps the state table; the remainder is summarized.
const maxTableRows = 64

// Lipgloss styles used by text output.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))

	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#9ece6a"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f7768e"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#bb9af7")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

func passMark() string { return okStyle.Render("✓") }
func failMark() string { return failStyle.Render("✗") }

// newTable returns a bordered table with the shared header and cell styles.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// renderEntries renders a state snapshot as a basis/amplitude table.
func renderEntries(entries []ir.Entry) string {
	t := newTable("basis", "re", "im", "|a|²")
	for i, e := range entries {
		if i == maxTableRows {
			break
		}
		t.Row(
			e.Basis.String(),
			ir.FormatAmplitude(e.Amplitude.Re),
			ir.FormatAmplitude(e.Amplitude.Im),
			ir.FormatAmplitude(e.Amplitude.Norm2()),
		)
	}

	out := t.String()
	if n := len(entries) - maxTableRows; n > 0 {
		out += "\n" + dimStyle.Render(fmt.Sprintf("... %d more entries", n))
	}
	return out
}

// renderRuns renders recorded runs one per row.
func renderRuns(runs []store.Run) string {
	t := newTable("id", "circuit", "qubits", "gates", "capacity", "entries", "evicted", "norm", "fidelity error")
	for _, r := range runs {
		t.Row(
			r.ID,
			r.CircuitName,
			strconv.Itoa(r.Qubits),
			strconv.Itoa(r.Gates),
			capacityLabel(r.Capacity),
			strconv.Itoa(r.Entries),
			strconv.Itoa(r.Evicted),
			ir.FormatAmplitude(r.Norm),
			fidelityLabel(r.FidelityError),
		)
	}
	return t.String()
}

// field is one labelled line of a summary block.
type field struct {
	label string
	value string
}

// renderSummary renders a title followed by aligned label/value lines.
func renderSummary(title string, fields []field) string {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label))
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	for _, f := range fields {
		sb.WriteString("\n  ")
		sb.WriteString(labelStyle.Render(f.label))
		sb.WriteString(strings.Repeat(" ", width-len(f.label)+2))
		sb.WriteString(f.value)
	}
	return sb.String()
}

// runFields lists the summary lines of a recorded run.
func runFields(r store.Run) []field {
	fields := []field{
		{"run", r.ID},
		{"circuit", r.CircuitName},
		{"hash", r.CircuitHash},
		{"qubits", strconv.Itoa(r.Qubits)},
		{"gates", strconv.Itoa(r.Gates)},
		{"capacity", capacityLabel(r.Capacity)},
		{"seed", strconv.FormatUint(r.Seed, 10)},
		{"entries", strconv.Itoa(r.Entries)},
		{"peak", strconv.Itoa(r.PeakEntries)},
		{"evicted", strconv.Itoa(r.Evicted)},
		{"norm", ir.FormatAmplitude(r.Norm)},
		{"duration", r.Duration.Round(time.Microsecond).String()},
	}
	if r.Reference {
		fields = append(fields, field{"role", "reference"})
	}
	if r.ReferenceID != "" {
		fields = append(fields,
			field{"reference", r.ReferenceID},
			field{"fidelity error", fidelityLabel(r.FidelityError)},
		)
	}
	return fields
}

func capacityLabel(capacity int) string {
	if capacity <= 0 {
		return "unbounded"
	}
	return strconv.Itoa(capacity)
}

func fidelityLabel(fe *float64) string {
	if fe == nil {
		return "-"
	}
	return ir.FormatAmplitude(*fe)
}
