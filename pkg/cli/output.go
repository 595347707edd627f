package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// out is where command output goes; tests swap it
var out io.Writer = os.Stdout

func PrintSuccess(msg string) {
	fmt.Fprintf(out, "  %s %s\n", SuccessStyle.Render(SymbolSuccess), msg)
}

func PrintSuccessf(format string, args ...interface{}) {
	PrintSuccess(fmt.Sprintf(format, args...))
}

// PrintError prints an error message with a red X
func PrintError(err error) {
	fmt.Fprintf(out, "  %s %s\n", ErrorStyle.Render(SymbolError), ErrorStyle.Render(err.Error()))
}

func PrintWarning(msg string) {
	fmt.Fprintf(out, "  %s %s\n", WarningStyle.Render(SymbolWarning), WarningStyle.Render(msg))
}

func PrintInfo(msg string) {
	fmt.Fprintf(out, "  %s %s\n", InfoStyle.Render(SymbolInfo), msg)
}

func PrintInfof(format string, args ...interface{}) {
	PrintInfo(fmt.Sprintf(format, args...))
}

// PrintHeader prints a section header
func PrintHeader(title string) {
	fmt.Fprintf(out, "\n  %s\n\n", BoldStyle.Render(title))
}

// PrintKeyValue prints a key-value pair with consistent alignment
func PrintKeyValue(key, value string) {
	fmt.Fprintf(out, "  %s %s\n", KeyStyle.Render(key), value)
}

// Table is a column-aligned listing. Widths are measured in terminal cells so
// Japanese text lines up.
type Table struct {
	Headers []string
	Rows    [][]string
	Widths  []int
}

func NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &Table{
		Headers: headers,
		Widths:  widths,
	}
}

// AddRow adds a row, padding or dropping cells to match the header count
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.Headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
			if w := lipgloss.Width(cells[i]); w > t.Widths[i] {
				t.Widths[i] = w
			}
		}
	}
	t.Rows = append(t.Rows, row)
}

// Print renders the table
func (t *Table) Print() {
	if len(t.Rows) == 0 {
		return
	}

	fmt.Fprint(out, "  ")
	for i, h := range t.Headers {
		fmt.Fprint(out, TableHeaderStyle.Width(t.Widths[i]+2).Render(h))
	}
	fmt.Fprintln(out)

	fmt.Fprint(out, "  ")
	for i := range t.Headers {
		fmt.Fprint(out, DimStyle.Render(strings.Repeat("─", t.Widths[i])), "  ")
	}
	fmt.Fprintln(out)

	for _, row := range t.Rows {
		fmt.Fprint(out, "  ")
		for i, cell := range row {
			fmt.Fprint(out, TableCellStyle.Width(t.Widths[i]+2).Render(cell))
		}
		fmt.Fprintln(out)
	}
}

// Truncate shortens s to maxLen runes, marking the cut with an ellipsis
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
