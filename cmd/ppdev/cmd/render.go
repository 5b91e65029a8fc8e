package cmd

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTracePPDev/pkg/session"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	highStyle   = cellStyle.Bold(true).Foreground(lipgloss.Color("2"))
	lowStyle    = cellStyle.Foreground(lipgloss.Color("8"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// printResult writes a result as a bit table: one column per line with the
// raw register bit and, for connector signals, the pin and line level.
func printResult(w io.Writer, res session.Result) {
	if res.Bits == nil {
		fmt.Fprintf(w, "%s: %s\n", res.Command, okStyle.Render("ok"))
		return
	}

	headers := make([]string, len(res.Lines))
	bits := make([]string, len(res.Lines))
	levels := make([]string, len(res.Lines))
	pins := make([]string, len(res.Lines))
	for i, l := range res.Lines {
		headers[i] = l.Label
		bits[i] = bitText(res.Bits[i])
		levels[i] = "-"
		pins[i] = "-"
		if l.Signal != nil {
			levels[i] = levelText(l.Signal.Level(res.Bits[i]))
			pins[i] = fmt.Sprintf("%d", l.Signal.Pin)
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(append([]string{""}, headers...)...).
		Row(append([]string{"bit"}, bits...)...).
		Row(append([]string{"level"}, levels...)...).
		Row(append([]string{"pin"}, pins...)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return headerStyle
			case row == 0 && res.Bits[col-1]:
				return highStyle
			case row == 0:
				return lowStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, res.Command)
	fmt.Fprintln(w, t.Render())
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("error: "+err.Error()))
}

func bitText(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func levelText(high bool) string {
	if high {
		return "H"
	}
	return "L"
}
