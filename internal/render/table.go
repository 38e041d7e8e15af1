// Package render formats access collections as tables for the console.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"spitrace/internal/trace"
)

// UnknownArea labels accesses whose address resolved to no firmware region.
const UnknownArea = "Unknown area"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	rightStyle  = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
	delayStyle  = lipgloss.NewStyle().Padding(0, 1).Faint(true)
)

var accessHeaders = []string{"No.", "Address", "Size", "Type", "Info"}
var accessVerboseHeaders = []string{"Start [ns]", "End [ns]", "Duration [ns]", "Latency [ns]"}

var overviewHeaders = []string{"No.", "Lowest access", "Range", "Type", "Info"}
var overviewVerboseHeaders = []string{"Start [ns]", "Highest access"}

// AccessTable renders the access list in chronological order. Verbose adds
// the timing columns. Gaps above the time-block threshold are rendered as
// separator rows so boot phases stand out.
func AccessTable(accesses trace.AccessList, verbose bool) string {
	headers := accessHeaders
	if verbose {
		headers = append(append([]string{}, headers...), accessVerboseHeaders...)
	}

	t := newTable(headers)
	for _, a := range accesses {
		addDelayRows(t, a.Latency, len(headers))

		row := []string{
			fmt.Sprintf("%d", a.InstrIndex),
			fmt.Sprintf("0x%.6x", a.Address),
			fmt.Sprintf("0x%.2x", a.Size),
			typeLabel(a.Type),
			strings.Join(a.Info, " "),
		}
		if verbose {
			row = append(row,
				fmt.Sprintf("%d", a.StartTime),
				fmt.Sprintf("%d", a.EndTime),
				fmt.Sprintf("%d", a.Duration),
				fmt.Sprintf("%d", a.Latency),
			)
		}
		t.Row(row...)
	}
	return t.Render()
}

// OverviewTable renders the reduced overview rows.
func OverviewTable(rows []*trace.OverviewRow, verbose bool) string {
	headers := overviewHeaders
	if verbose {
		headers = append(append([]string{}, headers...), overviewVerboseHeaders...)
	}

	t := newTable(headers)
	for _, r := range rows {
		a := r.Access
		addDelayRows(t, a.Latency, len(headers))

		row := []string{
			fmt.Sprintf("%d", a.InstrIndex),
			fmt.Sprintf("0x%.6x", r.LowestAccess),
			fmt.Sprintf("0x%.6x", r.HighestAccess-r.LowestAccess),
			typeLabel(a.Type),
			strings.Join(a.Info, " "),
		}
		if verbose {
			row = append(row,
				fmt.Sprintf("%d", a.StartTime),
				fmt.Sprintf("0x%.6x", r.HighestAccess),
			)
		}
		t.Row(row...)
	}
	return t.Render()
}

func newTable(headers []string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col >= 5: // timing columns
				return rightStyle
			default:
				return cellStyle
			}
		})
}

// addDelayRows inserts a separator when the access follows a significant
// gap, mirroring the overview's time-block heuristic.
func addDelayRows(t *table.Table, latency int64, width int) {
	latencyUs := latency / 1000
	if latencyUs <= trace.TimeBlockLatencyThreshold {
		return
	}
	blank := make([]string, width)
	delay := make([]string, width)
	delay[3] = delayStyle.Render(fmt.Sprintf("~ %d µs delay ~", latencyUs))
	t.Row(blank...)
	t.Row(delay...)
	t.Row(blank...)
}

func typeLabel(typ string) string {
	if typ == "" {
		return UnknownArea
	}
	return typ
}
