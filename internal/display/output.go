// Package display renders sessions and result tables for the terminal.
package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/itsmostafa/modelrun/internal/model"
	"github.com/itsmostafa/modelrun/internal/report"
	"github.com/itsmostafa/modelrun/internal/script"
	"github.com/itsmostafa/modelrun/internal/store"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// warnStyle for partial results
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// headerBoxStyle for the session header
	headerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)

	// cellStyle pads table cells
	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	// headerCellStyle for the period axis row
	headerCellStyle = cellStyle.Bold(true).Foreground(lipgloss.Color("33"))
)

// SessionInfo is shown in the session header.
type SessionInfo struct {
	ID     string
	Model  string
	Data   string
	Engine string
}

// FormatHeader renders the session header box
func FormatHeader(w io.Writer, info SessionInfo) {
	modelName := info.Model
	if modelName == "" {
		modelName = "none"
	}
	content := fmt.Sprintf("%s %s  %s %s\n%s %s\n%s %s",
		dimStyle.Render("Model:"), titleStyle.Render(modelName),
		dimStyle.Render("Engine:"), titleStyle.Render(info.Engine),
		dimStyle.Render("Data:"), info.Data,
		dimStyle.Render("Session:"), dimStyle.Render(info.ID),
	)
	fmt.Fprintln(w, headerBoxStyle.Render(content))
}

// FormatModelResult renders the outcome of a binding run
func FormatModelResult(w io.Writer, result *model.Result) {
	status := successStyle.Render("OK")
	if result.Partial {
		status = warnStyle.Render("PARTIAL")
	}
	fmt.Fprintf(w, "%s %s %s  %s %d bound, %d harvested\n",
		status, dimStyle.Render("model"), titleStyle.Render(result.Model),
		dimStyle.Render("->"), len(result.Bound), len(result.Harvested))
	if result.RunErr != nil {
		fmt.Fprintln(w, warnStyle.Render(result.RunErr.Error()))
	}
}

// FormatScriptResult renders script output and the names it did not persist
func FormatScriptResult(w io.Writer, source string, result *script.Result) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		successStyle.Render("OK"), dimStyle.Render("script"), source,
		dimStyle.Render(fmt.Sprintf("(%s, %s)", result.Engine, result.Duration.Round(1e6))))
	if result.Output != "" {
		fmt.Fprint(w, result.Output)
		if !strings.HasSuffix(result.Output, "\n") {
			fmt.Fprintln(w)
		}
	}
	if len(result.Dropped) > 0 {
		fmt.Fprintln(w, dimStyle.Render("not kept: "+strings.Join(result.Dropped, ", ")))
	}
}

// FormatList renders a titled list of names
func FormatList(w io.Writer, title string, items []string) {
	fmt.Fprintln(w, titleStyle.Render(title))
	if len(items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  %s\n", item)
	}
}

// FormatTable renders the store as a table. The leading integer series (the
// period axis) becomes the header with its name blanked; numbers in the
// other rows are rounded for display and right-aligned.
func FormatTable(w io.Writer, s *store.Store) {
	fmt.Fprintln(w, Table(s))
}

// Table builds the rendered table string.
func Table(s *store.Store) string {
	rows := report.Rows(s)
	if len(rows) == 0 {
		return dimStyle.Render("(no variables)")
	}

	var headers []string
	if v, ok := s.Get(rows[0].Name); ok && v.Kind() == store.KindIntegerSeries {
		headers = append([]string{""}, rows[0].Cells...)
		rows = rows[1:]
	}

	body := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, 0, len(row.Cells)+1)
		cells = append(cells, row.Name)
		for _, cell := range row.Cells {
			cells = append(cells, FormatCell(cell))
		}
		body[i] = cells
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(dimStyle).
		Rows(body...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCellStyle.Align(lipgloss.Right)
			case col == 0:
				return cellStyle.Align(lipgloss.Left)
			default:
				return cellStyle.Align(lipgloss.Right)
			}
		})
	if headers != nil {
		t = t.Headers(headers...)
	}
	return t.String()
}
