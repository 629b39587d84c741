package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/tabula/internal/core/domain"
)

// previewRows is the number of rows printed when no output file is given.
const previewRows = 20

// maxCellWidth truncates long cells in previews.
const maxCellWidth = 40

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// emitTable saves t to outPath when one is given and previews it otherwise.
func emitTable(cmd *cobra.Command, t *domain.Table, outPath string) error {
	if t == nil {
		cmd.Println(mutedStyle.Render("No table."))
		return nil
	}
	if outPath == "" {
		renderTable(cmd.OutOrStdout(), t, previewRows)
		return nil
	}
	if tableService == nil {
		return errTablesUnavailable
	}
	if err := tableService.Save(t, outPath); err != nil {
		return err
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("Wrote %d rows to %s", t.Len(), outPath)))
	return nil
}

// renderTable prints at most limit rows of t as a bordered grid.
func renderTable(w io.Writer, t *domain.Table, limit int) {
	if t.IsEmpty() && t.Width() == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No rows."))
		return
	}

	n := min(t.Len(), limit)
	rows := make([][]string, 0, n)
	for i := range n {
		row := make([]string, t.Width())
		for j, col := range t.Columns() {
			row[j] = truncate(domain.FormatValue(t.Value(i, col)), maxCellWidth)
		}
		rows = append(rows, row)
	}

	grid := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(t.Columns()...).
		Rows(rows...)

	fmt.Fprintln(w, grid.Render())
	if rest := t.Len() - n; rest > 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("... %d more rows", rest)))
	}
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d rows x %d columns", t.Len(), t.Width())))
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// loadTable reads a local table file through the table service.
func loadTable(path, sheet string) (*domain.Table, error) {
	if tableService == nil {
		return nil, errTablesUnavailable
	}
	return tableService.Load(path, sheet)
}
