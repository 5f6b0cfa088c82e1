package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. Numeric columns are right-aligned.
type column struct {
	title   string
	numeric bool
}

// charColumns lays out CharRows under CharHeaders.
var charColumns = []column{
	{title: CharHeaders[0]},
	{title: CharHeaders[1], numeric: true},
	{title: CharHeaders[2], numeric: true},
	{title: CharHeaders[3], numeric: true},
	{title: CharHeaders[4], numeric: true},
}

// formatTable renders rows under a header and a dashed rule, sizing each
// column to its widest cell in terminal cells.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := range cols {
			widths[i] = max(widths[i], runewidth.StringWidth(cell(row, i)))
		}
	}

	header := make([]string, len(cols))
	rule := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
		rule[i] = strings.Repeat("-", widths[i])
	}
	lines := make([]string, 0, len(rows)+2)
	lines = append(lines, joinCells(cols, widths, header), joinCells(cols, widths, rule))
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		if c.numeric {
			cells[i] = runewidth.FillLeft(cell(row, i), widths[i])
		} else {
			cells[i] = runewidth.FillRight(cell(row, i), widths[i])
		}
	}
	return strings.TrimRight(strings.Join(cells, "  "), " ")
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
