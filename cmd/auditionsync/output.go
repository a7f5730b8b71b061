package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// column describes one table column. Numeric columns set right.
type column struct {
	title string
	right bool
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, 0, len(columns))
	configs := make([]table.ColumnConfig, 0, len(columns))
	for i, c := range columns {
		header = append(header, c.title)
		cc := table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft}
		if c.right {
			cc.Align = text.AlignRight
		}
		configs = append(configs, cc)
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, cells := range rows {
		// Short rows are padded so every column renders.
		row := make(table.Row, len(columns))
		for i := range row {
			row[i] = ""
			if i < len(cells) {
				row[i] = cells[i]
			}
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}

func shouldColorize(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// colorStatus tints a run status for terminals.
func colorStatus(status string, colorize bool) string {
	if !colorize {
		return status
	}
	color := text.FgYellow
	switch status {
	case "succeeded":
		color = text.FgGreen
	case "failed":
		color = text.FgRed
	}
	return color.Sprint(status)
}

// writeJSON encodes v as indented JSON. Commands pass cmd.OutOrStdout().
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
