package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/boardroom/internal/view"
	"github.com/mesh-intelligence/boardroom/pkg/types"
)

// maxCell bounds the width of a table cell.
const maxCell = 40

// printTable writes rows under header as aligned columns, trimming the
// padding tabwriter leaves at line ends.
func printTable(w io.Writer, header []string, rows [][]string) error {
	var sb strings.Builder
	tw := tabwriter.NewWriter(&sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(sb.String(), "\n"), "\n") {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

// recordRows renders the visible columns of records. Enum codes and tag
// items with an option list are shown through their translated labels.
func recordRows(schema types.Schema, records []types.Record, tr types.Translator) (header []string, rows [][]string) {
	cols := schema.Visible()
	header = make([]string, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(tr.T(c.Label))
	}
	labels := view.OptionLabels(tr)
	for _, r := range records {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = truncate(cell(c, r[c.Key], labels))
		}
		rows = append(rows, row)
	}
	return header, rows
}

func cell(c types.Column, v any, labels types.Translator) string {
	switch {
	case c.Type == types.ValueTypeArray && c.IsEnum():
		items := types.ToStrings(v)
		for i, item := range items {
			items[i] = labels.T(item)
		}
		return strings.Join(items, types.ListSeparator)
	case c.IsEnum():
		return labels.T(types.Stringify(v))
	default:
		return types.Stringify(v)
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxCell {
		return s
	}
	return string(r[:maxCell-3]) + "..."
}
