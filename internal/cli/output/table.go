package output

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Table holds tabular data for terminal rendering.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table with aligned columns.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if len(t.Headers) > 0 {
		writeTabbed(tw, t.Headers)
	}
	for _, row := range t.Rows {
		writeTabbed(tw, row)
	}

	return tw.Flush()
}

func writeTabbed(w io.Writer, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		if cell == "" {
			cell = "-"
		}
		fmt.Fprint(w, cell)
	}
	fmt.Fprintln(w)
}

// KeyValueTable builds a two-column FIELD/VALUE table from ordered pairs.
func KeyValueTable(pairs ...[2]string) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, p := range pairs {
		t.AddRow(p[0], p[1])
	}
	return t
}
