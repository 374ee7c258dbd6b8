package commands

import (
	"fmt"
	"io"

	"github.com/dyluth/sweep/pkg/layout"
	"github.com/olekukonko/tablewriter"
)

// thumbCol places the four thumb keys under the inner columns.
const thumbCol = 3

// renderLayer draws one layer as the physical key grid.
func renderLayer(w io.Writer, l layout.Layout, layer int) error {
	table := tablewriter.NewWriter(w)
	for row := 0; row < layout.NumRows; row++ {
		cells := make([]string, layout.NumCols)
		for col := 0; col < layout.NumCols; col++ {
			pos := row*layout.NumCols + col
			if row == layout.NumRows-1 {
				pos = layout.FirstThumb + col - thumbCol
				if pos < layout.FirstThumb || pos >= layout.NumKeys {
					continue
				}
			}
			cells[col] = l.Key(layer, pos).Token()
		}
		if err := table.Append(cells); err != nil {
			return err
		}
	}
	return table.Render()
}

// renderLayout draws every layer with a heading.
func renderLayout(w io.Writer, l layout.Layout) error {
	for i := 0; i < l.NumLayers(); i++ {
		fmt.Fprintf(w, "\nLayer %d:\n", i)
		if err := renderLayer(w, l, i); err != nil {
			return err
		}
	}
	return nil
}
