package report

import (
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Metric is one named evaluation value.
type Metric struct {
	Name  string
	Value float64
}

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// WriteMetrics renders metrics in the given order.
func WriteMetrics(w io.Writer, metrics []Metric) error {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{m.Name, formatValue(m.Value)})
	}

	table := newTable(w)
	table.Header([]string{"metric", "value"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

// WriteImportances renders feature importances, largest first. Ties keep
// column order.
func WriteImportances(w io.Writer, columns []string, importances []float64) error {
	order := make([]int, len(columns))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return importances[order[a]] > importances[order[b]]
	})

	rows := make([][]string, 0, len(order))
	for _, i := range order {
		rows = append(rows, []string{columns[i], formatValue(importances[i])})
	}

	table := newTable(w)
	table.Header([]string{"feature", "importance"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
