package main

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"scanpi/internal/history"
)

// renderHistoryTable formats past sessions for terminal output, newest
// first as delivered by the store.
func renderHistoryTable(entries []*history.Entry) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Started", "Status", "Pages", "Format", "DPI", "Output", "Uploaded"})

	for _, entry := range entries {
		tw.AppendRow(table.Row{
			entry.StartedAt.Local().Format(time.DateTime),
			string(entry.Status),
			entry.PageCount,
			entry.Format,
			entry.Resolution,
			entry.OutputPath,
			yesNo(entry.Uploaded),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	return tw.Render()
}
