package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mangaeditor/internal/rows"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, body [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, line := range body {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(line) {
				r[i] = line[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    48,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderRows draws a snapshot with a marker on the selected row.
func renderRows(snapshot []rows.Row, selected int64, hasSelection bool) string {
	body := make([][]string, 0, len(snapshot))
	for _, row := range snapshot {
		marker := ""
		if hasSelection && row.ID == selected {
			marker = "*"
		}
		body = append(body, []string{
			marker,
			strconv.FormatInt(row.ID, 10),
			row.MediaPath,
			row.Text,
			row.Translation,
		})
	}
	return renderTable(
		[]string{"", "ID", "Media path", "Text", "Translation"},
		body,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

// renderRecords draws service records; NULL columns render as "-".
func renderRecords(records []rows.Record) string {
	body := make([][]string, 0, len(records))
	for _, rec := range records {
		body = append(body, []string{
			strconv.FormatInt(rec.ID, 10),
			nullable(rec.MediaPath),
			nullable(rec.Text),
			nullable(rec.Translation),
		})
	}
	return renderTable(
		[]string{"ID", "Media path", "Text", "Translation"},
		body,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func nullable(value *string) string {
	if value == nil {
		return "-"
	}
	return *value
}
