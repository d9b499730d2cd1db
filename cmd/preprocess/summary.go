package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
)

const missingPlaceholder = "N/A"

func printSummary(w io.Writer, result pipeline.JobResult) {
	loaded, final := result.Loaded, result.Final

	heading(w, "Statistics")
	stats := tablewriter.NewWriter(w)
	stats.SetHeader([]string{"", "Rows", "Columns", "Missing cells"})
	stats.Append([]string{"loaded", strconv.Itoa(loaded.Stats.TotalRows), strconv.Itoa(loaded.Stats.TotalColumns), strconv.Itoa(loaded.Missing.Total())})
	label := "processed"
	if final.Strategy != "" {
		label += " (" + string(final.Strategy) + ")"
	}
	stats.Append([]string{label, strconv.Itoa(final.Stats.TotalRows), strconv.Itoa(final.Stats.TotalColumns), strconv.Itoa(final.Missing.Total())})
	stats.Render()

	heading(w, "Missing Values")
	writeMissing(w, loaded.Missing, final.Missing, loaded.Data.Header)

	heading(w, "Head")
	writeRecords(w, loaded.Head)
	heading(w, "Tail")
	writeRecords(w, loaded.Tail)
	heading(w, "Processed Data")
	writeRecords(w, pipeline.Head(final.Data, pipeline.PreviewRows))

	for _, res := range result.Exports {
		if res.Success {
			fmt.Fprintf(w, "✅ Exported %d records to %s (%s)\n", res.RecordCount, res.Path, res.Type)
		} else {
			fmt.Fprintf(w, "❌ Export to %s failed: %s\n", res.Path, res.Error)
		}
	}
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, color.YellowString("\n%s", title))
}

func writeMissing(w io.Writer, before, after model.MissingReport, order []string) {
	columns := append([]string(nil), order...)
	if len(columns) == 0 {
		for c := range before {
			columns = append(columns, c)
		}
		sort.Strings(columns)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Column", "Loaded", "Processed"})
	for _, c := range columns {
		table.Append([]string{c, strconv.Itoa(before[c]), strconv.Itoa(after[c])})
	}
	table.Render()
}

// writeRecords prints every column of ds, absent values as N/A
func writeRecords(w io.Writer, ds model.Dataset) {
	columns := ds.Header
	if len(columns) == 0 {
		columns = ds.Schema()
	}
	if len(ds.Records) == 0 {
		fmt.Fprintln(w, "(no records)")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader(columns)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, rec := range ds.Records {
		row := make([]string, len(columns))
		for i, c := range columns {
			row[i] = rec[c].Text(missingPlaceholder)
		}
		table.Append(row)
	}
	table.Render()
}
