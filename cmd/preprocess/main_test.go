package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
)

func TestBuildJob(t *testing.T) {
	opts, err := parseFlags([]string{
		"-source", "heart.xlsx",
		"-strategy", "drop-rows, fill-mean",
		"-export", "out/a.csv,out/b.json,sqlite",
		"-table", "heart",
	})
	require.NoError(t, err)

	job, err := buildJob(opts)
	require.NoError(t, err)
	assert.Equal(t, model.Source{URL: "heart.xlsx"}, job.Source)
	assert.Equal(t, []model.Strategy{model.StrategyDropRows, model.StrategyFillMean}, job.Strategies)
	assert.Equal(t, []model.Export{
		{Format: "csv", Path: "out/a.csv"},
		{Format: "json", Path: "out/b.json"},
		{Format: "sqlite", Table: "heart"},
	}, job.Exports)
	assert.True(t, needsStore(job.Exports))
}

func TestParseFlagsTimeout(t *testing.T) {
	opts, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultRunTimeout, opts.timeout)

	opts, err = parseFlags([]string{"-timeout", "90s"})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, opts.timeout)

	opts, err = parseFlags([]string{"-timeout", "soon"})
	require.NoError(t, err)
	assert.Equal(t, defaultRunTimeout, opts.timeout)
}

func TestBuildJobRejectsBadInput(t *testing.T) {
	_, err := buildJob(options{source: "x.csv", strategies: "fill-median"})
	assert.ErrorContains(t, err, "unknown strategy")

	_, err = buildJob(options{source: "x.csv", exports: "out.parquet"})
	assert.ErrorContains(t, err, "unknown file type")
}

func TestWriteRecordsShowsPlaceholder(t *testing.T) {
	ds := model.NewDataset([]string{"age", "BMI"}, []model.Record{
		{"age": model.Number(40), "BMI": model.Null()},
	})

	var buf bytes.Buffer
	writeRecords(&buf, ds)
	assert.Contains(t, buf.String(), "N/A")
	assert.Contains(t, buf.String(), "40")
	assert.Contains(t, buf.String(), "BMI")

	buf.Reset()
	writeRecords(&buf, model.NewDataset([]string{"age"}, nil))
	assert.Contains(t, buf.String(), "(no records)")
}

func TestPrintSummary(t *testing.T) {
	ds := model.NewDataset([]string{"age", "BMI"}, []model.Record{
		{"age": model.Number(40), "BMI": model.Null()},
		{"age": model.Number(50), "BMI": model.Number(25)},
	})
	result := pipeline.JobResult{
		Loaded: pipeline.LoadResult{Data: ds, Head: ds, Tail: ds, Stats: model.Stats{TotalRows: 2, TotalColumns: 2}, Missing: model.MissingReport{"age": 0, "BMI": 1}},
		Final:  model.Snapshot{ID: "s1", Strategy: model.StrategyFillDefault, Data: ds, Stats: model.Stats{TotalRows: 2, TotalColumns: 2}, Missing: model.MissingReport{}},
		Exports: []model.ExportResult{
			{Type: "csv", Path: "out.csv", RecordCount: 2, Success: true},
			{Type: "sqlite", Path: "dataset", Error: "boom"},
		},
	}

	var buf bytes.Buffer
	printSummary(&buf, result)
	out := buf.String()
	assert.Contains(t, out, "processed (fill-default)")
	assert.Contains(t, out, "Exported 2 records to out.csv")
	assert.Contains(t, out, "Export to dataset failed: boom")
}
