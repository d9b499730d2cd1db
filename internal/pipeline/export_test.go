package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"go-data-explorer/internal/model"
	"go-data-explorer/internal/store"
)

func exportSnapshot() model.Snapshot {
	ds := model.NewDataset([]string{"age", "BMI", "glucose"}, []model.Record{
		{"age": n(39), "BMI": n(26.97), "glucose": n(77)},
		{"age": n(46), "BMI": null, "glucose": n(0)},
	})
	return newSnapshot(ds, model.StrategyFillMean)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	count, err := WriteCSV(&buf, exportSnapshot().Data)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "age,BMI,glucose\n39,26.97,77\n46,,0\n", buf.String())
}

func TestWriteJSON(t *testing.T) {
	snap := exportSnapshot()
	var buf bytes.Buffer
	count, err := WriteJSON(&buf, snap)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	var decoded struct {
		Info struct {
			SnapshotID  string         `json:"snapshot_id"`
			Strategy    string         `json:"strategy"`
			RecordCount int            `json:"record_count"`
			Columns     []string       `json:"columns"`
			Missing     map[string]int `json:"missing"`
		} `json:"export_info"`
		Data []model.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, snap.ID, decoded.Info.SnapshotID)
	assert.Equal(t, "fill-mean", decoded.Info.Strategy)
	assert.Equal(t, []string{"age", "BMI", "glucose"}, decoded.Info.Columns)
	assert.Equal(t, map[string]int{"age": 0, "BMI": 1, "glucose": 0}, decoded.Info.Missing)
	require.Len(t, decoded.Data, 2)
	assert.True(t, decoded.Data[1]["BMI"].IsNull())
	assert.Equal(t, model.Number(0), decoded.Data[1]["glucose"])
}

func TestWriteXLSXReadsBack(t *testing.T) {
	var buf bytes.Buffer
	count, err := WriteXLSX(&buf, exportSnapshot().Data)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"age", "BMI", "glucose"}, rows[0])
	assert.Equal(t, "26.97", rows[1][1])
	assert.Equal(t, "", rows[2][1])

	// the loader reads its own export
	ds, err := NewLoader(nil, quietLogger()).Parse(context.Background(), bytes.NewReader(mustXLSX(t)), "xlsx")
	require.NoError(t, err)
	assert.True(t, ds.Equal(exportSnapshot().Data))
}

func mustXLSX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	_, err := WriteXLSX(&buf, exportSnapshot().Data)
	require.NoError(t, err)
	return buf.Bytes()
}

func TestWriteDatasetUnsupported(t *testing.T) {
	_, err := WriteDataset(&bytes.Buffer{}, exportSnapshot(), "parquet")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExportToFiles(t *testing.T) {
	dir := t.TempDir()
	var seen []model.ExportResult
	em := NewExportManager(quietLogger())
	em.OnDone = func(r model.ExportResult) { seen = append(seen, r) }

	for _, format := range []string{"csv", "json", "xlsx"} {
		path := filepath.Join(dir, "nested", "processed."+format)
		res := em.Export(context.Background(), exportSnapshot(), model.Export{Format: format, Path: path})
		assert.True(t, res.Success, res.Error)
		assert.Equal(t, 2, res.RecordCount)
		assert.Equal(t, format, res.Type)
		assert.FileExists(t, path)
	}
	assert.Len(t, seen, 3)

	written, err := os.ReadFile(filepath.Join(dir, "nested", "processed.csv"))
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewReader(written)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportFailures(t *testing.T) {
	em := NewExportManager(quietLogger())

	res := em.Export(context.Background(), exportSnapshot(), model.Export{Format: "parquet", Path: "x.parquet"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "unsupported format")

	res = em.Export(context.Background(), exportSnapshot(), model.Export{Format: "csv"})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "path is required")
}

func useMemoryStore(t *testing.T) {
	t.Helper()
	require.NoError(t, store.InitDB(":memory:"))
	t.Cleanup(func() { store.Close() })
}

func TestExportToSQLite(t *testing.T) {
	useMemoryStore(t)
	ctx := context.Background()
	snap := exportSnapshot()
	em := NewExportManager(quietLogger())

	res := em.Export(ctx, snap, model.Export{Format: "SQLite"})
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "sqlite", res.Type)
	assert.Equal(t, DefaultTable, res.Path)

	rows, err := store.CountRows(ctx, DefaultTable, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, rows)
	nulls, err := store.CountNulls(ctx, DefaultTable, "BMI", snap.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, nulls)

	res = em.Export(ctx, snap, model.Export{Format: "sqlite", Table: "bad table"})
	assert.False(t, res.Success)
}
