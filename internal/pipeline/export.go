package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"go-data-explorer/internal/model"
	"go-data-explorer/internal/store"
)

// ErrUnsupportedFormat is returned for import or export formats the pipeline
// does not know.
var ErrUnsupportedFormat = errors.New("unsupported format")

// DefaultTable is the SQLite table used when an export names none.
const DefaultTable = "dataset"

// ExportManager handles data export operations
type ExportManager struct {
	Logger *slog.Logger
	OnDone func(result model.ExportResult) // optional, e.g. metrics
}

// NewExportManager creates an export manager logging through logger.
func NewExportManager(logger *slog.Logger) *ExportManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportManager{Logger: logger.With(slog.String("component", "exporter"))}
}

// Export writes snap to the target described by spec.
func (em *ExportManager) Export(ctx context.Context, snap model.Snapshot, spec model.Export) model.ExportResult {
	format := strings.ToLower(spec.Format)
	result := model.ExportResult{Type: format, Path: spec.Path}

	var count int
	var err error
	switch format {
	case "csv", "json", "xlsx":
		count, err = em.exportToFile(snap, format, spec.Path)
	case "sqlite":
		table := spec.Table
		if table == "" {
			table = DefaultTable
		}
		result.Path = table
		count, err = store.SaveDataset(ctx, table, snap)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, spec.Format)
	}

	result.RecordCount = count
	result.Success = err == nil
	result.Timestamp = time.Now().UTC()
	if err != nil {
		result.Error = err.Error()
		em.Logger.ErrorContext(ctx, "export failed",
			slog.String("format", format),
			slog.String("path", result.Path),
			slog.String("error", err.Error()),
		)
	} else {
		em.Logger.InfoContext(ctx, "export successful",
			slog.String("format", format),
			slog.String("path", result.Path),
			slog.Int("records", count),
			slog.String("snapshot_id", snap.ID),
		)
	}
	if em.OnDone != nil {
		em.OnDone(result)
	}
	return result
}

func (em *ExportManager) exportToFile(snap model.Snapshot, format, path string) (int, error) {
	if path == "" {
		return 0, errors.New("export path is required")
	}
	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	count, err := WriteDataset(file, snap, format)
	if err != nil {
		return count, err
	}
	return count, file.Close()
}

// WriteDataset encodes snap to w in format csv, json or xlsx.
func WriteDataset(w io.Writer, snap model.Snapshot, format string) (int, error) {
	switch strings.ToLower(format) {
	case "csv":
		return WriteCSV(w, snap.Data)
	case "json":
		return WriteJSON(w, snap)
	case "xlsx":
		return WriteXLSX(w, snap.Data)
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// exportColumns prefers the display header and falls back to the schema
func exportColumns(ds model.Dataset) []string {
	if len(ds.Header) > 0 {
		return ds.Header
	}
	return ds.Schema()
}

// WriteCSV writes a header row and one row per record; absent values are empty fields.
func WriteCSV(w io.Writer, ds model.Dataset) (int, error) {
	writer := csv.NewWriter(w)
	columns := exportColumns(ds)

	if err := writer.Write(columns); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	recordCount := 0
	row := make([]string, len(columns))
	for _, rec := range ds.Records {
		for i, c := range columns {
			row[i] = rec[c].Text("")
		}
		if err := writer.Write(row); err != nil {
			return recordCount, fmt.Errorf("failed to write row: %w", err)
		}
		recordCount++
	}

	writer.Flush()
	return recordCount, writer.Error()
}

// WriteJSON writes the records inside an export_info envelope.
func WriteJSON(w io.Writer, snap model.Snapshot) (int, error) {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"snapshot_id":  snap.ID,
			"strategy":     snap.Strategy,
			"exported_at":  time.Now().UTC(),
			"record_count": len(snap.Data.Records),
			"columns":      exportColumns(snap.Data),
			"missing":      snap.Missing,
		},
		"data": snap.Data.Records,
	}

	if err := encoder.Encode(exportData); err != nil {
		return 0, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return len(snap.Data.Records), nil
}

// WriteXLSX writes the dataset to the first sheet of a new workbook.
func WriteXLSX(w io.Writer, ds model.Dataset) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Data"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to open stream writer: %w", err)
	}

	columns := exportColumns(ds)
	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	recordCount := 0
	for i, rec := range ds.Records {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			if v := rec[c]; !v.IsMissing() {
				row[j] = v.Interface()
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return recordCount, err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return recordCount, fmt.Errorf("failed to write row %d: %w", i, err)
		}
		recordCount++
	}

	if err := sw.Flush(); err != nil {
		return recordCount, fmt.Errorf("failed to flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return recordCount, fmt.Errorf("failed to write workbook: %w", err)
	}
	return recordCount, nil
}
