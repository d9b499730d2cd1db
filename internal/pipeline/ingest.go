package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"go-data-explorer/internal/model"
	"go-data-explorer/pkg/utils"
)

// LoadResult is a freshly loaded dataset with its derived views.
type LoadResult struct {
	Data    model.Dataset       `json:"-"`
	Head    model.Dataset       `json:"head"`
	Tail    model.Dataset       `json:"tail"`
	Stats   model.Stats         `json:"stats"`
	Missing model.MissingReport `json:"missing"`
}

// newLoadResult derives head, tail, stats and the missing report from ds.
func newLoadResult(ds model.Dataset) LoadResult {
	return LoadResult{
		Data:    ds,
		Head:    Head(ds, PreviewRows),
		Tail:    Tail(ds, PreviewRows),
		Stats:   ComputeStats(ds),
		Missing: ComputeMissing(ds),
	}
}

// Loader reads tabular sources into datasets.
type Loader struct {
	Schema model.Schema // nil keeps every header column with generic parsing
	Client *http.Client
	Retry  model.RetryConfig
	Logger *slog.Logger
}

// NewLoader returns a loader coercing fields with schema.
func NewLoader(schema model.Schema, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		Schema: schema,
		Client: &http.Client{Timeout: 30 * time.Second},
		Retry:  model.DefaultRetryConfig,
		Logger: logger.With(slog.String("component", "loader")),
	}
}

// Load reads src (local path or http(s) URL). A source that cannot be read
// yields an empty dataset; only context cancellation is returned as an error.
func (l *Loader) Load(ctx context.Context, src model.Source) (LoadResult, error) {
	start := time.Now()
	l.Logger.InfoContext(ctx, "starting load", slog.String("source", src.URL), slog.String("type", src.Type))

	ds, err := l.read(ctx, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return LoadResult{}, ctxErr
		}
		l.Logger.WarnContext(ctx, "source unreadable, continuing with an empty dataset",
			slog.String("source", src.URL),
			slog.String("error", err.Error()),
		)
		ds = model.NewDataset(l.header(nil), nil)
	}

	res := newLoadResult(ds)
	l.Logger.InfoContext(ctx, "load finished",
		slog.String("source", src.URL),
		slog.Int("rows", res.Stats.TotalRows),
		slog.Int("columns", res.Stats.TotalColumns),
		slog.Int("missing_cells", res.Missing.Total()),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

func (l *Loader) read(ctx context.Context, src model.Source) (model.Dataset, error) {
	var data []byte
	var err error
	if strings.HasPrefix(src.URL, "http://") || strings.HasPrefix(src.URL, "https://") {
		data, err = fetchWithRetry(ctx, l.Client, src.URL, l.Retry, l.Logger)
	} else {
		data, err = os.ReadFile(src.URL)
	}
	if err != nil {
		return model.Dataset{}, err
	}
	return l.Parse(ctx, bytes.NewReader(data), sourceFormat(src))
}

// Parse decodes r in the given format ("csv" or "xlsx").
func (l *Loader) Parse(ctx context.Context, r io.Reader, format string) (model.Dataset, error) {
	switch format {
	case "xlsx":
		return l.parseXLSX(ctx, r)
	case "csv", "":
		return l.parseCSV(ctx, r)
	default:
		return model.Dataset{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func sourceFormat(src model.Source) string {
	if src.Type != "" {
		return strings.ToLower(src.Type)
	}
	path := src.URL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return "xlsx"
	}
	return "csv"
}

// ------------------- CSV -------------------

func (l *Loader) parseCSV(ctx context.Context, r io.Reader) (model.Dataset, error) {
	csvReader := csv.NewReader(r)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headers, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return model.NewDataset(l.header(nil), nil), nil
	}
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to read CSV header: %w", err)
	}

	return l.buildDataset(ctx, headers, func() ([]string, error) {
		for {
			row, err := csvReader.Read()
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				l.Logger.Warn("skipping malformed CSV line", slog.Int("line", parseErr.Line), slog.String("error", parseErr.Err.Error()))
				continue
			}
			return row, err
		}
	})
}

// ------------------- XLSX -------------------

func (l *Loader) parseXLSX(ctx context.Context, r io.Reader) (model.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return model.NewDataset(l.header(nil), nil), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return model.NewDataset(l.header(nil), nil), nil
	}

	i := 1
	return l.buildDataset(ctx, rows[0], func() ([]string, error) {
		if i >= len(rows) {
			return nil, io.EOF
		}
		row := rows[i]
		i++
		return row, nil
	})
}

// ------------------- Records -------------------

func (l *Loader) buildDataset(ctx context.Context, rawHeaders []string, next func() ([]string, error)) (model.Dataset, error) {
	headers := make([]string, len(rawHeaders))
	index := make(map[string]int, len(rawHeaders))
	for i, h := range rawHeaders {
		headers[i] = utils.CleanHeader(h)
		if _, dup := index[headers[i]]; !dup {
			index[headers[i]] = i
		}
	}

	var records []model.Record
	for {
		if err := ctx.Err(); err != nil {
			return model.Dataset{}, err
		}
		row, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Dataset{}, fmt.Errorf("read error after %d records: %w", len(records), err)
		}
		if isBlankRow(row) {
			continue
		}
		records = append(records, l.buildRecord(headers, index, row))
	}
	return model.NewDataset(l.header(headers), records), nil
}

func (l *Loader) buildRecord(headers []string, index map[string]int, row []string) model.Record {
	field := func(i int) string {
		if i < 0 || i >= len(row) {
			return "" // ragged row
		}
		return row[i]
	}

	if l.Schema == nil {
		rec := make(model.Record, len(headers))
		for i, h := range headers {
			rec[h] = model.FromInterface(utils.ParseValue(field(i)))
		}
		return rec
	}

	rec := make(model.Record, len(l.Schema))
	for _, col := range l.Schema {
		i, ok := index[col.Name]
		if !ok {
			rec[col.Name] = model.Null()
			continue
		}
		rec[col.Name] = coerce(field(i), col.Type)
	}
	return rec
}

// coerce converts a raw field per the column type; failures become absent
func coerce(raw string, typ model.ColumnType) model.Value {
	if typ == model.ColumnText {
		if s := strings.TrimSpace(raw); s != "" {
			return model.String(s)
		}
		return model.Null()
	}
	if f, ok := model.ParseNumber(raw); ok {
		return model.Number(f)
	}
	return model.Null()
}

func (l *Loader) header(parsed []string) []string {
	if l.Schema != nil {
		return l.Schema.Names()
	}
	if parsed == nil {
		return []string{}
	}
	return parsed
}

// isBlankRow matches empty lines; a row of empty fields is still a record
func isBlankRow(row []string) bool {
	return len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "")
}
