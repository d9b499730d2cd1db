package model

import "time"

// GroupStat is one bucket of a grouped aggregate (bar and pie charts)
type GroupStat struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// Point is one (x, y) pair of a line or scatter chart
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeatCell is one cell of a heatmap
type HeatCell struct {
	Column string  `json:"column"`
	Row    string  `json:"row"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

// HeatGrid is a dense heatmap with nominal axes
type HeatGrid struct {
	Columns []string    `json:"columns"`
	Rows    []string    `json:"rows"`
	Cells   []HeatCell  `json:"cells"`
	Values  [][]float64 `json:"-"` // [row][column], NaN where no record fell
}

// Export defines an export target
type Export struct {
	Format string `json:"format" validate:"required,oneof=csv json xlsx sqlite"`
	Path   string `json:"path,omitempty" validate:"required_unless=Format sqlite"` // file path for file formats
	Table  string `json:"table,omitempty" validate:"omitempty,max=64"`               // table name for sqlite
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Type        string    `json:"type"` // "csv", "json", "xlsx", "sqlite"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
