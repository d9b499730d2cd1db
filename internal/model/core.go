package model

import (
	"sort"
	"time"
)

// Record is a single row keyed by column name.
type Record map[string]Value

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Equal reports whether both records hold the same keys and values.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Dataset is an ordered, immutable snapshot of records.
// Header only drives display order; Schema() is what computations use.
type Dataset struct {
	Header  []string `json:"header"`
	Records []Record `json:"records"`
}

// NewDataset builds a dataset. A nil header is derived from the first record.
func NewDataset(header []string, records []Record) Dataset {
	if records == nil {
		records = []Record{}
	}
	ds := Dataset{Header: header, Records: records}
	if ds.Header == nil {
		ds.Header = ds.Schema()
	}
	return ds
}

func (d Dataset) Len() int { return len(d.Records) }

// Schema returns the columns of the first record, ordered by Header with any
// remaining keys sorted after. Keys that only appear on later records are not
// part of the schema.
func (d Dataset) Schema() []string {
	if len(d.Records) == 0 {
		return []string{}
	}
	first := d.Records[0]
	cols := make([]string, 0, len(first))
	seen := make(map[string]bool, len(first))
	for _, h := range d.Header {
		if _, ok := first[h]; ok && !seen[h] {
			cols = append(cols, h)
			seen[h] = true
		}
	}
	var extra []string
	for k := range first {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(cols, extra...)
}

// Slice returns records [from, to) as a new dataset sharing no record maps.
func (d Dataset) Slice(from, to int) Dataset {
	if from < 0 {
		from = 0
	}
	if to > len(d.Records) {
		to = len(d.Records)
	}
	if from > to {
		from = to
	}
	out := make([]Record, 0, to-from)
	for _, r := range d.Records[from:to] {
		out = append(out, r.Clone())
	}
	return Dataset{Header: d.Header, Records: out}
}

// Equal compares records in order; headers are ignored.
func (d Dataset) Equal(o Dataset) bool {
	if len(d.Records) != len(o.Records) {
		return false
	}
	for i := range d.Records {
		if !d.Records[i].Equal(o.Records[i]) {
			return false
		}
	}
	return true
}

// MissingReport maps column name to the number of records missing it.
type MissingReport map[string]int

// Total sums all missing cells.
func (m MissingReport) Total() int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}

// Stats is the statistics panel of a dataset.
type Stats struct {
	TotalRows    int `json:"totalRows"`
	TotalColumns int `json:"totalColumns"`
}

// Strategy names a missing-value imputation strategy.
type Strategy string

const (
	StrategyDropRows    Strategy = "drop-rows"
	StrategyFillMean    Strategy = "fill-mean"
	StrategyFillDefault Strategy = "fill-default"
)

// Strategies lists the known strategies in display order.
var Strategies = []Strategy{StrategyDropRows, StrategyFillMean, StrategyFillDefault}

func (s Strategy) Known() bool {
	for _, k := range Strategies {
		if s == k {
			return true
		}
	}
	return false
}

// Snapshot is a dataset together with the derivatives computed from it.
type Snapshot struct {
	ID        string        `json:"id"`
	Strategy  Strategy      `json:"strategy,omitempty"` // empty for a fresh load
	Data      Dataset       `json:"-"`
	Stats     Stats         `json:"stats"`
	Missing   MissingReport `json:"missing"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Source represents the tabular input of the processor
type Source struct {
	Type string `json:"type"` // csv, xlsx; empty means infer from the extension
	URL  string `json:"url"`  // local path or http(s) URL
}
