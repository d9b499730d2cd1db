package pipeline

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"go-data-explorer/internal/model"
)

// GroupMean groups records with groupOf and averages column valueCol within
// each group. Groups come back in the order of order, followed by any other
// label sorted; groups without records are omitted. A group with no numeric
// value averages to 0.
func GroupMean(ds model.Dataset, groupOf func(model.Record) string, valueCol string, order []string) []model.GroupStat {
	values := make(map[string][]float64)
	counts := make(map[string]int)
	for _, rec := range ds.Records {
		label := groupOf(rec)
		counts[label]++
		if f, ok := rec[valueCol].Float(); ok {
			values[label] = append(values[label], f)
		}
	}

	out := make([]model.GroupStat, 0, len(counts))
	for _, label := range orderedLabels(counts, order) {
		mean := 0.0
		if vs := values[label]; len(vs) > 0 {
			mean = stat.Mean(vs, nil)
		}
		out = append(out, model.GroupStat{Label: label, Value: mean, Count: counts[label]})
	}
	return out
}

// GroupCount counts records per group.
func GroupCount(ds model.Dataset, groupOf func(model.Record) string, order []string) []model.GroupStat {
	counts := make(map[string]int)
	for _, rec := range ds.Records {
		counts[groupOf(rec)]++
	}
	out := make([]model.GroupStat, 0, len(counts))
	for _, label := range orderedLabels(counts, order) {
		out = append(out, model.GroupStat{Label: label, Value: float64(counts[label]), Count: counts[label]})
	}
	return out
}

// Points collects (xCol, yCol) pairs, skipping records where either side is
// not numeric. When sorted is set the points are ordered by x.
func Points(ds model.Dataset, xCol, yCol string, sorted bool) []model.Point {
	pts := make([]model.Point, 0, len(ds.Records))
	for _, rec := range ds.Records {
		x, okX := rec[xCol].Float()
		y, okY := rec[yCol].Float()
		if okX && okY {
			pts = append(pts, model.Point{X: x, Y: y})
		}
	}
	if sorted {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
	}
	return pts
}

// Heatmap averages valueCol over every (columnOf, rowCol) cell. Rows are the
// distinct values of rowCol sorted numerically, with "Unknown" last.
func Heatmap(ds model.Dataset, columnOf func(model.Record) string, rowCol, valueCol string, columnOrder []string) model.HeatGrid {
	type key struct{ col, row string }
	sums := make(map[key][]float64)
	counts := make(map[key]int)
	colSeen := make(map[string]int)
	rowSeen := make(map[string]float64)

	for _, rec := range ds.Records {
		col := columnOf(rec)
		row := "Unknown"
		rowNum := math.Inf(1)
		if f, ok := rec[rowCol].Float(); ok {
			row = strconv.FormatFloat(f, 'f', -1, 64)
			rowNum = f
		}
		colSeen[col]++
		rowSeen[row] = rowNum

		k := key{col, row}
		counts[k]++
		if v, ok := rec[valueCol].Float(); ok {
			sums[k] = append(sums[k], v)
		}
	}

	grid := model.HeatGrid{Columns: orderedLabels(colSeen, columnOrder)}
	for row := range rowSeen {
		grid.Rows = append(grid.Rows, row)
	}
	sort.Slice(grid.Rows, func(i, j int) bool {
		a, b := rowSeen[grid.Rows[i]], rowSeen[grid.Rows[j]]
		if a == b {
			return grid.Rows[i] < grid.Rows[j]
		}
		return a < b
	})

	grid.Values = make([][]float64, len(grid.Rows))
	for r, row := range grid.Rows {
		grid.Values[r] = make([]float64, len(grid.Columns))
		for c, col := range grid.Columns {
			k := key{col, row}
			vs := sums[k]
			if len(vs) == 0 {
				grid.Values[r][c] = math.NaN()
				continue
			}
			mean := stat.Mean(vs, nil)
			grid.Values[r][c] = mean
			grid.Cells = append(grid.Cells, model.HeatCell{Column: col, Row: row, Value: mean, Count: counts[k]})
		}
	}
	return grid
}

// ------------------- Chart inputs -------------------

func educationOf(rec model.Record) string { return model.EducationLabel(rec["education"]) }

// AvgBMIByEducation feeds the bar chart.
func AvgBMIByEducation(ds model.Dataset) []model.GroupStat {
	return GroupMean(ds, educationOf, "BMI", model.EducationLabels)
}

// EducationShare feeds the pie chart.
func EducationShare(ds model.Dataset) []model.GroupStat {
	return GroupCount(ds, educationOf, model.EducationLabels)
}

// SysBPByAge feeds the line chart.
func SysBPByAge(ds model.Dataset) []model.Point {
	return Points(ds, "age", "sysBP", true)
}

// BMIVsHeartRate feeds the scatter chart.
func BMIVsHeartRate(ds model.Dataset) []model.Point {
	return Points(ds, "BMI", "heartRate", false)
}

// BMIHeatmap feeds the heatmap: education level against age, coloured by BMI.
func BMIHeatmap(ds model.Dataset) model.HeatGrid {
	return Heatmap(ds, educationOf, "age", "BMI", model.EducationLabels)
}

func orderedLabels(seen map[string]int, order []string) []string {
	out := make([]string, 0, len(seen))
	used := make(map[string]bool, len(seen))
	for _, label := range order {
		if _, ok := seen[label]; ok && !used[label] {
			out = append(out, label)
			used[label] = true
		}
	}
	var rest []string
	for label := range seen {
		if !used[label] {
			rest = append(rest, label)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
