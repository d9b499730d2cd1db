package pipeline

import "go-data-explorer/internal/model"

// PreviewRows is how many records the head, tail and processed views show.
const PreviewRows = 5

// ComputeStats returns the row count and the number of keys on the first record.
func ComputeStats(ds model.Dataset) model.Stats {
	stats := model.Stats{TotalRows: len(ds.Records)}
	if len(ds.Records) > 0 {
		stats.TotalColumns = len(ds.Records[0])
	}
	return stats
}

// ComputeMissing counts, for every column of the first record, the records
// whose value for that column is absent or empty. Columns that only appear on
// later records are not reported.
func ComputeMissing(ds model.Dataset) model.MissingReport {
	report := make(model.MissingReport)
	if len(ds.Records) == 0 {
		return report
	}
	for key := range ds.Records[0] {
		count := 0
		for _, rec := range ds.Records {
			// a key absent from the map reads as the zero Value, which is null
			if rec[key].IsMissing() {
				count++
			}
		}
		report[key] = count
	}
	return report
}

// Head returns the first n records, or the whole dataset when it is shorter.
func Head(ds model.Dataset, n int) model.Dataset {
	return ds.Slice(0, n)
}

// Tail returns the last n records, or the whole dataset when it is shorter.
func Tail(ds model.Dataset, n int) model.Dataset {
	return ds.Slice(len(ds.Records)-n, len(ds.Records))
}
