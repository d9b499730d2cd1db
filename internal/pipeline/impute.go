package pipeline

import (
	"log/slog"

	"go-data-explorer/internal/model"
	"go-data-explorer/pkg/utils"
)

// ApplyStrategy resolves missing values in ds with the named strategy and
// returns a new dataset. ds itself is never modified. An unknown strategy is
// ignored and ds is returned as is.
func ApplyStrategy(ds model.Dataset, strategy model.Strategy) model.Dataset {
	switch strategy {
	case model.StrategyDropRows:
		return dropRows(ds)
	case model.StrategyFillMean:
		return fillMean(ds)
	case model.StrategyFillDefault:
		return fillDefault(ds)
	default:
		slog.Warn("ignoring unknown imputation strategy", slog.String("strategy", string(strategy)))
		return ds
	}
}

// dropRows keeps only records whose every field is present and non-empty
func dropRows(ds model.Dataset) model.Dataset {
	kept := make([]model.Record, 0, len(ds.Records))
	for _, rec := range ds.Records {
		if isComplete(rec) {
			kept = append(kept, rec.Clone())
		}
	}
	return model.Dataset{Header: ds.Header, Records: kept}
}

func isComplete(rec model.Record) bool {
	for _, v := range rec {
		if v.IsMissing() {
			return false
		}
	}
	return true
}

// fillMean writes the rounded column mean into every missing cell. Means are
// taken from ds as it was before any cell was filled.
func fillMean(ds model.Dataset) model.Dataset {
	means := columnMeans(ds)
	return fill(ds, func(key string) model.Value {
		return model.Number(means[key]) // zero when the column had no numeric value
	})
}

// fillDefault writes 0 into every missing cell regardless of column type
func fillDefault(ds model.Dataset) model.Dataset {
	return fill(ds, func(string) model.Value {
		return model.Number(0)
	})
}

func fill(ds model.Dataset, valueFor func(key string) model.Value) model.Dataset {
	out := make([]model.Record, len(ds.Records))
	for i, rec := range ds.Records {
		filled := rec.Clone()
		for key, v := range rec {
			if v.IsMissing() {
				filled[key] = valueFor(key)
			}
		}
		out[i] = filled
	}
	return model.Dataset{Header: ds.Header, Records: out}
}

// columnMeans returns, for every key seen on any record, the arithmetic mean
// of its present numeric values rounded to 2 decimals. Keys with no numeric
// value are left out.
func columnMeans(ds model.Dataset) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range ds.Records {
		for key, v := range rec {
			if v.IsMissing() {
				continue
			}
			if f, ok := v.Float(); ok {
				sums[key] += f
				counts[key]++
			}
		}
	}

	means := make(map[string]float64, len(counts))
	for key, n := range counts {
		means[key] = utils.Round(sums[key]/float64(n), 2)
	}
	return means
}
