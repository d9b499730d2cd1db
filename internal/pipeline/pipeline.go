package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-data-explorer/internal/model"
)

// JobSpec describes a batch run: load a source, apply strategies in order,
// export the result.
type JobSpec struct {
	Source     model.Source     `json:"source"`
	Strategies []model.Strategy `json:"strategies"`
	Exports    []model.Export   `json:"exports"`
}

// JobResult is what a batch run produced.
type JobResult struct {
	Loaded   LoadResult           `json:"loaded"`
	Final    model.Snapshot       `json:"final"`
	Exports  []model.ExportResult `json:"exports"`
	Duration time.Duration        `json:"duration"`
}

// ------------------- Pipeline Runner -------------------

// Run executes job against p. Export failures are reported in the result and
// do not stop the remaining exports; the returned error is set when the load
// was cancelled or any export failed.
func Run(ctx context.Context, p *Processor, em *ExportManager, job JobSpec) (JobResult, error) {
	start := time.Now()
	logger := p.logger.With(slog.String("source", job.Source.URL))
	logger.InfoContext(ctx, "starting pipeline", slog.Int("strategies", len(job.Strategies)), slog.Int("exports", len(job.Exports)))

	var result JobResult
	if _, err := p.LoadFrom(ctx, job.Source); err != nil {
		return result, fmt.Errorf("load %s: %w", job.Source.URL, err)
	}
	result.Loaded = p.Loaded()

	for _, s := range job.Strategies {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		p.Apply(ctx, s)
	}
	result.Final = p.Processed()

	failed := 0
	for _, spec := range job.Exports {
		res := em.Export(ctx, result.Final, spec)
		if !res.Success {
			failed++
		}
		result.Exports = append(result.Exports, res)
	}

	result.Duration = time.Since(start)
	logger.InfoContext(ctx, "pipeline completed",
		slog.Duration("duration", result.Duration),
		slog.Int("rows", result.Final.Stats.TotalRows),
		slog.Int("missing_cells", result.Final.Missing.Total()),
		slog.Int("failed_exports", failed),
	)
	if failed > 0 {
		return result, fmt.Errorf("%d of %d exports failed", failed, len(job.Exports))
	}
	return result, nil
}
