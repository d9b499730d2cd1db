package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"go-data-explorer/internal/model"
)

// Metrics receives processor events. The infrastructure package provides a
// Prometheus implementation.
type Metrics interface {
	ObserveLoad(rows, missingCells int)
	ObserveStrategy(strategy model.Strategy, applied bool, rows, missingCells int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveLoad(int, int)                           {}
func (nopMetrics) ObserveStrategy(model.Strategy, bool, int, int) {}

// View is a consistent read of the processor state.
type View struct {
	SnapshotID string              `json:"snapshotId"`
	Strategy   model.Strategy      `json:"strategy,omitempty"`
	Stats      model.Stats         `json:"stats"`
	Missing    model.MissingReport `json:"missing"`
	Head       model.Dataset       `json:"head"`
	Tail       model.Dataset       `json:"tail"`
	Processed  model.Dataset       `json:"processed"` // first PreviewRows processed records
	UpdatedAt  time.Time           `json:"updatedAt"`
}

// Processor owns the loaded dataset and the current processed snapshot.
// Each load or strategy application replaces the processed snapshot as a
// whole, so readers never observe a dataset with stale stats or report.
type Processor struct {
	mu        sync.RWMutex
	loader    *Loader
	source    model.Source
	loaded    LoadResult
	processed model.Snapshot

	metrics Metrics
	logger  *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

func WithMetrics(m Metrics) Option {
	return func(p *Processor) {
		if m != nil {
			p.metrics = m
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewProcessor creates a processor reading src through loader. Nothing is
// loaded until Load is called.
func NewProcessor(loader *Loader, src model.Source, opts ...Option) *Processor {
	p := &Processor{
		loader:  loader,
		source:  src,
		metrics: nopMetrics{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "processor"))

	empty := model.NewDataset(loader.header(nil), nil)
	p.loaded = newLoadResult(empty)
	p.processed = newSnapshot(empty, "")
	return p
}

// Load (re)reads the configured source.
func (p *Processor) Load(ctx context.Context) (View, error) {
	p.mu.RLock()
	src := p.source
	p.mu.RUnlock()
	return p.LoadFrom(ctx, src)
}

// LoadFrom reads src and makes it the configured source.
func (p *Processor) LoadFrom(ctx context.Context, src model.Source) (View, error) {
	res, err := p.loader.Load(ctx, src)
	if err != nil {
		return View{}, err
	}
	snap := newSnapshot(res.Data, "")

	p.mu.Lock()
	p.source = src
	p.loaded = res
	p.processed = snap
	view := p.viewLocked()
	p.mu.Unlock()

	p.metrics.ObserveLoad(snap.Stats.TotalRows, snap.Missing.Total())
	return view, nil
}

// Apply runs strategy against the current processed dataset and installs the
// result. An unknown strategy leaves the processed snapshot untouched and
// reports applied=false.
func (p *Processor) Apply(ctx context.Context, strategy model.Strategy) (snap model.Snapshot, applied bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applyLocked(ctx, strategy)
}

// ApplyView is Apply returning the view of the resulting state, read under
// the same lock.
func (p *Processor) ApplyView(ctx context.Context, strategy model.Strategy) (View, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, applied := p.applyLocked(ctx, strategy)
	return p.viewLocked(), applied
}

func (p *Processor) applyLocked(ctx context.Context, strategy model.Strategy) (model.Snapshot, bool) {
	if !strategy.Known() {
		p.logger.WarnContext(ctx, "ignoring unknown strategy", slog.String("strategy", string(strategy)))
		p.metrics.ObserveStrategy(strategy, false, p.processed.Stats.TotalRows, p.processed.Missing.Total())
		return p.processed, false
	}

	before := p.processed
	next := newSnapshot(ApplyStrategy(before.Data, strategy), strategy)
	p.processed = next

	p.logger.InfoContext(ctx, "strategy applied",
		slog.String("strategy", string(strategy)),
		slog.String("snapshot_id", next.ID),
		slog.Int("rows_before", before.Stats.TotalRows),
		slog.Int("rows_after", next.Stats.TotalRows),
		slog.Int("missing_before", before.Missing.Total()),
		slog.Int("missing_after", next.Missing.Total()),
	)
	p.metrics.ObserveStrategy(strategy, true, next.Stats.TotalRows, next.Missing.Total())
	return next, true
}

// View returns the current state.
func (p *Processor) View() View {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewLocked()
}

// Loaded returns the dataset as it was loaded.
func (p *Processor) Loaded() LoadResult {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loaded
}

// Processed returns the current processed snapshot.
func (p *Processor) Processed() model.Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.processed
}

// Source returns the configured source.
func (p *Processor) Source() model.Source {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.source
}

func (p *Processor) viewLocked() View {
	return View{
		SnapshotID: p.processed.ID,
		Strategy:   p.processed.Strategy,
		Stats:      p.processed.Stats,
		Missing:    p.processed.Missing,
		Head:       p.loaded.Head,
		Tail:       p.loaded.Tail,
		Processed:  Head(p.processed.Data, PreviewRows),
		UpdatedAt:  p.processed.CreatedAt,
	}
}

func newSnapshot(ds model.Dataset, strategy model.Strategy) model.Snapshot {
	return model.Snapshot{
		ID:        uuid.New().String(),
		Strategy:  strategy,
		Data:      ds,
		Stats:     ComputeStats(ds),
		Missing:   ComputeMissing(ds),
		CreatedAt: time.Now().UTC(),
	}
}
