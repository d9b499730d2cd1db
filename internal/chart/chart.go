// Package chart renders the five dataset charts (bar, line, scatter, pie,
// heatmap) as PNG or SVG images with gonum/plot. Every renderer derives its
// own aggregate from the dataset it is given.
package chart

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"go-data-explorer/internal/model"
)

// Kind names a chart.
type Kind string

const (
	Bar     Kind = "bar"
	Line    Kind = "line"
	Scatter Kind = "scatter"
	Pie     Kind = "pie"
	Heatmap Kind = "heatmap"
)

// Kinds lists every chart in display order.
var Kinds = []Kind{Bar, Line, Scatter, Pie, Heatmap}

var (
	ErrNoData        = errors.New("chart: no data to plot")
	ErrUnknownKind   = errors.New("chart: unknown chart kind")
	ErrUnknownFormat = errors.New("chart: unknown image format")
)

const (
	width  = 7 * vg.Inch
	height = 5 * vg.Inch
)

var (
	purple = color.RGBA{R: 0x6B, G: 0x46, B: 0xC1, A: 0xFF}
	pink   = color.RGBA{R: 0xD5, G: 0x3F, B: 0x8C, A: 0xFF}
	green  = color.RGBA{R: 0x38, G: 0xA1, B: 0x69, A: 0xFF}
)

// ParseKind accepts a chart name with or without a "-chart" suffix.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.TrimSuffix(strings.ToLower(s), "-chart"))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKind, s)
}

// Build creates the plot for kind from ds.
func Build(kind Kind, ds model.Dataset) (*plot.Plot, error) {
	switch kind {
	case Bar:
		return barChart(ds)
	case Line:
		return lineChart(ds)
	case Scatter:
		return scatterChart(ds)
	case Pie:
		return pieChart(ds)
	case Heatmap:
		return heatmapChart(ds)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
}

// Render draws kind from ds to w in format "png" or "svg".
func Render(ctx context.Context, kind Kind, ds model.Dataset, w io.Writer, format string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	format = strings.ToLower(format)
	if format != "png" && format != "svg" {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	p, err := Build(kind, ds)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(width, height, format)
	if err != nil {
		return fmt.Errorf("failed to create %s writer for %s chart: %w", format, kind, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s chart: %w", kind, err)
	}
	return nil
}

// RenderAll writes every chart into dir as <kind>.<format>, concurrently.
// Charts with no data are skipped. It returns the paths written.
func RenderAll(ctx context.Context, ds model.Dataset, dir, format string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}

	paths := make([]string, len(Kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range Kinds {
		i, kind := i, kind
		g.Go(func() error {
			path := filepath.Join(dir, string(kind)+"."+strings.ToLower(format))
			err := renderFile(gctx, kind, ds, path, format)
			if errors.Is(err, ErrNoData) {
				slog.WarnContext(gctx, "skipping chart without data", slog.String("chart", string(kind)))
				return nil
			}
			if err != nil {
				return err
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	written := paths[:0]
	for _, p := range paths {
		if p != "" {
			written = append(written, p)
		}
	}
	return written, nil
}

func renderFile(ctx context.Context, kind Kind, ds model.Dataset, path, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Render(ctx, kind, ds, f, format); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Color = purple
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}
