package chart

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
)

func barChart(ds model.Dataset) (*plot.Plot, error) {
	groups := pipeline.AvgBMIByEducation(ds)
	if len(groups) == 0 {
		return nil, ErrNoData
	}

	values := make(plotter.Values, len(groups))
	labels := make([]string, len(groups))
	for i, g := range groups {
		values[i] = g.Value
		labels[i] = g.Label
	}

	p := newPlot("Average BMI by Education Level", "Education Level", "Average BMI")
	bars, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.Color = purple
	bars.LineStyle.Width = 0
	p.Add(bars, plotter.NewGrid())
	p.NominalX(labels...)
	return p, nil
}

func lineChart(ds model.Dataset) (*plot.Plot, error) {
	pts := pipeline.SysBPByAge(ds)
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Systolic Blood Pressure by Age", "Age", "Systolic BP")
	line, err := plotter.NewLine(toXYs(pts))
	if err != nil {
		return nil, fmt.Errorf("line chart: %w", err)
	}
	line.Color = pink
	line.Width = vg.Points(1.5)
	p.Add(line, plotter.NewGrid())
	return p, nil
}

func scatterChart(ds model.Dataset) (*plot.Plot, error) {
	pts := pipeline.BMIVsHeartRate(ds)
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	p := newPlot("BMI vs Heart Rate", "BMI", "Heart Rate")
	sc, err := plotter.NewScatter(toXYs(pts))
	if err != nil {
		return nil, fmt.Errorf("scatter chart: %w", err)
	}
	sc.GlyphStyle.Color = green
	sc.GlyphStyle.Radius = vg.Points(2)
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(sc, plotter.NewGrid())
	return p, nil
}

// pieChart draws one polygon wedge per education level, since gonum/plot has
// no pie plotter.
func pieChart(ds model.Dataset) (*plot.Plot, error) {
	groups := pipeline.EducationShare(ds)
	total := 0.0
	for _, g := range groups {
		total += g.Value
	}
	if total == 0 {
		return nil, ErrNoData
	}

	p := newPlot("Education Level Distribution", "", "")
	p.HideAxes()
	p.X.Min, p.X.Max = -1.4, 1.4
	p.Y.Min, p.Y.Max = -1.1, 1.1

	var (
		labelXYs plotter.XYs
		labels   []string
		start    = math.Pi / 2
	)
	for i, g := range groups {
		sweep := 2 * math.Pi * g.Value / total
		wedge, err := plotter.NewPolygon(wedgeXYs(start, sweep))
		if err != nil {
			return nil, fmt.Errorf("pie chart: %w", err)
		}
		wedge.Color = plotutil.Color(i)
		wedge.LineStyle.Color = color.White
		wedge.LineStyle.Width = vg.Points(1)
		p.Add(wedge)
		p.Legend.Add(fmt.Sprintf("%s (%d)", g.Label, g.Count), wedge)

		mid := start - sweep/2
		labelXYs = append(labelXYs, plotter.XY{X: 0.65 * math.Cos(mid), Y: 0.65 * math.Sin(mid)})
		labels = append(labels, fmt.Sprintf("%.1f%%", 100*g.Value/total))
		start -= sweep
	}

	pct, err := plotter.NewLabels(plotter.XYLabels{XYs: labelXYs, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("pie chart labels: %w", err)
	}
	p.Add(pct)
	p.Legend.Top = true
	return p, nil
}

// wedgeXYs traces a unit-circle sector clockwise from start through sweep radians.
func wedgeXYs(start, sweep float64) plotter.XYs {
	steps := int(math.Ceil(sweep/(math.Pi/90))) + 1
	xys := make(plotter.XYs, 0, steps+2)
	xys = append(xys, plotter.XY{})
	for i := 0; i <= steps; i++ {
		a := start - sweep*float64(i)/float64(steps)
		xys = append(xys, plotter.XY{X: math.Cos(a), Y: math.Sin(a)})
	}
	return xys
}

func heatmapChart(ds model.Dataset) (*plot.Plot, error) {
	grid := pipeline.BMIHeatmap(ds)
	if len(grid.Cells) == 0 {
		return nil, ErrNoData
	}

	g := heatGrid{grid}
	hm := plotter.NewHeatMap(g, palette.Heat(12, 1))
	hm.NaN = color.Transparent
	if hm.Min == hm.Max {
		hm.Min, hm.Max = hm.Min-0.5, hm.Max+0.5
	}

	p := newPlot("BMI by Education Level and Age", "Education Level", "Age")
	p.Add(hm)
	p.NominalX(grid.Columns...)
	p.NominalY(grid.Rows...)
	return p, nil
}

// heatGrid adapts model.HeatGrid to plotter.GridXYZ with cells on integer
// coordinates: column c at x=c, row r at y=r.
type heatGrid struct {
	model.HeatGrid
}

func (g heatGrid) Dims() (c, r int)   { return len(g.Columns), len(g.Rows) }
func (g heatGrid) Z(c, r int) float64 { return g.Values[r][c] }
func (g heatGrid) X(c int) float64    { return float64(c) }
func (g heatGrid) Y(r int) float64    { return float64(r) }

func toXYs(pts []model.Point) plotter.XYs {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X = pt.X
		xys[i].Y = pt.Y
	}
	return xys
}
