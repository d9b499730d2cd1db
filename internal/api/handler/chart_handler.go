package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"go-data-explorer/internal/chart"
	apierrors "go-data-explorer/internal/errors"
	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
)

// ChartObserver is told about every chart render.
type ChartObserver func(kind string, err error)

// ChartHandler renders the dataset charts.
type ChartHandler struct {
	processor *pipeline.Processor
	observe   ChartObserver
	logger    *slog.Logger
}

func NewChartHandler(p *pipeline.Processor, observe ChartObserver, logger *slog.Logger) *ChartHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if observe == nil {
		observe = func(string, error) {}
	}
	return &ChartHandler{
		processor: p,
		observe:   observe,
		logger:    logger.With(slog.String("component", "chart_handler")),
	}
}

// Routes returns the chart routes
func (h *ChartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListCharts)
	r.Get("/{kind}", h.GetChart)
	r.Get("/{kind}/data", h.GetChartData)
	return r
}

// ListCharts names the available charts
// @Summary Available charts
// @Tags charts
// @Produce json
// @Success 200 {array} string
// @Router /charts [get]
func (h *ChartHandler) ListCharts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, chart.Kinds)
}

// GetChart renders one chart as an image
// @Summary Render a chart
// @Tags charts
// @Produce png
// @Param kind path string true "bar, line, scatter, pie or heatmap"
// @Param view query string false "loaded or processed" default(loaded)
// @Param format query string false "png or svg" default(png)
// @Success 200 {file} file
// @Failure 400 {object} apierrors.ErrorResponse
// @Failure 422 {object} apierrors.ErrorResponse
// @Router /charts/{kind} [get]
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	kind, err := chart.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		apierrors.RenderError(w, r, apierrors.InvalidParameter("kind", chi.URLParam(r, "kind")))
		return
	}
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "png"
	}

	var buf bytes.Buffer
	err = chart.Render(r.Context(), kind, ds, &buf, format)
	h.observe(string(kind), err)
	switch {
	case errors.Is(err, chart.ErrNoData):
		apierrors.RenderError(w, r, apierrors.ErrNoData)
		return
	case errors.Is(err, chart.ErrUnknownFormat):
		apierrors.RenderError(w, r, apierrors.InvalidParameter("format", format))
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "chart render failed", slog.String("chart", string(kind)), slog.String("error", err.Error()))
		apierrors.RenderError(w, r, apierrors.ChartFailed(err))
		return
	}

	if format == "svg" {
		w.Header().Set("Content-Type", "image/svg+xml")
	} else {
		w.Header().Set("Content-Type", "image/png")
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// GetChartData returns the aggregate a chart is drawn from
// @Summary Chart data
// @Tags charts
// @Produce json
// @Param kind path string true "bar, line, scatter, pie or heatmap"
// @Param view query string false "loaded or processed" default(loaded)
// @Success 200 {object} interface{}
// @Failure 400 {object} apierrors.ErrorResponse
// @Router /charts/{kind}/data [get]
func (h *ChartHandler) GetChartData(w http.ResponseWriter, r *http.Request) {
	kind, err := chart.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		apierrors.RenderError(w, r, apierrors.InvalidParameter("kind", chi.URLParam(r, "kind")))
		return
	}
	ds, ok := h.dataset(w, r)
	if !ok {
		return
	}

	var data interface{}
	switch kind {
	case chart.Bar:
		data = pipeline.AvgBMIByEducation(ds)
	case chart.Pie:
		data = pipeline.EducationShare(ds)
	case chart.Line:
		data = pipeline.SysBPByAge(ds)
	case chart.Scatter:
		data = pipeline.BMIVsHeartRate(ds)
	case chart.Heatmap:
		data = pipeline.BMIHeatmap(ds)
	}
	render.JSON(w, r, data)
}

// dataset picks the loaded or processed dataset from the view query parameter
func (h *ChartHandler) dataset(w http.ResponseWriter, r *http.Request) (model.Dataset, bool) {
	switch view := r.URL.Query().Get("view"); view {
	case "", "loaded":
		return h.processor.Loaded().Data, true
	case "processed":
		return h.processor.Processed().Data, true
	default:
		apierrors.RenderError(w, r, apierrors.InvalidParameter("view", view))
		return model.Dataset{}, false
	}
}
