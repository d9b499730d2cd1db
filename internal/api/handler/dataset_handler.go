package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "go-data-explorer/internal/errors"
	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
	"go-data-explorer/internal/store"
	"go-data-explorer/pkg/utils"
)

// DatasetHandler serves the loaded and processed dataset.
type DatasetHandler struct {
	processor *pipeline.Processor
	exporter  *pipeline.ExportManager
	outputs   *utils.OutputManager
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewDatasetHandler creates a dataset handler. Exports requested over HTTP are
// written below outputs, one directory per snapshot.
func NewDatasetHandler(p *pipeline.Processor, em *pipeline.ExportManager, outputs *utils.OutputManager, logger *slog.Logger) *DatasetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetHandler{
		processor: p,
		exporter:  em,
		outputs:   outputs,
		validate:  validator.New(),
		logger:    logger.With(slog.String("component", "dataset_handler")),
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetDataset)
	r.Get("/stats", h.GetStats)
	r.Get("/missing", h.GetMissing)
	r.Get("/head", h.GetHead)
	r.Get("/tail", h.GetTail)
	r.Get("/processed", h.GetProcessed)
	r.Post("/reload", h.Reload)
	r.Post("/strategies/{strategy}", h.ApplyStrategy)
	r.Get("/export/{format}", h.DownloadExport)
	r.Post("/export", h.CreateExport)
	r.Get("/exports", h.ListExports)
	return r
}

// StatsResponse is the body of GET /dataset/stats
type StatsResponse struct {
	SnapshotID string         `json:"snapshotId"`
	Strategy   model.Strategy `json:"strategy,omitempty"`
	Loaded     model.Stats    `json:"loaded"`
	Processed  model.Stats    `json:"processed"`
}

// MissingResponse is the body of GET /dataset/missing
type MissingResponse struct {
	SnapshotID string              `json:"snapshotId"`
	Missing    model.MissingReport `json:"missing"`
	Total      int                 `json:"total"`
}

// StrategyResponse is the body of POST /dataset/strategies/{strategy}
type StrategyResponse struct {
	Strategy model.Strategy `json:"strategy"`
	Applied  bool           `json:"applied"`
	View     pipeline.View  `json:"view"`
}

// ExportsResponse is the body of GET /dataset/exports
type ExportsResponse struct {
	Exports []map[string]interface{} `json:"exports"`
}

// GetDataset returns the current view of the dataset
// @Summary Dataset summary
// @Description Stats, missing-value report, head and tail of the loaded data and the first processed records
// @Tags dataset
// @Produce json
// @Success 200 {object} pipeline.View
// @Router /dataset [get]
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.processor.View())
}

// GetStats returns row and column counts
// @Summary Dataset statistics
// @Tags dataset
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /dataset/stats [get]
func (h *DatasetHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap := h.processor.Processed()
	render.JSON(w, r, StatsResponse{
		SnapshotID: snap.ID,
		Strategy:   snap.Strategy,
		Loaded:     h.processor.Loaded().Stats,
		Processed:  snap.Stats,
	})
}

// GetMissing returns the per-column missing-value report
// @Summary Missing-value report
// @Tags dataset
// @Produce json
// @Success 200 {object} MissingResponse
// @Router /dataset/missing [get]
func (h *DatasetHandler) GetMissing(w http.ResponseWriter, r *http.Request) {
	snap := h.processor.Processed()
	render.JSON(w, r, MissingResponse{SnapshotID: snap.ID, Missing: snap.Missing, Total: snap.Missing.Total()})
}

// GetHead returns the first five loaded records
// @Summary First records
// @Tags dataset
// @Produce json
// @Success 200 {object} model.Dataset
// @Router /dataset/head [get]
func (h *DatasetHandler) GetHead(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.processor.Loaded().Head)
}

// GetTail returns the last five loaded records
// @Summary Last records
// @Tags dataset
// @Produce json
// @Success 200 {object} model.Dataset
// @Router /dataset/tail [get]
func (h *DatasetHandler) GetTail(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.processor.Loaded().Tail)
}

// GetProcessed returns the leading processed records
// @Summary Processed records
// @Tags dataset
// @Produce json
// @Param limit query int false "Number of records, 0 for all" default(5)
// @Success 200 {object} model.Dataset
// @Failure 400 {object} apierrors.ErrorResponse
// @Router /dataset/processed [get]
func (h *DatasetHandler) GetProcessed(w http.ResponseWriter, r *http.Request) {
	limit := pipeline.PreviewRows
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			apierrors.RenderError(w, r, apierrors.InvalidParameter("limit", raw))
			return
		}
		limit = n
	}

	data := h.processor.Processed().Data
	if limit == 0 {
		limit = data.Len()
	}
	render.JSON(w, r, pipeline.Head(data, limit))
}

// Reload re-reads the configured source and resets the processed dataset
// @Summary Reload the source
// @Tags dataset
// @Produce json
// @Success 200 {object} pipeline.View
// @Failure 500 {object} apierrors.ErrorResponse
// @Router /dataset/reload [post]
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	view, err := h.processor.Load(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "reload failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		apierrors.RenderError(w, r, apierrors.LoadFailed(err))
		return
	}
	render.JSON(w, r, view)
}

// ApplyStrategy runs a missing-value strategy on the processed dataset.
// Unknown strategies leave the data unchanged and report applied=false.
// @Summary Apply a missing-value strategy
// @Tags dataset
// @Produce json
// @Param strategy path string true "drop-rows, fill-mean or fill-default"
// @Success 200 {object} StrategyResponse
// @Router /dataset/strategies/{strategy} [post]
func (h *DatasetHandler) ApplyStrategy(w http.ResponseWriter, r *http.Request) {
	strategy := model.Strategy(chi.URLParam(r, "strategy"))
	view, applied := h.processor.ApplyView(r.Context(), strategy)
	render.JSON(w, r, StrategyResponse{Strategy: strategy, Applied: applied, View: view})
}

var contentTypes = map[string]string{
	"csv":  "text/csv; charset=utf-8",
	"json": "application/json",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// DownloadExport streams the processed dataset as a file
// @Summary Download the processed dataset
// @Tags export
// @Produce octet-stream
// @Param format path string true "csv, json or xlsx"
// @Success 200 {file} file
// @Failure 400 {object} apierrors.ErrorResponse
// @Router /dataset/export/{format} [get]
func (h *DatasetHandler) DownloadExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(chi.URLParam(r, "format"))
	contentType, ok := contentTypes[format]
	if !ok {
		apierrors.RenderError(w, r, apierrors.InvalidParameter("format", format))
		return
	}

	snap := h.processor.Processed()
	var buf bytes.Buffer
	count, err := pipeline.WriteDataset(&buf, snap, format)
	h.notify(model.ExportResult{Type: format, RecordCount: count, Success: err == nil})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "download export failed", slog.String("format", format), slog.String("error", err.Error()))
		apierrors.RenderError(w, r, apierrors.ExportFailed(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="dataset-%s.%s"`, snap.ID, format))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// CreateExport writes the processed dataset to a file under the export
// directory or to a SQLite table
// @Summary Export the processed dataset
// @Tags export
// @Accept json
// @Produce json
// @Param export body model.Export true "Export target"
// @Success 200 {object} model.ExportResult
// @Failure 400 {object} apierrors.ErrorResponse
// @Failure 500 {object} apierrors.ErrorResponse
// @Router /dataset/export [post]
func (h *DatasetHandler) CreateExport(w http.ResponseWriter, r *http.Request) {
	var spec model.Export
	if err := render.DecodeJSON(r.Body, &spec); err != nil {
		apierrors.RenderError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	spec.Format = strings.ToLower(spec.Format)
	if err := h.validate.Struct(spec); err != nil {
		apierrors.RenderError(w, r, validationError(err))
		return
	}

	snap := h.processor.Processed()
	if spec.Format != "sqlite" {
		path, err := h.outputs.GetOutputFilePath(snap.ID, spec.Path)
		if err != nil {
			apierrors.RenderError(w, r, apierrors.ExportFailed(err))
			return
		}
		spec.Path = path
	}

	result := h.exporter.Export(r.Context(), snap, spec)
	if !result.Success {
		apierrors.RenderError(w, r, apierrors.NewWithDetails(http.StatusInternalServerError, "EXPORT_FAILED", "Export failed", result))
		return
	}
	render.JSON(w, r, result)
}

// ListExports returns the SQLite exports recorded so far, newest first
// @Summary List SQLite exports
// @Tags export
// @Produce json
// @Success 200 {object} ExportsResponse
// @Failure 500 {object} apierrors.ErrorResponse
// @Router /dataset/exports [get]
func (h *DatasetHandler) ListExports(w http.ResponseWriter, r *http.Request) {
	exports, err := store.ListExports(r.Context())
	if errors.Is(err, store.ErrNotInitialized) {
		// no database configured, so nothing was ever exported to one
		exports, err = []map[string]interface{}{}, nil
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list exports failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		apierrors.RenderError(w, r, apierrors.ErrInternalServer)
		return
	}
	render.JSON(w, r, ExportsResponse{Exports: exports})
}

func (h *DatasetHandler) notify(result model.ExportResult) {
	if h.exporter != nil && h.exporter.OnDone != nil {
		h.exporter.OnDone(result)
	}
}

func validationError(err error) *apierrors.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	fields := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apierrors.ValidationError{
			Field:   strings.ToLower(fe.Field()),
			Message: fmt.Sprintf("failed on '%s' rule", fe.Tag()),
		})
	}
	return apierrors.NewValidationErrors(fields)
}
