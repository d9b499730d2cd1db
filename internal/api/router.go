package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "go-data-explorer/docs"
	"go-data-explorer/internal/api/handler"
	apierrors "go-data-explorer/internal/errors"
	"go-data-explorer/internal/infrastructure"
	"go-data-explorer/internal/pipeline"
	"go-data-explorer/pkg/router"
	"go-data-explorer/pkg/utils"
)

// Deps are the components the HTTP API serves.
type Deps struct {
	Processor *pipeline.Processor
	Exporter  *pipeline.ExportManager
	Outputs   *utils.OutputManager
	Metrics   *infrastructure.Metrics // optional
	Logger    *slog.Logger
}

// RegisterRoutes mounts the page, the JSON API, metrics and swagger on r.
func RegisterRoutes(r *router.Router, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Exporter == nil {
		deps.Exporter = pipeline.NewExportManager(deps.Logger)
	}
	if deps.Outputs == nil {
		deps.Outputs = utils.NewOutputManager("output")
	}

	var observeChart handler.ChartObserver
	if deps.Metrics != nil {
		observeChart = deps.Metrics.ObserveChart
	}

	r.Use(requestIDToLogContext)
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apierrors.RenderError(w, req, apierrors.ErrNotFound)
	})

	page := handler.NewHTMLHandler(deps.Processor, deps.Logger)
	r.GET("/", page.ServePage)
	r.POST("/apply/{strategy}", page.ApplyAndRedirect)
	r.GET("/health", handler.Health(deps.Processor))
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}
	r.GET("/swagger/*", httpSwagger.WrapHandler)

	datasets := handler.NewDatasetHandler(deps.Processor, deps.Exporter, deps.Outputs, deps.Logger)
	charts := handler.NewChartHandler(deps.Processor, observeChart, deps.Logger)
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(render.SetContentType(render.ContentTypeJSON))
		api.Mount("/dataset", datasets.Routes())
		api.Mount("/charts", charts.Routes())
	})
}

// requestIDToLogContext copies chi's request ID into the logging context.
func requestIDToLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(infrastructure.WithRequestID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
