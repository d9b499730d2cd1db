package handler

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-data-explorer/internal/chart"
	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
)

// MissingPlaceholder is shown in place of absent values.
const MissingPlaceholder = "N/A"

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"cell": func(rec model.Record, col string) string { return rec[col].Text(MissingPlaceholder) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Data Processor</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 32px; color: #2d3748; }
        h1 { color: #6b46c1; }
        .panel { background: #f7fafc; border-radius: 6px; padding: 12px 16px; margin: 12px 0; }
        table { border-collapse: collapse; margin: 8px 0 24px; font-size: 13px; }
        th, td { border: 1px solid #e2e8f0; padding: 4px 8px; text-align: right; }
        th { background: #edf2f7; }
        .buttons form { display: inline; }
        .buttons button { margin-right: 8px; padding: 6px 14px; background: #6b46c1; color: #fff; border: 0; border-radius: 4px; cursor: pointer; }
        .charts img { width: 420px; margin: 8px; border: 1px solid #e2e8f0; }
    </style>
</head>
<body>
    <h1>Data Processor</h1>
    <div class="panel">
        <strong>Total Rows:</strong> {{.View.Stats.TotalRows}}
        &nbsp; <strong>Total Columns:</strong> {{.View.Stats.TotalColumns}}
        {{with .View.Strategy}}&nbsp; <strong>Last strategy:</strong> {{.}}{{end}}
    </div>
    <div class="panel">
        <strong>Missing Values</strong>
        <ul>{{range $col := .Columns}}<li>{{$col}}: {{index $.View.Missing $col}}</li>{{end}}</ul>
    </div>
    <div class="buttons">
        {{range .Strategies}}<form method="post" action="/apply/{{.}}"><button type="submit">{{.}}</button></form>{{end}}
    </div>
    {{range .Tables}}
    <h2>{{.Title}}</h2>
    <table>
        <tr>{{range $.Columns}}<th>{{.}}</th>{{end}}</tr>
        {{range $rec := .Data.Records}}<tr>{{range $col := $.Columns}}<td>{{cell $rec $col}}</td>{{end}}</tr>
        {{end}}
    </table>
    {{end}}
    <h2>Charts</h2>
    <div class="charts">
        {{range .Charts}}<img src="/api/v1/charts/{{.}}" alt="{{.}} chart">{{end}}
    </div>
</body>
</html>
`))

type pageTable struct {
	Title string
	Data  model.Dataset
}

type pageData struct {
	View       pipeline.View
	Columns    []string
	Strategies []model.Strategy
	Tables     []pageTable
	Charts     []chart.Kind
}

// HTMLHandler serves the single page view with the strategy buttons.
type HTMLHandler struct {
	processor *pipeline.Processor
	logger    *slog.Logger
}

func NewHTMLHandler(p *pipeline.Processor, logger *slog.Logger) *HTMLHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLHandler{processor: p, logger: logger.With(slog.String("component", "html_handler"))}
}

// ServePage renders the dataset view
func (h *HTMLHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	view := h.processor.View()
	columns := view.Head.Header
	if len(columns) == 0 {
		columns = view.Processed.Header
	}

	data := pageData{
		View:       view,
		Columns:    columns,
		Strategies: model.Strategies,
		Tables: []pageTable{
			{Title: "Head", Data: view.Head},
			{Title: "Tail", Data: view.Tail},
			{Title: "Processed Data", Data: view.Processed},
		},
		Charts: chart.Kinds,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.ErrorContext(r.Context(), "page render failed", slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// ApplyAndRedirect applies the strategy named in the path and sends the
// browser back to the page
func (h *HTMLHandler) ApplyAndRedirect(w http.ResponseWriter, r *http.Request) {
	h.processor.Apply(r.Context(), model.Strategy(chi.URLParam(r, "strategy")))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
