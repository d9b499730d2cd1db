package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-data-explorer/internal/infrastructure"
	"go-data-explorer/internal/model"
	"go-data-explorer/internal/pipeline"
	"go-data-explorer/pkg/router"
	"go-data-explorer/pkg/utils"
)

func newServer(t *testing.T) (*httptest.Server, *infrastructure.Metrics) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	path := filepath.Join(t.TempDir(), "framingham.csv")
	body := strings.Join(model.HeartStudySchema.Names(), ",") + "\n" +
		"1,39,4,0,0,0,0,0,0,195,106,70,26.97,80,77,0\n" +
		"0,46,2,0,0,0,0,0,0,250,121,81,,95,76,0\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	metrics := infrastructure.NewMetrics()
	p := pipeline.NewProcessor(pipeline.NewLoader(model.HeartStudySchema, logger), model.Source{URL: path},
		pipeline.WithLogger(logger), pipeline.WithMetrics(metrics))
	_, err := p.Load(context.Background())
	require.NoError(t, err)

	r := router.New(router.WithAccessLog(nil))
	RegisterRoutes(r, Deps{
		Processor: p,
		Outputs:   utils.NewOutputManager(t.TempDir()),
		Metrics:   metrics,
		Logger:    logger,
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, metrics
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRoutesAreMounted(t *testing.T) {
	srv, _ := newServer(t)

	tests := []struct {
		path        string
		contentType string
	}{
		{"/", "text/html; charset=utf-8"},
		{"/health", "application/json"},
		{"/api/v1/dataset", "application/json"},
		{"/api/v1/dataset/stats", "application/json"},
		{"/api/v1/dataset/exports", "application/json"},
		{"/api/v1/charts", "application/json"},
		{"/api/v1/charts/line", "image/png"},
		{"/swagger/doc.json", "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			assert.Equal(t, http.StatusOK, resp.StatusCode, body)
			assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), tt.contentType), resp.Header.Get("Content-Type"))
		})
	}
}

func TestUnknownRoutesRenderNotFound(t *testing.T) {
	srv, _ := newServer(t)

	for _, path := range []string{"/nope", "/api/v1/dataset/nope", "/api/v1/charts/bar/nope"} {
		resp, body := get(t, srv.URL+path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.JSONEq(t, `{"success":false,"error":{"status_code":404,"error_code":"NOT_FOUND","message":"Resource not found"}}`, body, path)
	}
}

func TestPageStrategyButtonRedirects(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/apply/drop-rows", "application/x-www-form-urlencoded", nil)
	require.NoError(t, err)
	resp.Body.Close()
	// the client follows the 303 back to the page
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)

	_, body := get(t, srv.URL+"/api/v1/dataset/stats")
	assert.Contains(t, body, `"processed":{"totalRows":1,"totalColumns":16}`)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	resp, err := http.Post(srv.URL+"/api/v1/dataset/strategies/fill-default", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	get(t, srv.URL+"/api/v1/charts/bar")

	resp, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "explorer_dataset_loads_total 1")
	assert.Contains(t, body, `explorer_strategy_applications_total{applied="true",strategy="fill-default"} 1`)
	assert.Contains(t, body, `explorer_chart_renders_total{kind="bar",status="success"} 1`)
	assert.Contains(t, body, "explorer_dataset_missing_cells 0")
}

func TestRequestIDIsEchoedIntoLogContext(t *testing.T) {
	var seen string
	h := requestIDToLogContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = infrastructure.GetRequestID(r.Context())
	}))

	r := router.New(router.WithAccessLog(nil))
	r.Handle("/", h)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
}
