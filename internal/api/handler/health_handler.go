package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	"go-data-explorer/internal/pipeline"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"`
	Rows       int       `json:"rows"`
	SnapshotID string    `json:"snapshotId"`
}

// Health reports liveness together with what is currently loaded
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func Health(p *pipeline.Processor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := p.Processed()
		render.JSON(w, r, HealthResponse{
			Status:     "ok",
			Timestamp:  time.Now().UTC(),
			Source:     p.Source().URL,
			Rows:       snap.Stats.TotalRows,
			SnapshotID: snap.ID,
		})
	}
}
