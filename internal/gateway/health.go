package gateway

import (
	"encoding/json"
	"net/http"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status   string `json:"status"` // "ok" or "degraded"
	Database string `json:"database"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 200 if the database answers a ping, 503 otherwise.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:   "ok",
			Database: "ok",
		}

		if err := g.store.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = err.Error()
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status == "degraded" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
