package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime    time.Duration   `json:"uptime_seconds"`
	Metrics   MetricsSnapshot `json:"metrics"`
	Customers int64           `json:"customers"`
	Orders    int64           `json:"orders"`
	Revenue   string          `json:"revenue"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatusResponse{
			Uptime:  time.Since(g.startedAt).Truncate(time.Second),
			Metrics: g.metrics.Snapshot(),
		}

		if stats, err := g.store.Stats(r.Context()); err == nil {
			resp.Customers = stats.Customers
			resp.Orders = stats.Orders
			resp.Revenue = stats.Revenue.StringFixed(2)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
