package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter(graphqlHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	// Public — no auth required.
	r.Get("/health", g.handleHealth())
	r.Handle("/graphql", g.metrics.instrument(graphqlHandler))
	r.Handle("/metrics", promhttp.Handler())

	// Status endpoint — auth required. Not mounted if no auth configured.
	if g.config.Auth.IsConfigured() {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(g.config.Auth))
			r.Get("/status", g.handleStatus())
		})
	}

	return r
}
