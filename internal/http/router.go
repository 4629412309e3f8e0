// Package httpapi assembles the service router.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	registryhandler "registrar/internal/registry/handler"
)

// NewRouter mounts the registry API next to the operational endpoints.
func NewRouter(registry *registryhandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	registry.Register(r)
	return r
}
