package api

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/siloroute/internal/config"
	"github.com/gyaneshwarpardhi/siloroute/internal/metrics"
	"github.com/gyaneshwarpardhi/siloroute/internal/provider"
	"github.com/gyaneshwarpardhi/siloroute/internal/request"
	"github.com/gyaneshwarpardhi/siloroute/internal/router"
)

// Dispatcher runs the dispatch policy for one captured request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *request.Request) *router.Response
}

// Handler holds all HTTP handler dependencies.
type Handler struct {
	dispatcher Dispatcher
	providers  *provider.Registry
	loader     *config.Loader
	apply      func(*config.Config) error
	ready      func() float64
	wrapped    http.Handler
	mux        *http.ServeMux
}

// New creates the HTTP surface and registers all routes. The route kind is
// fixed here, at registration time: the interactions endpoint is the public
// provider route, link/unlink are internally-signed control routes. apply
// validates and installs a reloaded config; ready reports fan-out queue
// utilization (0–1).
func New(d Dispatcher, providers *provider.Registry, loader *config.Loader, apply func(*config.Config) error, ready func() float64) *Handler {
	h := &Handler{
		dispatcher: d,
		providers:  providers,
		loader:     loader,
		apply:      apply,
		ready:      ready,
		mux:        http.NewServeMux(),
	}

	h.mux.HandleFunc("POST /extensions/{provider}/interactions", h.interactions)
	h.mux.HandleFunc("/extensions/{provider}/link-identity/{signed_params}", h.controlRoute)
	h.mux.HandleFunc("/extensions/{provider}/unlink-identity/{signed_params}", h.controlRoute)
	h.mux.HandleFunc("POST /admin/reload", h.reloadConfig)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	h.wrapped = loggingMiddleware(h.mux)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.wrapped.ServeHTTP(w, r)
}

// POST /extensions/{provider}/interactions — the public provider endpoint.
func (h *Handler) interactions(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	prov, err := h.providers.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	metrics.RequestsReceived.WithLabelValues(name, request.RouteInteractions.String()).Inc()

	req, err := request.Capture(r, prov, request.RouteInteractions, "")
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	writeRouterResponse(w, h.dispatcher.Dispatch(r.Context(), req))
}

// /extensions/{provider}/link-identity/{signed_params} and the unlink twin.
func (h *Handler) controlRoute(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")
	prov, err := h.providers.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	metrics.RequestsReceived.WithLabelValues(name, request.RouteControl.String()).Inc()

	req, err := request.Capture(r, prov, request.RouteControl, r.PathValue("signed_params"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	writeRouterResponse(w, h.dispatcher.Dispatch(r.Context(), req))
}

// POST /admin/reload — force a re-read of the routing map from disk.
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.loader.Reload()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.apply(cfg); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":     true,
		"regions":      len(cfg.Regions),
		"integrations": len(cfg.Integrations),
	})
}

// GET /healthz — always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz — 503 if the fan-out queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.ready()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

// writeRouterResponse proxies the dispatch result back to the caller
// verbatim: status, headers and body unchanged.
func writeRouterResponse(w http.ResponseWriter, resp *router.Response) {
	for name, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
