// Package httphandler is the HTTP driving adapter serving the JSON intent API.
package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"log/slog"

	"github.com/ericfisherdev/reviewdeck/internal/application"
	"github.com/ericfisherdev/reviewdeck/internal/domain/model"
)

// Handler is the HTTP driving adapter. It translates presentation intents
// (reload, retry, updateQuery, clearQuery, updateFilterConfiguration,
// clearAllFilters) into service calls.
type Handler struct {
	svc    *application.ReviewService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(svc *application.ReviewService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/pulls", h.ListPulls)
	mux.HandleFunc("POST /api/v1/reload", h.Reload)
	mux.HandleFunc("PUT /api/v1/query", h.UpdateQuery)
	mux.HandleFunc("DELETE /api/v1/query", h.ClearQuery)
	mux.HandleFunc("PUT /api/v1/filters", h.UpdateFilters)
	mux.HandleFunc("DELETE /api/v1/filters", h.ClearFilters)
	mux.HandleFunc("GET /api/v1/filters/metadata", h.FilterMetadata)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListPulls returns the filtered, ranked working set with enrichment
// snapshots where available.
func (h *Handler) ListPulls(w http.ResponseWriter, r *http.Request) {
	items, enriching, advisory := h.svc.Presented()

	resp := PullsResponse{
		Items:     make([]PRItemResponse, 0, len(items)),
		Enriching: enriching,
		Advisory:  advisory,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toPRItemResponse(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Reload rebuilds the working set. It doubles as the retry intent after a
// failed aggregation; failures are returned with their classified kind.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		h.logger.Error("reload failed", "kind", model.KindOf(err), "error", err)
		writeUpstreamError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// UpdateQuery sets the immediate free-text query; the debounced value used
// for matching follows after the debounce interval.
func (h *Handler) UpdateQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.svc.State().SetQuery(req.Query)
	w.WriteHeader(http.StatusNoContent)
}

// ClearQuery resets the query immediately, bypassing the debounce.
func (h *Handler) ClearQuery(w http.ResponseWriter, r *http.Request) {
	h.svc.State().ClearQuery()
	w.WriteHeader(http.StatusNoContent)
}

// UpdateFilters replaces the filter configuration wholesale. The
// configuration actually applied is returned: team selections may have been
// stripped when the roster is unavailable.
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req FilterConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applied := h.svc.State().SetConfiguration(r.Context(), model.FilterConfiguration{
		Organizations: req.Organizations,
		Repositories:  req.Repositories,
		Teams:         req.Teams,
	})

	writeJSON(w, http.StatusOK, FilterConfigRequest{
		Organizations: applied.Organizations,
		Repositories:  applied.Repositories,
		Teams:         applied.Teams,
	})
}

// ClearFilters resets the filter configuration to no restrictions.
func (h *Handler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	h.svc.State().ClearFilters(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// FilterMetadata returns the filter choice lists derived from the current
// working set plus the team roster state.
func (h *Handler) FilterMetadata(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toFilterMetadataResponse(h.svc.FilterMetadata()))
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeUpstreamError maps a classified aggregation failure to an HTTP status
// and response body. The kind set is closed, so the switch is exhaustive.
func writeUpstreamError(w http.ResponseWriter, err error) {
	kind := model.KindOf(err)

	var status int
	switch kind {
	case model.ErrorUnauthorized:
		status = http.StatusUnauthorized
	case model.ErrorRateLimited:
		status = http.StatusTooManyRequests
	case model.ErrorForbidden:
		status = http.StatusForbidden
	case model.ErrorNotFound:
		status = http.StatusNotFound
	case model.ErrorServer, model.ErrorNetwork, model.ErrorMalformed:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	resp := errorResponse{Error: err.Error(), Kind: string(kind)}
	if reset := model.RateLimitResetOf(err); !reset.IsZero() {
		resp.RateLimitReset = reset.Format(time.RFC3339)
	}

	writeJSON(w, status, resp)
}
