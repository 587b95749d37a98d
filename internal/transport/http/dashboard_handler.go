// Package http carries the REST surface of the dashboard: filter-driven
// recomputation, alert dispatch, comments, exports and auth.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "purchdash/internal/errors"
	"purchdash/internal/services"
	"purchdash/internal/websocket"
)

// DashboardHandler serves the main recompute endpoint.
type DashboardHandler struct {
	service      *services.DashboardService
	hub          *websocket.Hub
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler wires the handler over the dashboard service.
func NewDashboardHandler(service *services.DashboardService, hub *websocket.Hub, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:      service,
		hub:          hub,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/", h.Build)
	return r
}

// Build recomputes the full dashboard for the posted filter selection.
func (h *DashboardHandler) Build(w http.ResponseWriter, r *http.Request) {
	var req services.DashboardRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("forecast_dimension", err.Error()))
		return
	}

	resp, err := h.service.Build(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.TypeDataRefreshed, map[string]int{
			"orders":    resp.OrderCount,
			"terms":     resp.TermCount,
			"contracts": resp.ContractCount,
		})
	}
	render.JSON(w, r, resp)
}
