package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"purchdash/internal/alerts"
	apierrors "purchdash/internal/errors"
	"purchdash/internal/services"
	"purchdash/internal/websocket"
)

// AlertsHandler serves on-demand alert notification and contract
// reminder dispatch.
type AlertsHandler struct {
	service      *services.DashboardService
	notifier     *alerts.Notifier
	hub          *websocket.Hub
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAlertsHandler wires the handler over the service and notifier.
func NewAlertsHandler(service *services.DashboardService, notifier *alerts.Notifier, hub *websocket.Hub, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AlertsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertsHandler{
		service:      service,
		notifier:     notifier,
		hub:          hub,
		logger:       logger.With(slog.String("component", "alerts_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the alert routes.
func (h *AlertsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/notify", h.Notify)
	return r
}

type notifyRequest struct {
	Filters    services.FilterRequest `json:"filters"`
	Thresholds alerts.Thresholds      `json:"thresholds"`
}

type notifyResponse struct {
	Alerts []string            `json:"alerts"`
	Result alerts.NotifyResult `json:"result"`
}

// Notify re-evaluates alerts for the selection and emails each one to
// the configured recipient. A missing relay yields zero sends plus a
// warning, not an error.
func (h *AlertsHandler) Notify(w http.ResponseWriter, r *http.Request) {
	var req notifyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	found, err := h.service.EvaluateAlerts(r.Context(), req.Filters, req.Thresholds)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result := h.notifier.NotifyAll(r.Context(), found)
	if h.hub != nil {
		h.hub.Broadcast(websocket.TypeAlertsChanged, map[string]int{"alerts": len(found)})
	}

	resp := notifyResponse{Result: result}
	for _, a := range found {
		resp.Alerts = append(resp.Alerts, a.Message)
	}
	render.JSON(w, r, resp)
}

// ContractsHandler serves contract reminder dispatch.
type ContractsHandler struct {
	service      *services.DashboardService
	notifier     *alerts.Notifier
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewContractsHandler wires the handler.
func NewContractsHandler(service *services.DashboardService, notifier *alerts.Notifier, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ContractsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContractsHandler{
		service:      service,
		notifier:     notifier,
		logger:       logger.With(slog.String("component", "contracts_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the contract routes.
func (h *ContractsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/reminders", h.SendReminders)
	return r
}

type remindersRequest struct {
	Filters services.FilterRequest `json:"filters"`
}

type remindersResponse struct {
	Reminders int                 `json:"reminders"`
	Result    alerts.NotifyResult `json:"result"`
}

// SendReminders emails every responsible whose filtered contract expires
// inside the reminder window.
func (h *ContractsHandler) SendReminders(w http.ResponseWriter, r *http.Request) {
	var req remindersRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	reminders, err := h.service.ExpiringReminders(r.Context(), req.Filters)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result := h.notifier.SendReminders(r.Context(), reminders)
	render.JSON(w, r, remindersResponse{Reminders: len(reminders), Result: result})
}
