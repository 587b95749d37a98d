package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"purchdash/internal/analytics"
	apierrors "purchdash/internal/errors"
	"purchdash/internal/exporter"
	"purchdash/internal/services"
)

const (
	pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler renders the filtered views into downloadable artifacts.
type ExportHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler wires the handler over the dashboard service.
func NewExportHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/pptx", h.PPTX)
	r.Post("/xlsx", h.XLSX)
	r.Post("/chart", h.Chart)
	return r
}

type exportRequest struct {
	Filters           services.FilterRequest `json:"filters"`
	Title             string                 `json:"title"`
	Chart             string                 `json:"chart"`
	Charts            []string               `json:"charts"`
	ForecastDimension analytics.Dimension    `json:"forecast_dimension"`
	ForecastValue     string                 `json:"forecast_value"`
}

// chartNames lists the charts a request asks for. The singular field
// keeps single-chart callers working; with neither set the deck gets
// the monthly spend chart.
func (req exportRequest) chartNames() []string {
	if len(req.Charts) > 0 {
		return req.Charts
	}
	return []string{req.Chart}
}

// PPTX builds the report deck: a chart slide carrying every requested
// figure, then one table slide per record set.
func (h *ExportHandler) PPTX(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	views, err := h.service.FilteredViews(r.Context(), req.Filters)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var charts []exporter.Chart
	for _, name := range req.chartNames() {
		caption, png, err := h.renderChart(name, req, views)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		charts = append(charts, exporter.Chart{Name: caption, PNG: png})
	}

	title := req.Title
	if title == "" {
		title = "Indirect Purchases Report"
	}
	deck, err := exporter.WritePPTX(title, charts, []exporter.Table{
		exporter.OrdersTable(views.Orders),
		exporter.TermsTable(views.Terms),
		exporter.ContractsTable(views.Contracts),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.sendAttachment(w, deck, pptxContentType, "pptx")
}

// XLSX builds a workbook with one sheet per record set.
func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	views, err := h.service.FilteredViews(r.Context(), req.Filters)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	book, err := exporter.WriteXLSX([]exporter.Table{
		exporter.OrdersTable(views.Orders),
		exporter.TermsTable(views.Terms),
		exporter.ContractsTable(views.Contracts),
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.sendAttachment(w, book, xlsxContentType, "xlsx")
}

// Chart renders one standalone chart PNG.
func (h *ExportHandler) Chart(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	views, err := h.service.FilteredViews(r.Context(), req.Filters)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	_, png, err := h.renderChart(req.Chart, req, views)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// renderChart picks the requested chart kind; monthly spend is the
// default when the request does not name one.
func (h *ExportHandler) renderChart(kind string, req exportRequest, views *services.Views) (string, []byte, error) {
	dim := req.ForecastDimension
	if dim == "" {
		dim = analytics.ByDepartment
	}

	var caption string
	var png []byte
	var err error
	switch kind {
	case "forecast":
		caption = "Spend forecast"
		png, err = exporter.ForecastLineChart(analytics.Forecast(views.Orders, dim, req.ForecastValue))
	case "status":
		caption = "Orders by status"
		png, err = exporter.DistributionBarChart(caption, analytics.StatusDistribution(views.Orders))
	case "type":
		caption = "Orders by purchase type"
		png, err = exporter.DistributionBarChart(caption, analytics.TypeDistribution(views.Orders))
	case "", "monthly":
		caption = "Monthly spend"
		png, err = exporter.MonthlyBarChart(caption, analytics.MonthlyByDimension(views.Orders, dim))
	default:
		return "", nil, apierrors.ErrValidation("chart", fmt.Sprintf("unknown chart %q", kind))
	}
	return caption, png, err
}

func (h *ExportHandler) sendAttachment(w http.ResponseWriter, data []byte, contentType, ext string) {
	name := fmt.Sprintf("purchases-report-%s.%s", time.Now().Format("2006-01-02"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
