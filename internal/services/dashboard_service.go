// Package services orchestrates loading, filtering, analytics and
// alerting into the responses the HTTP layer serves. Services are
// stateless between requests; every interaction rebuilds its view from
// the loader's cached snapshot.
package services

import (
	"context"
	"log/slog"
	"time"

	"purchdash/internal/alerts"
	"purchdash/internal/analytics"
	"purchdash/internal/config"
	apierrors "purchdash/internal/errors"
	"purchdash/internal/filter"
	"purchdash/internal/loader"
	"purchdash/pkg/contracts/domain"
)

// FilterRequest is the client's filter selection across the three record
// sets. Omitted slices select everything; present-but-empty slices are a
// deliberate zero-row selection.
type FilterRequest struct {
	Suppliers   []string   `json:"suppliers"`
	Departments []string   `json:"departments"`
	Types       []string   `json:"types"`
	Statuses    []string   `json:"statuses"`
	Divisions   []string   `json:"divisions"`
	From        *time.Time `json:"from"`
	To          *time.Time `json:"to"`
	Search      string     `json:"search"`
}

// DashboardRequest drives one full dashboard rebuild.
type DashboardRequest struct {
	Filters           FilterRequest       `json:"filters"`
	Thresholds        alerts.Thresholds   `json:"thresholds"`
	ForecastDimension analytics.Dimension `json:"forecast_dimension" validate:"omitempty,oneof=department supplier"`
	ForecastValue     string              `json:"forecast_value"`
	ReorderThreshold  float64             `json:"reorder_threshold"`
}

// Views carries the filtered record sets plus accumulated warnings.
// AllOrders and AllTerms hold the unfiltered snapshot rows; the header
// summary is global and must not shrink with the selection.
type Views struct {
	Orders    []domain.PurchaseOrder
	Terms     []domain.PaymentTerm
	Contracts []domain.Contract
	AllOrders []domain.PurchaseOrder
	AllTerms  []domain.PaymentTerm
	Warnings  []string
}

// DashboardResponse is the full recomputed dashboard state, filtered
// rows included; the client renders its tables straight from it.
type DashboardResponse struct {
	Orders         []domain.PurchaseOrder        `json:"orders"`
	Terms          []domain.PaymentTerm          `json:"terms"`
	Contracts      []domain.Contract             `json:"contracts"`
	Summary        analytics.Summary             `json:"summary"`
	MonthlySpend   []analytics.GroupSum          `json:"monthly_spend"`
	AnnualSpend    []analytics.GroupSum          `json:"annual_spend"`
	StatusCounts   []analytics.CountItem         `json:"status_counts"`
	TypeCounts     []analytics.CountItem         `json:"type_counts"`
	TermKPIs       analytics.TermKPIs            `json:"term_kpis"`
	DivisionKPIs   []analytics.DivisionKPI       `json:"division_kpis"`
	OldDayBuckets  []analytics.CountItem         `json:"old_day_buckets"`
	NewDayBuckets  []analytics.CountItem         `json:"new_day_buckets"`
	Heatmap        []analytics.HeatmapCell       `json:"heatmap"`
	SupplierScores []analytics.SupplierScore     `json:"supplier_scores,omitempty"`
	Reorder        []analytics.ReorderSuggestion `json:"reorder,omitempty"`
	Forecast       analytics.ForecastResult      `json:"forecast"`
	Alerts         []domain.Alert                `json:"alerts"`
	OrderCount     int                           `json:"order_count"`
	TermCount      int                           `json:"term_count"`
	ContractCount  int                           `json:"contract_count"`
	Warnings       []string                      `json:"warnings,omitempty"`
}

// DashboardService composes the dashboard from the cached snapshot.
type DashboardService struct {
	loader    *loader.Loader
	evaluator *alerts.Evaluator
	alertsCfg config.AlertsConfig
	logger    *slog.Logger
}

// NewDashboardService wires the service over a loader and alert policy.
func NewDashboardService(l *loader.Loader, cfg config.AlertsConfig, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:    l,
		evaluator: alerts.NewEvaluator(cfg, logger),
		alertsCfg: cfg,
		logger:    logger.With(slog.String("component", "dashboard_service")),
	}
}

// Build recomputes the full dashboard for one filter interaction.
func (s *DashboardService) Build(ctx context.Context, req DashboardRequest) (*DashboardResponse, error) {
	views, err := s.FilteredViews(ctx, req.Filters)
	if err != nil {
		return nil, err
	}

	dim := req.ForecastDimension
	if dim == "" {
		dim = analytics.ByDepartment
	}

	resp := &DashboardResponse{
		Orders:        views.Orders,
		Terms:         views.Terms,
		Contracts:     views.Contracts,
		Summary:       analytics.Summarize(views.AllOrders, views.AllTerms, s.alertsCfg.PendingStatus),
		MonthlySpend:  analytics.MonthlyByDimension(views.Orders, dim),
		AnnualSpend:   analytics.AnnualByDimension(views.Orders, dim),
		StatusCounts:  analytics.StatusDistribution(views.Orders),
		TypeCounts:    analytics.TypeDistribution(views.Orders),
		TermKPIs:      analytics.ComputeTermKPIs(views.Terms),
		DivisionKPIs:  analytics.DivisionKPIs(views.Terms),
		OldDayBuckets: analytics.DayDistribution(views.Terms, analytics.OldTerms),
		NewDayBuckets: analytics.DayDistribution(views.Terms, analytics.NewTerms),
		Heatmap:       analytics.Heatmap(views.Terms),
		Forecast:      analytics.Forecast(views.Orders, dim, req.ForecastValue),
		Alerts:        s.evaluator.Evaluate(views.Orders, views.Terms, views.Contracts, req.Thresholds),
		OrderCount:    len(views.Orders),
		TermCount:     len(views.Terms),
		ContractCount: len(views.Contracts),
		Warnings:      views.Warnings,
	}
	if len(req.Filters.Suppliers) > 0 {
		resp.SupplierScores = analytics.CompareSuppliers(views.Orders, views.Terms, req.Filters.Suppliers, s.alertsCfg.PendingStatus)
	}
	if len(req.Filters.Types) > 0 {
		resp.Reorder = analytics.ReorderSuggestions(views.Orders, req.Filters.Types, req.ReorderThreshold)
	}

	s.logger.InfoContext(ctx, "dashboard rebuilt",
		slog.Int("orders", resp.OrderCount),
		slog.Int("terms", resp.TermCount),
		slog.Int("contracts", resp.ContractCount),
		slog.Int("alerts", len(resp.Alerts)))
	return resp, nil
}

// FilteredViews loads the snapshot and applies the filter selection.
func (s *DashboardService) FilteredViews(ctx context.Context, f FilterRequest) (*Views, error) {
	snap, err := s.loader.LoadAll(ctx)
	if err != nil {
		return nil, apierrors.DataLoadError("snapshot", err)
	}

	oc := filter.OrderCriteria{
		Suppliers:   f.Suppliers,
		Departments: f.Departments,
		Types:       f.Types,
		Statuses:    f.Statuses,
		From:        f.From,
		To:          f.To,
		Search:      f.Search,
	}
	tc := filter.TermCriteria{
		Suppliers: f.Suppliers,
		Divisions: f.Divisions,
		Search:    f.Search,
	}
	cc := filter.ContractCriteria{
		Suppliers: f.Suppliers,
		From:      f.From,
		To:        f.To,
		Search:    f.Search,
	}

	views := &Views{
		Orders:    oc.Apply(snap.Orders),
		Terms:     tc.Apply(snap.Terms),
		Contracts: cc.Apply(snap.Contracts),
		AllOrders: snap.Orders,
		AllTerms:  snap.Terms,
		Warnings:  append([]string(nil), snap.Warnings...),
	}
	if oc.EmptySelection() || tc.EmptySelection() || cc.EmptySelection() {
		views.Warnings = append(views.Warnings, "filter selection matches no rows")
	}
	return views, nil
}

// EvaluateAlerts recomputes alerts for the given selection without the
// rest of the dashboard, for the notification endpoint.
func (s *DashboardService) EvaluateAlerts(ctx context.Context, f FilterRequest, t alerts.Thresholds) ([]domain.Alert, error) {
	views, err := s.FilteredViews(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.evaluator.Evaluate(views.Orders, views.Terms, views.Contracts, t), nil
}

// ExpiringReminders builds per-contract reminders for the selection.
func (s *DashboardService) ExpiringReminders(ctx context.Context, f FilterRequest) ([]alerts.Reminder, error) {
	views, err := s.FilteredViews(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.evaluator.ExpiringReminders(views.Contracts), nil
}
