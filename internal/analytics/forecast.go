package analytics

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"purchdash/pkg/contracts/domain"
)

// forecastHorizon is how many calendar months the fitted line is projected
// forward.
const forecastHorizon = 6

// MonthlyPoint is one month of the forecast series.
type MonthlyPoint struct {
	Month  time.Time `json:"month"`
	Amount float64   `json:"amount"`
}

// ForecastResult carries the observed monthly series and, when enough data
// exists, the projected points. Projection nil means the forecast was
// disabled, not that it failed.
type ForecastResult struct {
	Dimension  Dimension      `json:"dimension"`
	Value      string         `json:"value"`
	History    []MonthlyPoint `json:"history"`
	Projection []MonthlyPoint `json:"projection,omitempty"`
	Slope      float64        `json:"slope,omitempty"`
	Intercept  float64        `json:"intercept,omitempty"`
}

// Forecast fits an ordinary least squares line through the monthly amount
// sums of a single dimension value and evaluates it at the start of each of
// the next six calendar months. Fewer than two distinct monthly points
// disables the projection and returns the raw series unchanged. Forecast
// values are not clamped; a falling trend may project below zero.
func Forecast(orders []domain.PurchaseOrder, dim Dimension, value string) ForecastResult {
	res := ForecastResult{Dimension: dim, Value: value}

	sums := make(map[time.Time]float64)
	for _, po := range orders {
		if po.Date == nil || dim.valueOf(po) != value {
			continue
		}
		month := time.Date(po.Date.Year(), po.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		sums[month] += po.Amount()
	}
	if len(sums) == 0 {
		return res
	}

	for month, amount := range sums {
		res.History = append(res.History, MonthlyPoint{Month: month, Amount: amount})
	}
	sort.Slice(res.History, func(i, j int) bool { return res.History[i].Month.Before(res.History[j].Month) })

	if len(res.History) < 2 {
		return res
	}

	origin := res.History[0].Month
	xs := make([]float64, len(res.History))
	ys := make([]float64, len(res.History))
	for i, p := range res.History {
		xs[i] = dayOffset(origin, p.Month)
		ys[i] = p.Amount
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	res.Intercept, res.Slope = alpha, beta

	last := res.History[len(res.History)-1].Month
	for i := 1; i <= forecastHorizon; i++ {
		month := last.AddDate(0, i, 0)
		res.Projection = append(res.Projection, MonthlyPoint{
			Month:  month,
			Amount: alpha + beta*dayOffset(origin, month),
		})
	}
	return res
}

func dayOffset(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}
