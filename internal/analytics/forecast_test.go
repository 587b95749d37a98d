package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchdash/pkg/contracts/domain"
)

func order(supplier, dept string, amount float64, y int, m time.Month, d int) domain.PurchaseOrder {
	date := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return domain.PurchaseOrder{
		PONumber:   "PO",
		Supplier:   supplier,
		Department: dept,
		AmountEUR:  &amount,
		Date:       &date,
	}
}

func TestForecastSinglePointNoProjection(t *testing.T) {
	orders := []domain.PurchaseOrder{
		order("Acme", "IT", 1000, 2024, time.January, 15),
		order("Acme", "IT", 500, 2024, time.January, 20),
	}

	res := Forecast(orders, ByDepartment, "IT")

	require.Len(t, res.History, 1, "two orders in one month collapse to one point")
	assert.InDelta(t, 1500, res.History[0].Amount, 1e-9)
	assert.Nil(t, res.Projection, "forecast disabled below two monthly points")
}

func TestForecastNoMatchingRows(t *testing.T) {
	orders := []domain.PurchaseOrder{order("Acme", "IT", 100, 2024, time.January, 1)}
	res := Forecast(orders, ByDepartment, "Finance")
	assert.Empty(t, res.History)
	assert.Nil(t, res.Projection)
}

func TestForecastLinearTrend(t *testing.T) {
	// Perfectly linear in day offset: amount = 100 + 10*days.
	var orders []domain.PurchaseOrder
	months := []time.Month{time.January, time.February, time.March, time.April}
	origin := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for _, m := range months {
		date := time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC)
		days := date.Sub(origin).Hours() / 24
		orders = append(orders, order("Acme", "IT", 100+10*days, 2024, m, 1))
	}

	res := Forecast(orders, BySupplier, "Acme")

	require.Len(t, res.History, 4)
	require.Len(t, res.Projection, 6)
	assert.InDelta(t, 10, res.Slope, 1e-6)
	assert.InDelta(t, 100, res.Intercept, 1e-6)

	// First projected month is May 2024, evaluated on the same line.
	first := res.Projection[0]
	assert.Equal(t, time.May, first.Month.Month())
	days := first.Month.Sub(origin).Hours() / 24
	assert.InDelta(t, 100+10*days, first.Amount, 1e-6)

	// Six consecutive months, no gaps.
	for i := 1; i < len(res.Projection); i++ {
		assert.Equal(t, res.Projection[i-1].Month.AddDate(0, 1, 0), res.Projection[i].Month)
	}
}

func TestForecastLeastSquaresResidualMinimum(t *testing.T) {
	orders := []domain.PurchaseOrder{
		order("Acme", "IT", 100, 2024, time.January, 1),
		order("Acme", "IT", 250, 2024, time.February, 1),
		order("Acme", "IT", 180, 2024, time.March, 1),
	}

	res := Forecast(orders, BySupplier, "Acme")
	require.Len(t, res.Projection, 6)

	// Perturbing the fitted coefficients must not reduce the squared error.
	origin := res.History[0].Month
	sse := func(alpha, beta float64) float64 {
		var total float64
		for _, p := range res.History {
			days := p.Month.Sub(origin).Hours() / 24
			r := p.Amount - (alpha + beta*days)
			total += r * r
		}
		return total
	}
	best := sse(res.Intercept, res.Slope)
	for _, d := range []float64{-1, 1, -0.1, 0.1} {
		assert.GreaterOrEqual(t, sse(res.Intercept+d, res.Slope), best)
		assert.GreaterOrEqual(t, sse(res.Intercept, res.Slope+d), best)
	}
}

func TestForecastNegativeValuesNotClamped(t *testing.T) {
	orders := []domain.PurchaseOrder{
		order("Acme", "IT", 1000, 2024, time.January, 1),
		order("Acme", "IT", 100, 2024, time.February, 1),
	}

	res := Forecast(orders, BySupplier, "Acme")
	require.Len(t, res.Projection, 6)
	assert.Less(t, res.Projection[5].Amount, 0.0, "steeply falling trend projects below zero")
}
