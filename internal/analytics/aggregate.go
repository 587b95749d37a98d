// Package analytics computes the derived figures behind the dashboard
// views: time-bucketed aggregations, payment-term KPIs, supplier
// comparisons and the purchase forecast. Everything operates on filtered
// views and returns plain result structs; rendering is someone else's job.
package analytics

import (
	"sort"

	"purchdash/pkg/contracts/domain"
)

// Dimension selects the secondary grouping axis.
type Dimension string

const (
	ByDepartment Dimension = "department"
	BySupplier   Dimension = "supplier"
)

func (d Dimension) valueOf(po domain.PurchaseOrder) string {
	if d == BySupplier {
		return po.Supplier
	}
	return po.Department
}

// GroupSum is one bucket of a grouped aggregation.
type GroupSum struct {
	Bucket    string  `json:"bucket"`
	Dimension string  `json:"dimension,omitempty"`
	Amount    float64 `json:"amount"`
	Quantity  float64 `json:"quantity"`
}

// MonthlyByDimension groups orders by calendar month and the given
// dimension, summing amount and quantity. Orders without a date are
// skipped. Buckets come back sorted by month then dimension value.
func MonthlyByDimension(orders []domain.PurchaseOrder, dim Dimension) []GroupSum {
	type key struct{ bucket, dimension string }
	sums := make(map[key]*GroupSum)
	for _, po := range orders {
		if po.Date == nil {
			continue
		}
		k := key{po.Date.Format("2006-01"), dim.valueOf(po)}
		g, ok := sums[k]
		if !ok {
			g = &GroupSum{Bucket: k.bucket, Dimension: k.dimension}
			sums[k] = g
		}
		g.Amount += po.Amount()
		g.Quantity += po.Qty()
	}
	return sortGroups(sums)
}

// AnnualByDimension is MonthlyByDimension with calendar-year buckets.
func AnnualByDimension(orders []domain.PurchaseOrder, dim Dimension) []GroupSum {
	type key struct{ bucket, dimension string }
	sums := make(map[key]*GroupSum)
	for _, po := range orders {
		if po.Date == nil {
			continue
		}
		k := key{po.Date.Format("2006"), dim.valueOf(po)}
		g, ok := sums[k]
		if !ok {
			g = &GroupSum{Bucket: k.bucket, Dimension: k.dimension}
			sums[k] = g
		}
		g.Amount += po.Amount()
		g.Quantity += po.Qty()
	}
	return sortGroups(sums)
}

func sortGroups[K comparable](sums map[K]*GroupSum) []GroupSum {
	out := make([]GroupSum, 0, len(sums))
	for _, g := range sums {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bucket != out[j].Bucket {
			return out[i].Bucket < out[j].Bucket
		}
		return out[i].Dimension < out[j].Dimension
	})
	return out
}

// CountItem is one slice of a categorical distribution.
type CountItem struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// StatusDistribution counts orders per status, sorted by label.
func StatusDistribution(orders []domain.PurchaseOrder) []CountItem {
	return distribution(orders, func(po domain.PurchaseOrder) string { return po.Status })
}

// TypeDistribution counts orders per purchase type, sorted by label.
func TypeDistribution(orders []domain.PurchaseOrder) []CountItem {
	return distribution(orders, func(po domain.PurchaseOrder) string { return po.PurchaseType })
}

func distribution(orders []domain.PurchaseOrder, get func(domain.PurchaseOrder) string) []CountItem {
	counts := make(map[string]int)
	for _, po := range orders {
		counts[get(po)]++
	}
	out := make([]CountItem, 0, len(counts))
	for label, n := range counts {
		out = append(out, CountItem{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Summary holds the global header metrics.
type Summary struct {
	TotalOrders   int     `json:"total_orders"`
	PendingOrders int     `json:"pending_orders"`
	TotalTurnover float64 `json:"total_turnover"`
}

// Summarize computes the global summary over the unfiltered record sets.
func Summarize(orders []domain.PurchaseOrder, terms []domain.PaymentTerm, pendingStatus string) Summary {
	s := Summary{TotalOrders: len(orders)}
	for _, po := range orders {
		if po.Status == pendingStatus {
			s.PendingOrders++
		}
	}
	for _, pt := range terms {
		s.TotalTurnover += pt.Turnover()
	}
	return s
}

// ReorderSuggestion flags a purchase type whose total ordered quantity sits
// under the reorder threshold.
type ReorderSuggestion struct {
	PurchaseType string  `json:"purchase_type"`
	Quantity     float64 `json:"quantity"`
	Reorder      bool    `json:"reorder"`
}

// ReorderSuggestions sums quantities per selected purchase type and flags
// the ones below the threshold.
func ReorderSuggestions(orders []domain.PurchaseOrder, types []string, threshold float64) []ReorderSuggestion {
	selected := make(map[string]bool, len(types))
	for _, t := range types {
		selected[t] = true
	}
	sums := make(map[string]float64)
	for _, po := range orders {
		if selected[po.PurchaseType] {
			sums[po.PurchaseType] += po.Qty()
		}
	}
	out := make([]ReorderSuggestion, 0, len(sums))
	for pt, qty := range sums {
		out = append(out, ReorderSuggestion{PurchaseType: pt, Quantity: qty, Reorder: qty < threshold})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchaseType < out[j].PurchaseType })
	return out
}
