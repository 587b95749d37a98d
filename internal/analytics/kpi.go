package analytics

import (
	"math"
	"sort"

	"purchdash/pkg/contracts/domain"
)

// TermKPIs are the headline payment-term indicators.
type TermKPIs struct {
	TurnoverTotal  float64 `json:"turnover_total"`
	ImprovementPct float64 `json:"improvement_pct"`
	CashFlowGain   float64 `json:"cash_flow_gain"`
}

// ComputeTermKPIs derives the payment-term KPIs from a filtered view.
// Improvement is the share of suppliers whose new terms beat the old ones;
// cash-flow gain values each day of extra credit at turnover/360.
func ComputeTermKPIs(terms []domain.PaymentTerm) TermKPIs {
	var k TermKPIs
	improved := 0
	for _, pt := range terms {
		k.TurnoverTotal += pt.Turnover()
		if pt.NewDays != nil && pt.OldDays != nil {
			if *pt.NewDays < *pt.OldDays {
				improved++
			}
			k.CashFlowGain += (*pt.OldDays - *pt.NewDays) * pt.Turnover() / 360
		}
	}
	if len(terms) > 0 {
		k.ImprovementPct = float64(improved) / float64(len(terms)) * 100
	}
	return k
}

// DivisionKPI aggregates payment terms per division.
type DivisionKPI struct {
	Division       string  `json:"division"`
	TurnoverTotal  float64 `json:"turnover_total"`
	MeanNewDays    float64 `json:"mean_new_days"`
	MeanOldDays    float64 `json:"mean_old_days"`
	ImprovementPct float64 `json:"improvement_pct"`
}

// DivisionKPIs groups terms per division: turnover sum, mean old/new days
// and the relative improvement (old-new)/old, rounded to two decimals.
func DivisionKPIs(terms []domain.PaymentTerm) []DivisionKPI {
	type acc struct {
		turnover           float64
		oldSum, newSum     float64
		oldCount, newCount int
	}
	byDiv := make(map[string]*acc)
	for _, pt := range terms {
		a, ok := byDiv[pt.Division]
		if !ok {
			a = &acc{}
			byDiv[pt.Division] = a
		}
		a.turnover += pt.Turnover()
		if pt.OldDays != nil {
			a.oldSum += *pt.OldDays
			a.oldCount++
		}
		if pt.NewDays != nil {
			a.newSum += *pt.NewDays
			a.newCount++
		}
	}

	out := make([]DivisionKPI, 0, len(byDiv))
	for div, a := range byDiv {
		k := DivisionKPI{Division: div, TurnoverTotal: a.turnover}
		if a.oldCount > 0 {
			k.MeanOldDays = a.oldSum / float64(a.oldCount)
		}
		if a.newCount > 0 {
			k.MeanNewDays = a.newSum / float64(a.newCount)
		}
		if k.MeanOldDays != 0 {
			k.ImprovementPct = math.Round((k.MeanOldDays-k.MeanNewDays)/k.MeanOldDays*100*100) / 100
		}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Division < out[j].Division })
	return out
}

// DayBucket labels for the payment-term distribution.
const (
	BucketUpTo45 = "<=45 days"
	Bucket45To60 = "45-60 days"
	BucketOver60 = ">=60 days"
)

// TermSide selects which negotiated value a distribution runs over.
type TermSide string

const (
	OldTerms TermSide = "old"
	NewTerms TermSide = "new"
)

// DayDistribution buckets the old or new payment days into the three
// ranges the dashboard pies show. Rows without a value are skipped.
func DayDistribution(terms []domain.PaymentTerm, side TermSide) []CountItem {
	counts := map[string]int{BucketUpTo45: 0, Bucket45To60: 0, BucketOver60: 0}
	for _, pt := range terms {
		v := pt.NewDays
		if side == OldTerms {
			v = pt.OldDays
		}
		if v == nil {
			continue
		}
		switch {
		case *v <= 45:
			counts[BucketUpTo45]++
		case *v <= 60:
			counts[Bucket45To60]++
		default:
			counts[BucketOver60]++
		}
	}
	return []CountItem{
		{Label: BucketUpTo45, Count: counts[BucketUpTo45]},
		{Label: Bucket45To60, Count: counts[Bucket45To60]},
		{Label: BucketOver60, Count: counts[BucketOver60]},
	}
}

// HeatmapCell is one supplier x division aggregate.
type HeatmapCell struct {
	Supplier    string  `json:"supplier"`
	Division    string  `json:"division"`
	Turnover    float64 `json:"turnover"`
	MeanNewDays float64 `json:"mean_new_days"`
}

// Heatmap pivots terms by supplier and division, summing turnover and
// averaging new days per cell.
func Heatmap(terms []domain.PaymentTerm) []HeatmapCell {
	type key struct{ supplier, division string }
	type acc struct {
		turnover float64
		daySum   float64
		dayCount int
	}
	cells := make(map[key]*acc)
	for _, pt := range terms {
		k := key{pt.Supplier, pt.Division}
		a, ok := cells[k]
		if !ok {
			a = &acc{}
			cells[k] = a
		}
		a.turnover += pt.Turnover()
		if pt.NewDays != nil {
			a.daySum += *pt.NewDays
			a.dayCount++
		}
	}

	out := make([]HeatmapCell, 0, len(cells))
	for k, a := range cells {
		c := HeatmapCell{Supplier: k.supplier, Division: k.division, Turnover: a.turnover}
		if a.dayCount > 0 {
			c.MeanNewDays = a.daySum / float64(a.dayCount)
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Supplier != out[j].Supplier {
			return out[i].Supplier < out[j].Supplier
		}
		return out[i].Division < out[j].Division
	})
	return out
}

// SupplierScore is one supplier's normalized comparison metrics, each
// scaled to [0,1] across the compared set.
type SupplierScore struct {
	Supplier    string  `json:"supplier"`
	Amount      float64 `json:"amount"`
	Quantity    float64 `json:"quantity"`
	PendingRate float64 `json:"pending_rate"`
	NewDays     float64 `json:"new_days"`
	OrderCount  int     `json:"order_count"`
}

// CompareSuppliers builds min-max normalized comparison scores for the
// selected suppliers. NewDays merges in from the payment terms; missing
// suppliers stay at zero. The small epsilon keeps a flat metric from
// dividing by zero.
func CompareSuppliers(orders []domain.PurchaseOrder, terms []domain.PaymentTerm, suppliers []string, pendingStatus string) []SupplierScore {
	if len(suppliers) == 0 {
		return nil
	}

	newDays := make(map[string]float64, len(terms))
	for _, pt := range terms {
		if pt.NewDays != nil {
			if _, seen := newDays[pt.Supplier]; !seen {
				newDays[pt.Supplier] = *pt.NewDays
			}
		}
	}

	scores := make([]SupplierScore, 0, len(suppliers))
	for _, s := range suppliers {
		score := SupplierScore{Supplier: s, NewDays: newDays[s]}
		pending := 0
		for _, po := range orders {
			if po.Supplier != s {
				continue
			}
			score.OrderCount++
			score.Amount += po.Amount()
			score.Quantity += po.Qty()
			if po.Status == pendingStatus {
				pending++
			}
		}
		if score.OrderCount > 0 {
			score.PendingRate = float64(pending) / float64(score.OrderCount) * 100
		}
		scores = append(scores, score)
	}

	normalize(scores, func(s *SupplierScore) *float64 { return &s.Amount })
	normalize(scores, func(s *SupplierScore) *float64 { return &s.Quantity })
	normalize(scores, func(s *SupplierScore) *float64 { return &s.PendingRate })
	normalize(scores, func(s *SupplierScore) *float64 { return &s.NewDays })
	return scores
}

func normalize(scores []SupplierScore, get func(*SupplierScore) *float64) {
	if len(scores) == 0 {
		return
	}
	min, max := math.Inf(1), math.Inf(-1)
	for i := range scores {
		v := *get(&scores[i])
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	for i := range scores {
		p := get(&scores[i])
		*p = (*p - min) / (max - min + 1e-6)
	}
}
