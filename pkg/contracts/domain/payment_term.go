package domain

import (
	"strconv"
	"strings"
)

// PaymentTerm captures a supplier's negotiated payment terms. OldDays and
// NewDays refer to the same supplier's terms before and after negotiation;
// the KPI math relies on that pairing.
type PaymentTerm struct {
	Supplier         string   `json:"supplier" validate:"required"`
	OldDays          *float64 `json:"old_days"`
	NewDays          *float64 `json:"new_days"`
	TurnoverEUR      *float64 `json:"turnover_eur"`
	Division         string   `json:"division"`
	PaymentCondition string   `json:"payment_condition"`
	PaymentDelayDays *float64 `json:"payment_delay_days"`
}

// RowText returns the concatenation of every field for full-row search.
func (pt PaymentTerm) RowText() string {
	parts := []string{pt.Supplier, pt.Division, pt.PaymentCondition}
	for _, v := range []*float64{pt.OldDays, pt.NewDays, pt.TurnoverEUR, pt.PaymentDelayDays} {
		if v != nil {
			parts = append(parts, strconv.FormatFloat(*v, 'f', -1, 64))
		}
	}
	return strings.Join(parts, " ")
}

// Turnover returns the coerced turnover or zero when the cell was unparseable.
func (pt PaymentTerm) Turnover() float64 {
	if pt.TurnoverEUR == nil {
		return 0
	}
	return *pt.TurnoverEUR
}

// Delay returns the coerced payment delay in days, zero when unparseable.
func (pt PaymentTerm) Delay() float64 {
	if pt.PaymentDelayDays == nil {
		return 0
	}
	return *pt.PaymentDelayDays
}
