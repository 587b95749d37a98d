package domain

import (
	"strconv"
	"strings"
	"time"
)

// PurchaseOrder represents a single purchase order row as loaded from the
// backend table store. Fields that go through type coercion are pointers:
// nil means the source value was absent or unparseable.
type PurchaseOrder struct {
	PONumber     string     `json:"po_number" validate:"required"`
	Supplier     string     `json:"supplier"`
	Department   string     `json:"department"`
	AmountEUR    *float64   `json:"amount_eur"`
	Quantity     *float64   `json:"quantity"`
	Date         *time.Time `json:"date"`
	PurchaseType string     `json:"purchase_type"`
	Status       string     `json:"status"`
}

// RowText returns the concatenation of every field for full-row search.
func (po PurchaseOrder) RowText() string {
	parts := []string{po.PONumber, po.Supplier, po.Department, po.PurchaseType, po.Status}
	if po.AmountEUR != nil {
		parts = append(parts, strconv.FormatFloat(*po.AmountEUR, 'f', -1, 64))
	}
	if po.Quantity != nil {
		parts = append(parts, strconv.FormatFloat(*po.Quantity, 'f', -1, 64))
	}
	if po.Date != nil {
		parts = append(parts, po.Date.Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}

// Amount returns the coerced amount or zero when the cell was unparseable.
func (po PurchaseOrder) Amount() float64 {
	if po.AmountEUR == nil {
		return 0
	}
	return *po.AmountEUR
}

// Qty returns the coerced quantity or zero when the cell was unparseable.
func (po PurchaseOrder) Qty() float64 {
	if po.Quantity == nil {
		return 0
	}
	return *po.Quantity
}
