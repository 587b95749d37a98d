package domain

import (
	"strconv"
	"strings"
	"time"
)

// Contract represents a supplier contract row. ResponsibleEmail is empty
// when the source column is null; reminder dispatch skips those rows.
type Contract struct {
	ContractID       string     `json:"contract_id" validate:"required"`
	Supplier         string     `json:"supplier"`
	ExpirationDate   *time.Time `json:"expiration_date"`
	AmountMAD        *float64   `json:"amount_mad"`
	ResponsibleEmail string     `json:"responsible_email,omitempty"`
}

// RowText returns the concatenation of every field for full-row search.
func (c Contract) RowText() string {
	parts := []string{c.ContractID, c.Supplier, c.ResponsibleEmail}
	if c.AmountMAD != nil {
		parts = append(parts, strconv.FormatFloat(*c.AmountMAD, 'f', -1, 64))
	}
	if c.ExpirationDate != nil {
		parts = append(parts, c.ExpirationDate.Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}

// DaysUntilExpiry returns the whole days between now and the expiration
// date, floored. The second return is false when the date is unknown.
func (c Contract) DaysUntilExpiry(now time.Time) (int, bool) {
	if c.ExpirationDate == nil {
		return 0, false
	}
	return int(c.ExpirationDate.Sub(now).Hours() / 24), true
}
