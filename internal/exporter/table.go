// Package exporter renders the dashboard's filtered views into
// downloadable report artifacts: PPTX decks, XLSX workbooks and
// standalone chart images.
package exporter

import (
	"fmt"

	"purchdash/pkg/contracts/domain"
)

// maxTableRows caps per-table output in generated reports. Larger sets
// get a truncation notice row instead of an unbounded dump.
const maxTableRows = 200

// Table is a named, ordered grid ready for rendering. Truncated is set
// when the source had more rows than the cap.
type Table struct {
	Title     string
	Headers   []string
	Rows      [][]string
	Truncated int
}

func capRows[T any](items []T) ([]T, int) {
	if len(items) <= maxTableRows {
		return items, 0
	}
	return items[:maxTableRows], len(items) - maxTableRows
}

// OrdersTable renders purchase orders as a report table.
func OrdersTable(orders []domain.PurchaseOrder) Table {
	kept, truncated := capRows(orders)
	t := Table{
		Title:     "Purchase Orders",
		Headers:   []string{"PO Number", "Supplier", "Department", "Amount (EUR)", "Quantity", "Date", "Type", "Status"},
		Truncated: truncated,
	}
	for _, po := range kept {
		date := ""
		if po.Date != nil {
			date = po.Date.Format("02/01/2006")
		}
		t.Rows = append(t.Rows, []string{
			po.PONumber, po.Supplier, po.Department,
			formatAmount(po.AmountEUR), formatAmount(po.Quantity),
			date, po.PurchaseType, po.Status,
		})
	}
	return t
}

// TermsTable renders payment terms as a report table.
func TermsTable(terms []domain.PaymentTerm) Table {
	kept, truncated := capRows(terms)
	t := Table{
		Title:     "Payment Terms",
		Headers:   []string{"Supplier", "Old Terms (days)", "New Terms (days)", "Turnover (EUR)", "Delay (days)", "Division", "Condition"},
		Truncated: truncated,
	}
	for _, pt := range kept {
		t.Rows = append(t.Rows, []string{
			pt.Supplier,
			formatAmount(pt.OldDays), formatAmount(pt.NewDays),
			formatAmount(pt.TurnoverEUR), formatAmount(pt.PaymentDelayDays),
			pt.Division, pt.PaymentCondition,
		})
	}
	return t
}

// ContractsTable renders contracts as a report table.
func ContractsTable(contracts []domain.Contract) Table {
	kept, truncated := capRows(contracts)
	t := Table{
		Title:     "Contracts",
		Headers:   []string{"Contract ID", "Supplier", "Expiration", "Amount (MAD)", "Responsible"},
		Truncated: truncated,
	}
	for _, c := range kept {
		exp := ""
		if c.ExpirationDate != nil {
			exp = c.ExpirationDate.Format("02/01/2006")
		}
		t.Rows = append(t.Rows, []string{
			c.ContractID, c.Supplier, exp, formatAmount(c.AmountMAD), c.ResponsibleEmail,
		})
	}
	return t
}

// formatAmount renders an optional numeric cell; missing values stay blank.
func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}
