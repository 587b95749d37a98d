package filter

import (
	"time"

	"purchdash/pkg/contracts/domain"
)

// OrderCriteria is the user's filter selection for purchase orders.
// Nil slices mean "everything"; empty non-nil slices mean "nothing".
type OrderCriteria struct {
	Suppliers   []string
	Departments []string
	Types       []string
	Statuses    []string
	From        *time.Time
	To          *time.Time
	Search      string
}

// Apply filters the orders by the criteria.
func (c OrderCriteria) Apply(orders []domain.PurchaseOrder) []domain.PurchaseOrder {
	return Apply(orders,
		Membership(func(po domain.PurchaseOrder) string { return po.Supplier }, c.Suppliers),
		Membership(func(po domain.PurchaseOrder) string { return po.Department }, c.Departments),
		Membership(func(po domain.PurchaseOrder) string { return po.PurchaseType }, c.Types),
		Membership(func(po domain.PurchaseOrder) string { return po.Status }, c.Statuses),
		DateRange(func(po domain.PurchaseOrder) *time.Time { return po.Date }, c.From, c.To),
		Search[domain.PurchaseOrder](c.Search),
	)
}

// EmptySelection reports a deliberate zero-row selection the UI should
// warn about.
func (c OrderCriteria) EmptySelection() bool {
	return hasEmptySelection(c.Suppliers, c.Departments, c.Types, c.Statuses)
}

// TermCriteria is the user's filter selection for payment terms.
type TermCriteria struct {
	Suppliers []string
	Divisions []string
	Search    string
}

// Apply filters the payment terms by the criteria.
func (c TermCriteria) Apply(terms []domain.PaymentTerm) []domain.PaymentTerm {
	return Apply(terms,
		Membership(func(pt domain.PaymentTerm) string { return pt.Supplier }, c.Suppliers),
		Membership(func(pt domain.PaymentTerm) string { return pt.Division }, c.Divisions),
		Search[domain.PaymentTerm](c.Search),
	)
}

// EmptySelection reports a deliberate zero-row selection.
func (c TermCriteria) EmptySelection() bool {
	return hasEmptySelection(c.Suppliers, c.Divisions)
}

// ContractCriteria is the user's filter selection for contracts. The date
// range runs over the expiration date.
type ContractCriteria struct {
	Suppliers []string
	From      *time.Time
	To        *time.Time
	Search    string
}

// Apply filters the contracts by the criteria.
func (c ContractCriteria) Apply(contracts []domain.Contract) []domain.Contract {
	return Apply(contracts,
		Membership(func(ct domain.Contract) string { return ct.Supplier }, c.Suppliers),
		DateRange(func(ct domain.Contract) *time.Time { return ct.ExpirationDate }, c.From, c.To),
		Search[domain.Contract](c.Search),
	)
}

// EmptySelection reports a deliberate zero-row selection.
func (c ContractCriteria) EmptySelection() bool {
	return hasEmptySelection(c.Suppliers)
}
