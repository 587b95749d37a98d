package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"purchdash/pkg/contracts/domain"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func f(v float64) *float64 { return &v }

func sampleOrders() []domain.PurchaseOrder {
	return []domain.PurchaseOrder{
		{PONumber: "PO-1", Supplier: "Acme", Department: "IT", PurchaseType: "Services", Status: "En attente", AmountEUR: f(1000), Date: date(2024, 1, 10)},
		{PONumber: "PO-2", Supplier: "Globex", Department: "HR", PurchaseType: "Goods", Status: "Done", AmountEUR: f(2500), Date: date(2024, 2, 20)},
		{PONumber: "PO-3", Supplier: "Acme", Department: "IT", PurchaseType: "Goods", Status: "Done", AmountEUR: f(400), Date: date(2024, 6, 5)},
		{PONumber: "PO-4", Supplier: "Initech", Department: "Finance", PurchaseType: "Services", Status: "En attente", AmountEUR: f(9000)},
	}
}

func TestIdentityFilterReturnsInput(t *testing.T) {
	orders := sampleOrders()
	got := OrderCriteria{}.Apply(orders)
	assert.Equal(t, orders, got)
}

func TestFilterIsIdempotent(t *testing.T) {
	c := OrderCriteria{
		Suppliers: []string{"Acme", "Globex"},
		From:      date(2024, 1, 1),
		To:        date(2024, 3, 1),
	}
	once := c.Apply(sampleOrders())
	twice := c.Apply(once)
	assert.Equal(t, once, twice)
}

func TestMembershipConjunction(t *testing.T) {
	c := OrderCriteria{
		Suppliers:   []string{"Acme"},
		Departments: []string{"IT"},
		Statuses:    []string{"Done"},
	}
	got := c.Apply(sampleOrders())
	require.Len(t, got, 1)
	assert.Equal(t, "PO-3", got[0].PONumber)
}

func TestEmptySelectionYieldsZeroRows(t *testing.T) {
	c := OrderCriteria{Suppliers: []string{}}
	got := c.Apply(sampleOrders())
	assert.Empty(t, got)
	assert.True(t, c.EmptySelection())

	assert.False(t, OrderCriteria{}.EmptySelection(), "nil selection is the full domain")
}

func TestDateRangeInclusiveBounds(t *testing.T) {
	c := OrderCriteria{From: date(2024, 1, 10), To: date(2024, 2, 20)}
	got := c.Apply(sampleOrders())
	require.Len(t, got, 2)
	assert.Equal(t, "PO-1", got[0].PONumber)
	assert.Equal(t, "PO-2", got[1].PONumber)
}

func TestDateRangeExcludesNilDates(t *testing.T) {
	c := OrderCriteria{From: date(2020, 1, 1), To: date(2030, 1, 1)}
	got := c.Apply(sampleOrders())
	for _, po := range got {
		assert.NotNil(t, po.Date, "rows without a date fall out of an active range")
	}
	assert.Len(t, got, 3)
}

func TestSearchFullRowCaseInsensitive(t *testing.T) {
	c := OrderCriteria{Search: "globex"}
	got := c.Apply(sampleOrders())
	require.Len(t, got, 1)
	assert.Equal(t, "PO-2", got[0].PONumber)

	// Matches numeric fields through the row text too.
	c = OrderCriteria{Search: "9000"}
	got = c.Apply(sampleOrders())
	require.Len(t, got, 1)
	assert.Equal(t, "PO-4", got[0].PONumber)
}

func TestSearchEmptyTermIsNoop(t *testing.T) {
	c := OrderCriteria{Search: "   "}
	assert.Len(t, c.Apply(sampleOrders()), len(sampleOrders()))
}

func TestTermCriteria(t *testing.T) {
	terms := []domain.PaymentTerm{
		{Supplier: "Acme", Division: "North", TurnoverEUR: f(100)},
		{Supplier: "Globex", Division: "South", TurnoverEUR: f(200)},
	}
	got := TermCriteria{Divisions: []string{"South"}}.Apply(terms)
	require.Len(t, got, 1)
	assert.Equal(t, "Globex", got[0].Supplier)
}

func TestContractCriteriaExpirationRange(t *testing.T) {
	contracts := []domain.Contract{
		{ContractID: "C-1", Supplier: "Acme", ExpirationDate: date(2025, 6, 1)},
		{ContractID: "C-2", Supplier: "Acme", ExpirationDate: date(2027, 1, 1)},
	}
	got := ContractCriteria{From: date(2025, 1, 1), To: date(2026, 1, 1)}.Apply(contracts)
	require.Len(t, got, 1)
	assert.Equal(t, "C-1", got[0].ContractID)
}
