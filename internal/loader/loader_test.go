package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	tables map[string][]map[string]interface{}
	calls  map[string]int
	err    error
}

func (s *stubFetcher) FetchAll(ctx context.Context, table string) ([]map[string]interface{}, error) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[table]++
	if s.err != nil {
		return nil, s.err
	}
	return s.tables[table], nil
}

func poRow(over map[string]interface{}) map[string]interface{} {
	row := map[string]interface{}{
		"po_number":   "PO-1",
		"fournisseur": "Acme",
		"departement": "IT",
		"montant_eur": 1250.50,
		"quantite":    3.0,
		"date":        "2024-03-15",
		"type_achat":  "Services",
		"statut":      "En attente",
	}
	for k, v := range over {
		row[k] = v
	}
	return row
}

func ptRow() map[string]interface{} {
	return map[string]interface{}{
		"fournisseur":        "Acme",
		"old_days":           60.0,
		"new_days":           45.0,
		"turnover_eur":       100000.0,
		"division":           "North",
		"condition_paiement": "Net 45",
		"delai_paiement":     5.0,
	}
}

func contractRow() map[string]interface{} {
	return map[string]interface{}{
		"contrat":           "C-1",
		"fournisseur":       "Acme",
		"date_expiration":   "2026-12-01",
		"montant_mad":       50000.0,
		"responsable_email": "owner@example.com",
	}
}

func TestLoadResolvesAliases(t *testing.T) {
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{
		TablePurchaseOrders: {poRow(nil)},
	}}
	l := New(fetcher, nil)

	rows, err := l.Load(context.Background(), TablePurchaseOrders)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "PO-1", rows[0][ColPONumber])
	assert.Equal(t, "Acme", rows[0][ColSupplier])
	assert.NotContains(t, rows[0], "po_number")
}

func TestLoadResolvesEnglishAndMixedCaseAliases(t *testing.T) {
	row := map[string]interface{}{
		"Supplier":      "Acme",
		"PO_NUMBER":     "PO-9",
		"Department":    "HR",
		"Amount_EUR":    10.0,
		"Quantity":      1.0,
		"DATE":          "2024-01-01",
		"Purchase_Type": "Goods",
		"Status":        "Done",
	}
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{
		TablePurchaseOrders: {row},
	}}
	l := New(fetcher, nil)

	rows, err := l.Load(context.Background(), TablePurchaseOrders)
	require.NoError(t, err)
	assert.Equal(t, "Acme", rows[0][ColSupplier])
	assert.Equal(t, "PO-9", rows[0][ColPONumber])
	assert.Equal(t, "Goods", rows[0][ColPurchaseType])
}

func TestLoadEmptyTable(t *testing.T) {
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{}}
	l := New(fetcher, nil)

	_, err := l.Load(context.Background(), TableContracts)
	assert.ErrorIs(t, err, ErrEmptyTable)
}

func TestLoadMissingColumns(t *testing.T) {
	row := poRow(nil)
	delete(row, "statut")
	delete(row, "date")
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{
		TablePurchaseOrders: {row},
	}}
	l := New(fetcher, nil)

	_, err := l.Load(context.Background(), TablePurchaseOrders)
	var missingErr *MissingColumnsError
	require.ErrorAs(t, err, &missingErr)
	assert.ElementsMatch(t, []string{ColStatus, ColDate}, missingErr.Missing)
	assert.Contains(t, missingErr.Available, "po_number")
}

func TestLoadCachesPerTable(t *testing.T) {
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{
		TablePurchaseOrders: {poRow(nil)},
	}}
	l := New(fetcher, nil)

	_, err := l.Load(context.Background(), TablePurchaseOrders)
	require.NoError(t, err)
	_, err = l.Load(context.Background(), TablePurchaseOrders)
	require.NoError(t, err)

	assert.Equal(t, 1, fetcher.calls[TablePurchaseOrders], "second load must hit the cache")
}

func TestLoadAllBuildsSnapshot(t *testing.T) {
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{
		TablePurchaseOrders: {poRow(nil)},
		TablePaymentTerms:   {ptRow()},
		TableContracts:      {contractRow()},
	}}
	l := New(fetcher, nil)

	snap, err := l.LoadAll(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Orders, 1)
	require.Len(t, snap.Terms, 1)
	require.Len(t, snap.Contracts, 1)
	assert.Empty(t, snap.Warnings)

	po := snap.Orders[0]
	require.NotNil(t, po.AmountEUR)
	assert.InDelta(t, 1250.50, *po.AmountEUR, 1e-9)
	require.NotNil(t, po.Date)
	assert.Equal(t, 2024, po.Date.Year())
	assert.Equal(t, "En attente", po.Status)

	ct := snap.Contracts[0]
	assert.Equal(t, "owner@example.com", ct.ResponsibleEmail)
}

func TestLoadAllCoercionWarnings(t *testing.T) {
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{
		TablePurchaseOrders: {poRow(map[string]interface{}{
			"date":        "not-a-date",
			"montant_eur": "garbage",
		})},
		TablePaymentTerms: {ptRow()},
		TableContracts:    {contractRow()},
	}}
	l := New(fetcher, nil)

	snap, err := l.LoadAll(context.Background())
	require.NoError(t, err, "coercion failures are warnings, not errors")

	require.Len(t, snap.Orders, 1)
	assert.Nil(t, snap.Orders[0].Date)
	assert.Nil(t, snap.Orders[0].AmountEUR)
	assert.Len(t, snap.Warnings, 2)
}

func TestLoadAllHaltsOnFirstFatal(t *testing.T) {
	fetcher := &stubFetcher{tables: map[string][]map[string]interface{}{
		TablePaymentTerms: {ptRow()},
		TableContracts:    {contractRow()},
	}}
	l := New(fetcher, nil)

	_, err := l.LoadAll(context.Background())
	require.ErrorIs(t, err, ErrEmptyTable)
	assert.Zero(t, fetcher.calls[TablePaymentTerms], "load sequence halts at the first fatal error")
}

func TestLoadFetchError(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("connection refused")}
	l := New(fetcher, nil)

	_, err := l.Load(context.Background(), TablePurchaseOrders)
	assert.ErrorContains(t, err, "connection refused")
}
