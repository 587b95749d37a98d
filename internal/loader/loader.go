package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"purchdash/pkg/contracts/domain"
)

// ErrEmptyTable is returned when a table exists but holds zero rows. The
// caller halts the remaining load sequence.
var ErrEmptyTable = errors.New("table returned no rows")

// TableFetcher pulls every row of a named table from the remote store.
// The production implementation sits on the Supabase client; tests inject
// fixtures.
type TableFetcher interface {
	FetchAll(ctx context.Context, table string) ([]map[string]interface{}, error)
}

// Loader fetches, normalizes and caches the three record sets. The cache
// is keyed by table name and lives for the session; there is no busting
// API.
type Loader struct {
	fetcher TableFetcher
	logger  *slog.Logger

	mu    sync.Mutex
	cache map[string][]map[string]interface{}
}

// New creates a Loader over the given fetcher.
func New(fetcher TableFetcher, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher: fetcher,
		logger:  logger.With(slog.String("component", "loader")),
		cache:   make(map[string][]map[string]interface{}),
	}
}

// Load returns every row of the table with column names resolved to their
// canonical form. Zero rows is ErrEmptyTable; a required column missing
// after alias resolution is a MissingColumnsError.
func (l *Loader) Load(ctx context.Context, table string) ([]map[string]interface{}, error) {
	l.mu.Lock()
	if rows, ok := l.cache[table]; ok {
		l.mu.Unlock()
		return rows, nil
	}
	l.mu.Unlock()

	raw, err := l.fetcher.FetchAll(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", table, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("load %s: %w", table, ErrEmptyTable)
	}

	columns := make([]string, 0, len(raw[0]))
	for col := range raw[0] {
		columns = append(columns, col)
	}

	resolved := resolveColumns(columns)
	if err := checkRequired(table, columns, resolved); err != nil {
		return nil, err
	}

	rows := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		row := make(map[string]interface{}, len(r))
		for col, v := range r {
			if canonical, ok := resolved[col]; ok {
				row[canonical] = v
			} else {
				row[col] = v
			}
		}
		rows = append(rows, row)
	}

	l.logger.InfoContext(ctx, "table loaded",
		slog.String("table", table),
		slog.Int("rows", len(rows)),
	)

	l.mu.Lock()
	l.cache[table] = rows
	l.mu.Unlock()
	return rows, nil
}

// LoadAll loads and coerces the three record sets into a session snapshot.
// The first fatal load error halts the sequence; coercion problems are
// collected as non-fatal warnings on the snapshot.
func (l *Loader) LoadAll(ctx context.Context) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{}

	poRows, err := l.Load(ctx, TablePurchaseOrders)
	if err != nil {
		return nil, err
	}
	snap.Orders, snap.Warnings = coerceOrders(poRows, snap.Warnings)

	ptRows, err := l.Load(ctx, TablePaymentTerms)
	if err != nil {
		return nil, err
	}
	snap.Terms, snap.Warnings = coerceTerms(ptRows, snap.Warnings)

	ctRows, err := l.Load(ctx, TableContracts)
	if err != nil {
		return nil, err
	}
	snap.Contracts, snap.Warnings = coerceContracts(ctRows, snap.Warnings)

	if len(snap.Warnings) > 0 {
		l.logger.WarnContext(ctx, "type coercion produced warnings",
			slog.Int("count", len(snap.Warnings)))
	}
	return snap, nil
}

func coerceOrders(rows []map[string]interface{}, warnings []string) ([]domain.PurchaseOrder, []string) {
	orders := make([]domain.PurchaseOrder, 0, len(rows))
	for i, row := range rows {
		po := domain.PurchaseOrder{
			PONumber:     coerceText(row[ColPONumber]),
			Supplier:     coerceText(row[ColSupplier]),
			Department:   coerceText(row[ColDepartment]),
			PurchaseType: coerceText(row[ColPurchaseType]),
			Status:       coerceText(row[ColStatus]),
		}
		var ok bool
		if po.AmountEUR, ok = coerceNumber(row[ColAmountEUR]); !ok {
			warnings = append(warnings, warnCell(TablePurchaseOrders, i, ColAmountEUR, row[ColAmountEUR]))
		}
		if po.Quantity, ok = coerceNumber(row[ColQuantity]); !ok {
			warnings = append(warnings, warnCell(TablePurchaseOrders, i, ColQuantity, row[ColQuantity]))
		}
		if po.Date, ok = coerceDate(row[ColDate]); !ok {
			warnings = append(warnings, warnCell(TablePurchaseOrders, i, ColDate, row[ColDate]))
		}
		orders = append(orders, po)
	}
	return orders, warnings
}

func coerceTerms(rows []map[string]interface{}, warnings []string) ([]domain.PaymentTerm, []string) {
	terms := make([]domain.PaymentTerm, 0, len(rows))
	for i, row := range rows {
		pt := domain.PaymentTerm{
			Supplier:         coerceText(row[ColSupplier]),
			Division:         coerceText(row[ColDivision]),
			PaymentCondition: coerceText(row[ColPaymentCondition]),
		}
		var ok bool
		if pt.OldDays, ok = coerceNumber(row[ColOldDays]); !ok {
			warnings = append(warnings, warnCell(TablePaymentTerms, i, ColOldDays, row[ColOldDays]))
		}
		if pt.NewDays, ok = coerceNumber(row[ColNewDays]); !ok {
			warnings = append(warnings, warnCell(TablePaymentTerms, i, ColNewDays, row[ColNewDays]))
		}
		if pt.TurnoverEUR, ok = coerceNumber(row[ColTurnoverEUR]); !ok {
			warnings = append(warnings, warnCell(TablePaymentTerms, i, ColTurnoverEUR, row[ColTurnoverEUR]))
		}
		if pt.PaymentDelayDays, ok = coerceNumber(row[ColPaymentDelay]); !ok {
			warnings = append(warnings, warnCell(TablePaymentTerms, i, ColPaymentDelay, row[ColPaymentDelay]))
		}
		terms = append(terms, pt)
	}
	return terms, warnings
}

func coerceContracts(rows []map[string]interface{}, warnings []string) ([]domain.Contract, []string) {
	contracts := make([]domain.Contract, 0, len(rows))
	for i, row := range rows {
		c := domain.Contract{
			ContractID:       coerceText(row[ColContractID]),
			Supplier:         coerceText(row[ColSupplier]),
			ResponsibleEmail: coerceText(row[ColResponsibleEmail]),
		}
		var ok bool
		if c.ExpirationDate, ok = coerceDate(row[ColExpirationDate]); !ok {
			warnings = append(warnings, warnCell(TableContracts, i, ColExpirationDate, row[ColExpirationDate]))
		}
		if c.AmountMAD, ok = coerceNumber(row[ColAmountMAD]); !ok {
			warnings = append(warnings, warnCell(TableContracts, i, ColAmountMAD, row[ColAmountMAD]))
		}
		contracts = append(contracts, c)
	}
	return contracts, warnings
}

func warnCell(table string, row int, col string, v interface{}) string {
	return fmt.Sprintf("%s row %d: could not convert %s value %q", table, row, col, fmt.Sprintf("%v", v))
}
