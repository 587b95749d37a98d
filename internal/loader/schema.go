package loader

import (
	"fmt"
	"strings"
)

// Table names in the remote store.
const (
	TablePurchaseOrders = "purchase_orders"
	TablePaymentTerms   = "payment_terms"
	TableContracts      = "contracts"
)

// Canonical column names, as the rest of the pipeline expects them. The
// store historically carried them lowercase or under aliases; resolution
// happens once at load time against the alias table below.
const (
	ColPONumber     = "PO_NUMBER"
	ColSupplier     = "FOURNISSEUR"
	ColDepartment   = "DEPARTEMENT"
	ColAmountEUR    = "MONTANT_EUR"
	ColQuantity     = "QUANTITE"
	ColDate         = "DATE"
	ColPurchaseType = "TYPE_ACHAT"
	ColStatus       = "STATUT"

	ColOldDays          = "OLD_DAYS"
	ColNewDays          = "NEW_DAYS"
	ColTurnoverEUR      = "TURNOVER_EUR"
	ColDivision         = "DIVISION"
	ColPaymentCondition = "CONDITION_PAIEMENT"
	ColPaymentDelay     = "DELAI_PAIEMENT"

	ColContractID       = "CONTRAT"
	ColExpirationDate   = "DATE_EXPIRATION"
	ColAmountMAD        = "MONTANT_MAD"
	ColResponsibleEmail = "RESPONSABLE_EMAIL"
)

// requiredColumns lists what each table must provide after resolution.
var requiredColumns = map[string][]string{
	TablePurchaseOrders: {ColPONumber, ColSupplier, ColDepartment, ColAmountEUR, ColQuantity, ColDate, ColPurchaseType, ColStatus},
	TablePaymentTerms:   {ColSupplier, ColOldDays, ColNewDays, ColTurnoverEUR, ColDivision, ColPaymentCondition, ColPaymentDelay},
	TableContracts:      {ColContractID, ColSupplier, ColExpirationDate, ColAmountMAD, ColResponsibleEmail},
}

// columnAliases maps known source spellings to canonical names. Matching is
// case-insensitive; a canonical name always matches itself.
var columnAliases = map[string]string{
	"po_number":          ColPONumber,
	"order_number":       ColPONumber,
	"fournisseur":        ColSupplier,
	"supplier":           ColSupplier,
	"departement":        ColDepartment,
	"department":         ColDepartment,
	"montant_eur":        ColAmountEUR,
	"amount_eur":         ColAmountEUR,
	"quantite":           ColQuantity,
	"quantity":           ColQuantity,
	"date":               ColDate,
	"type_achat":         ColPurchaseType,
	"purchase_type":      ColPurchaseType,
	"statut":             ColStatus,
	"status":             ColStatus,
	"old_days":           ColOldDays,
	"new_days":           ColNewDays,
	"turnover_eur":       ColTurnoverEUR,
	"division":           ColDivision,
	"condition_paiement": ColPaymentCondition,
	"payment_condition":  ColPaymentCondition,
	"delai_paiement":     ColPaymentDelay,
	"payment_delay_days": ColPaymentDelay,
	"contrat":            ColContractID,
	"contract_id":        ColContractID,
	"date_expiration":    ColExpirationDate,
	"expiration_date":    ColExpirationDate,
	"montant_mad":        ColAmountMAD,
	"amount_mad":         ColAmountMAD,
	"responsable_email":  ColResponsibleEmail,
	"responsible_email":  ColResponsibleEmail,
}

// MissingColumnsError reports required columns absent after alias
// resolution. It lists both the missing canonical names and what the table
// actually provided, since a misnamed column is the usual cause.
type MissingColumnsError struct {
	Table     string
	Missing   []string
	Available []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("table %s is missing required columns %v (available: %v)",
		e.Table, e.Missing, e.Available)
}

// resolveColumns maps the actual column names of a row set onto canonical
// names. The returned map goes actual -> canonical and only contains
// recognized columns.
func resolveColumns(actual []string) map[string]string {
	resolved := make(map[string]string, len(actual))
	for _, col := range actual {
		key := strings.ToLower(col)
		if canonical, ok := columnAliases[key]; ok {
			resolved[col] = canonical
			continue
		}
		// A column already in canonical form maps to itself.
		for _, cols := range requiredColumns {
			for _, c := range cols {
				if strings.EqualFold(col, c) {
					resolved[col] = c
				}
			}
		}
	}
	return resolved
}

// checkRequired returns a MissingColumnsError when any required column for
// the table is not covered by the resolution.
func checkRequired(table string, actual []string, resolved map[string]string) error {
	have := make(map[string]bool, len(resolved))
	for _, canonical := range resolved {
		have[canonical] = true
	}

	var missing []string
	for _, col := range requiredColumns[table] {
		if !have[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Table: table, Missing: missing, Available: actual}
	}
	return nil
}
