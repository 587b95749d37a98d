package domain

// Snapshot holds the three record sets loaded for a session, plus any
// non-fatal coercion warnings raised while normalizing them. The snapshot
// is read-only: filtering derives views, it never mutates these slices.
type Snapshot struct {
	Orders    []PurchaseOrder `json:"orders"`
	Terms     []PaymentTerm   `json:"terms"`
	Contracts []Contract      `json:"contracts"`
	Warnings  []string        `json:"warnings,omitempty"`
}
