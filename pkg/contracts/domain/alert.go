package domain

// AlertKind identifies the rule that produced an alert.
type AlertKind string

const (
	AlertAmountThreshold AlertKind = "amount_threshold"
	AlertPendingStatus   AlertKind = "pending_status"
	AlertContractExpiry  AlertKind = "contract_expiry"
	AlertPaymentDelay    AlertKind = "payment_delay"
)

// Alert is a transient evaluation result. Alerts are regenerated on every
// filter change and never persisted.
type Alert struct {
	Kind      AlertKind `json:"kind"`
	Message   string    `json:"message"`
	Subject   string    `json:"subject"`
	Supplier  string    `json:"supplier,omitempty"`
	EmailBody string    `json:"-"`
}
