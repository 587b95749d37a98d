// Package alerts scans filtered record sets against the alerting policy
// and optionally dispatches the results through the outbound mail relay.
package alerts

import (
	"fmt"
	"log/slog"
	"time"

	"purchdash/internal/config"
	"purchdash/pkg/contracts/domain"
)

// Thresholds are the user-set alert knobs; the contract expiry window is
// policy, not user input.
type Thresholds struct {
	AmountEUR float64 `json:"amount_eur"`
	DelayDays float64 `json:"delay_days"`
}

// Evaluator derives alerts from filtered views. Alerts are transient:
// every evaluation starts from scratch.
type Evaluator struct {
	pendingStatus string
	expiryWindow  int
	logger        *slog.Logger
	now           func() time.Time
}

// NewEvaluator creates an evaluator with the configured policy.
func NewEvaluator(cfg config.AlertsConfig, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		pendingStatus: cfg.PendingStatus,
		expiryWindow:  cfg.ExpiryWindowDays,
		logger:        logger.With(slog.String("component", "alert_evaluator")),
		now:           time.Now,
	}
}

// Evaluate scans the three filtered views. Amount and delay comparisons
// are strict; the 60-day contract window is inclusive.
func (e *Evaluator) Evaluate(orders []domain.PurchaseOrder, terms []domain.PaymentTerm, contracts []domain.Contract, t Thresholds) []domain.Alert {
	var alerts []domain.Alert
	now := e.now()

	for _, po := range orders {
		if po.AmountEUR != nil && *po.AmountEUR > t.AmountEUR {
			alerts = append(alerts, domain.Alert{
				Kind:     domain.AlertAmountThreshold,
				Subject:  po.PONumber,
				Supplier: po.Supplier,
				Message:  fmt.Sprintf("%s: %.2f EUR exceeds threshold", po.Supplier, *po.AmountEUR),
				EmailBody: fmt.Sprintf("Order %s with %s is above the amount threshold.\nAmount: %.2f EUR\nDepartment: %s",
					po.PONumber, po.Supplier, *po.AmountEUR, po.Department),
			})
		}
		if po.Status == e.pendingStatus {
			alerts = append(alerts, domain.Alert{
				Kind:     domain.AlertPendingStatus,
				Subject:  po.PONumber,
				Supplier: po.Supplier,
				Message:  fmt.Sprintf("Order %s pending", po.PONumber),
				EmailBody: fmt.Sprintf("Order %s with %s is pending validation.\nAmount: %.2f EUR\nDepartment: %s",
					po.PONumber, po.Supplier, po.Amount(), po.Department),
			})
		}
	}

	for _, c := range contracts {
		daysLeft, ok := c.DaysUntilExpiry(now)
		if ok && daysLeft <= e.expiryWindow {
			alerts = append(alerts, domain.Alert{
				Kind:     domain.AlertContractExpiry,
				Subject:  c.ContractID,
				Supplier: c.Supplier,
				Message:  fmt.Sprintf("Contract %s expires in %d days", c.ContractID, daysLeft),
				EmailBody: fmt.Sprintf("Contract %s with %s expires in %d days.\nExpiration date: %s\nAmount: %.2f MAD",
					c.ContractID, c.Supplier, daysLeft, c.ExpirationDate.Format("02/01/2006"), amountOrZero(c.AmountMAD)),
			})
		}
	}

	for _, pt := range terms {
		if pt.PaymentDelayDays != nil && *pt.PaymentDelayDays > t.DelayDays {
			alerts = append(alerts, domain.Alert{
				Kind:     domain.AlertPaymentDelay,
				Subject:  pt.Supplier,
				Supplier: pt.Supplier,
				Message:  fmt.Sprintf("%s: %.0f days payment delay", pt.Supplier, *pt.PaymentDelayDays),
				EmailBody: fmt.Sprintf("%s has a payment delay of %.0f days.\nTurnover: %.2f EUR\nDivision: %s",
					pt.Supplier, *pt.PaymentDelayDays, pt.Turnover(), pt.Division),
			})
		}
	}

	return alerts
}

// Reminder is a per-contract expiry notice routed to the contract's
// responsible, not the global notification recipient.
type Reminder struct {
	ContractID string
	Recipient  string
	Subject    string
	Body       string
	DaysLeft   int
}

// ExpiringReminders builds reminders for filtered contracts inside the
// expiry window that have a responsible email on record.
func (e *Evaluator) ExpiringReminders(contracts []domain.Contract) []Reminder {
	var reminders []Reminder
	now := e.now()
	for _, c := range contracts {
		daysLeft, ok := c.DaysUntilExpiry(now)
		if !ok || daysLeft > e.expiryWindow || c.ResponsibleEmail == "" {
			continue
		}
		reminders = append(reminders, Reminder{
			ContractID: c.ContractID,
			Recipient:  c.ResponsibleEmail,
			DaysLeft:   daysLeft,
			Subject:    fmt.Sprintf("Reminder: contract %s expires soon", c.ContractID),
			Body: fmt.Sprintf("Contract %s with %s expires in %d days.\nExpiration date: %s",
				c.ContractID, c.Supplier, daysLeft, c.ExpirationDate.Format("02/01/2006")),
		})
	}
	return reminders
}

func amountOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
