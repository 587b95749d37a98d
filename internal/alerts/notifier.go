package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/gomail.v2"

	"purchdash/internal/config"
	"purchdash/pkg/contracts/domain"
)

// sendFunc dials the relay and sends one message. Swappable in tests.
type sendFunc func(m *gomail.Message) error

// NotifyResult summarises a dispatch run. Warning is set when the relay
// is missing and nothing was attempted.
type NotifyResult struct {
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Warning string `json:"warning,omitempty"`
}

// Notifier dispatches alert emails through the configured SMTP relay.
// An unconfigured relay is not an error: the run reports zero sends
// with a warning so the dashboard can keep working without mail.
type Notifier struct {
	cfg    config.SMTPConfig
	logger *slog.Logger
	send   sendFunc
}

// NewNotifier creates a notifier over the given relay settings.
func NewNotifier(cfg config.SMTPConfig, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	n := &Notifier{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "alert_notifier")),
	}
	n.send = func(m *gomail.Message) error {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		return d.DialAndSend(m)
	}
	return n
}

// NotifyAll sends one email per alert to the configured recipient and
// returns the count of confirmed deliveries. Failures on individual
// messages are logged and counted but do not abort the run.
func (n *Notifier) NotifyAll(ctx context.Context, alerts []domain.Alert) NotifyResult {
	if !n.cfg.Configured() {
		n.logger.Warn("smtp relay not configured, skipping notifications",
			slog.Int("alerts", len(alerts)))
		return NotifyResult{Warning: "email relay not configured, no notifications sent"}
	}

	var res NotifyResult
	for _, a := range alerts {
		m := gomail.NewMessage()
		m.SetHeader("From", n.cfg.Username)
		m.SetHeader("To", n.cfg.Recipient)
		m.SetHeader("Subject", subjectFor(a))
		m.SetBody("text/plain", a.EmailBody)

		if err := n.sendWithRetry(ctx, m); err != nil {
			res.Failed++
			n.logger.Error("alert email failed",
				slog.String("kind", string(a.Kind)),
				slog.String("subject", a.Subject),
				slog.String("error", err.Error()))
			continue
		}
		res.Sent++
	}

	n.logger.Info("alert notifications dispatched",
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed))
	return res
}

// SendReminders routes each reminder to the contract's responsible.
func (n *Notifier) SendReminders(ctx context.Context, reminders []Reminder) NotifyResult {
	if !n.cfg.Configured() {
		n.logger.Warn("smtp relay not configured, skipping reminders",
			slog.Int("reminders", len(reminders)))
		return NotifyResult{Warning: "email relay not configured, no reminders sent"}
	}

	var res NotifyResult
	for _, r := range reminders {
		m := gomail.NewMessage()
		m.SetHeader("From", n.cfg.Username)
		m.SetHeader("To", r.Recipient)
		m.SetHeader("Subject", r.Subject)
		m.SetBody("text/plain", r.Body)

		if err := n.sendWithRetry(ctx, m); err != nil {
			res.Failed++
			n.logger.Error("contract reminder failed",
				slog.String("contract_id", r.ContractID),
				slog.String("recipient", r.Recipient),
				slog.String("error", err.Error()))
			continue
		}
		res.Sent++
	}

	n.logger.Info("contract reminders dispatched",
		slog.Int("sent", res.Sent),
		slog.Int("failed", res.Failed))
	return res
}

// sendWithRetry attempts a send twice, each attempt bounded by the
// configured timeout. A cancelled context aborts without the second
// attempt. gomail has no deadline support of its own so the dial runs
// in its own goroutine.
func (n *Notifier) sendWithRetry(ctx context.Context, m *gomail.Message) error {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if err := n.sendOnce(ctx, m); err != nil {
			if ctx.Err() != nil {
				return err
			}
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

func (n *Notifier) sendOnce(ctx context.Context, m *gomail.Message) error {
	timeout := n.cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	done := make(chan error, 1)
	go func() {
		done <- n.send(m)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(timeout):
		return fmt.Errorf("smtp send timed out after %s", timeout)
	}
}

func subjectFor(a domain.Alert) string {
	switch a.Kind {
	case domain.AlertAmountThreshold:
		return fmt.Sprintf("Purchase alert: order %s over threshold", a.Subject)
	case domain.AlertPendingStatus:
		return fmt.Sprintf("Purchase alert: order %s pending", a.Subject)
	case domain.AlertContractExpiry:
		return fmt.Sprintf("Contract alert: %s expiring", a.Subject)
	case domain.AlertPaymentDelay:
		return fmt.Sprintf("Payment alert: %s delayed", a.Subject)
	default:
		return "Purchase dashboard alert"
	}
}
