package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"purchdash/internal/config"
	"purchdash/pkg/contracts/domain"
)

func fptr(v float64) *float64 { return &v }

func tptr(t time.Time) *time.Time { return &t }

func testEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	e := NewEvaluator(config.AlertsConfig{
		PendingStatus:    "En attente",
		ExpiryWindowDays: 60,
	}, nil)
	return e
}

func TestEvaluateAmountAndPending(t *testing.T) {
	e := testEvaluator(t)
	orders := []domain.PurchaseOrder{
		{PONumber: "PO-1", Supplier: "Acme", AmountEUR: fptr(150000), Status: "En attente"},
	}

	alerts := e.Evaluate(orders, nil, nil, Thresholds{AmountEUR: 100000, DelayDays: 30})

	require.Len(t, alerts, 2)
	assert.Equal(t, domain.AlertAmountThreshold, alerts[0].Kind)
	assert.Equal(t, domain.AlertPendingStatus, alerts[1].Kind)
	assert.Equal(t, "PO-1", alerts[0].Subject)
	assert.NotEmpty(t, alerts[0].EmailBody)
}

func TestEvaluateAmountEqualDoesNotFire(t *testing.T) {
	e := testEvaluator(t)
	orders := []domain.PurchaseOrder{
		{PONumber: "PO-2", Supplier: "Acme", AmountEUR: fptr(100000), Status: "Validée"},
	}

	alerts := e.Evaluate(orders, nil, nil, Thresholds{AmountEUR: 100000})

	assert.Empty(t, alerts)
}

func TestEvaluateNilAmountSkipped(t *testing.T) {
	e := testEvaluator(t)
	orders := []domain.PurchaseOrder{
		{PONumber: "PO-3", Supplier: "Acme", Status: "Validée"},
	}

	alerts := e.Evaluate(orders, nil, nil, Thresholds{AmountEUR: 0})

	assert.Empty(t, alerts)
}

func TestEvaluateContractExpiryWindow(t *testing.T) {
	e := testEvaluator(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	contracts := []domain.Contract{
		{ContractID: "C-45", Supplier: "Acme", ExpirationDate: tptr(now.AddDate(0, 0, 45))},
		{ContractID: "C-90", Supplier: "Beta", ExpirationDate: tptr(now.AddDate(0, 0, 90))},
		{ContractID: "C-60", Supplier: "Gamma", ExpirationDate: tptr(now.AddDate(0, 0, 60))},
		{ContractID: "C-nil", Supplier: "Delta"},
	}

	alerts := e.Evaluate(nil, nil, contracts, Thresholds{})

	require.Len(t, alerts, 2)
	assert.Equal(t, "C-45", alerts[0].Subject)
	assert.Equal(t, "C-60", alerts[1].Subject)
	for _, a := range alerts {
		assert.Equal(t, domain.AlertContractExpiry, a.Kind)
	}
}

func TestEvaluatePaymentDelayStrict(t *testing.T) {
	e := testEvaluator(t)
	terms := []domain.PaymentTerm{
		{Supplier: "Slow", PaymentDelayDays: fptr(45), TurnoverEUR: fptr(1000000)},
		{Supplier: "Edge", PaymentDelayDays: fptr(30)},
		{Supplier: "Blank"},
	}

	alerts := e.Evaluate(nil, terms, nil, Thresholds{DelayDays: 30})

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertPaymentDelay, alerts[0].Kind)
	assert.Equal(t, "Slow", alerts[0].Supplier)
}

func TestExpiringReminders(t *testing.T) {
	e := testEvaluator(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return now }

	contracts := []domain.Contract{
		{ContractID: "C-1", Supplier: "Acme", ExpirationDate: tptr(now.AddDate(0, 0, 30)), ResponsibleEmail: "buyer@corp.example"},
		{ContractID: "C-2", Supplier: "Beta", ExpirationDate: tptr(now.AddDate(0, 0, 30))},
		{ContractID: "C-3", Supplier: "Gamma", ExpirationDate: tptr(now.AddDate(0, 0, 120)), ResponsibleEmail: "other@corp.example"},
	}

	reminders := e.ExpiringReminders(contracts)

	require.Len(t, reminders, 1)
	assert.Equal(t, "C-1", reminders[0].ContractID)
	assert.Equal(t, "buyer@corp.example", reminders[0].Recipient)
	assert.Equal(t, 30, reminders[0].DaysLeft)
	assert.Contains(t, reminders[0].Body, "Acme")
}

func configuredSMTP() config.SMTPConfig {
	return config.SMTPConfig{
		Host:      "smtp.corp.example",
		Port:      587,
		Username:  "dashboard@corp.example",
		Password:  "secret",
		Recipient: "purchasing@corp.example",
		Timeout:   time.Second,
	}
}

func TestNotifyAllUnconfiguredRelay(t *testing.T) {
	n := NewNotifier(config.SMTPConfig{}, nil)
	n.send = func(m *gomail.Message) error {
		t.Fatal("send must not be attempted without a relay")
		return nil
	}

	res := n.NotifyAll(context.Background(), []domain.Alert{{Kind: domain.AlertPendingStatus}})

	assert.Zero(t, res.Sent)
	assert.NotEmpty(t, res.Warning)
}

func TestNotifyAllCountsConfirmedSends(t *testing.T) {
	n := NewNotifier(configuredSMTP(), nil)
	var sent []string
	n.send = func(m *gomail.Message) error {
		sent = append(sent, m.GetHeader("Subject")[0])
		return nil
	}

	alerts := []domain.Alert{
		{Kind: domain.AlertAmountThreshold, Subject: "PO-1", EmailBody: "body"},
		{Kind: domain.AlertContractExpiry, Subject: "C-1", EmailBody: "body"},
	}
	res := n.NotifyAll(context.Background(), alerts)

	assert.Equal(t, 2, res.Sent)
	assert.Zero(t, res.Failed)
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0], "PO-1")
}

func TestNotifyAllRetriesOnceThenFails(t *testing.T) {
	n := NewNotifier(configuredSMTP(), nil)
	attempts := 0
	n.send = func(m *gomail.Message) error {
		attempts++
		return errors.New("connection refused")
	}

	res := n.NotifyAll(context.Background(), []domain.Alert{
		{Kind: domain.AlertPaymentDelay, Subject: "Slow", EmailBody: "body"},
	})

	assert.Zero(t, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 2, attempts)
}

func TestNotifyAllCancelledContextSkipsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := NewNotifier(configuredSMTP(), nil)
	attempts := make(chan struct{}, 2)
	n.send = func(m *gomail.Message) error {
		attempts <- struct{}{}
		<-ctx.Done()
		return errors.New("dial interrupted")
	}

	res := n.NotifyAll(ctx, []domain.Alert{
		{Kind: domain.AlertAmountThreshold, Subject: "PO-9", EmailBody: "body"},
	})

	assert.Zero(t, res.Sent)
	assert.Equal(t, 1, res.Failed)
	<-attempts
	select {
	case <-attempts:
		t.Fatal("second send attempt after cancellation")
	default:
	}
}

func TestNotifyAllRecoversOnRetry(t *testing.T) {
	n := NewNotifier(configuredSMTP(), nil)
	attempts := 0
	n.send = func(m *gomail.Message) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	}

	res := n.NotifyAll(context.Background(), []domain.Alert{
		{Kind: domain.AlertPendingStatus, Subject: "PO-1", EmailBody: "body"},
	})

	assert.Equal(t, 1, res.Sent)
	assert.Zero(t, res.Failed)
}

func TestSendOnceTimesOut(t *testing.T) {
	cfg := configuredSMTP()
	cfg.Timeout = 20 * time.Millisecond
	n := NewNotifier(cfg, nil)
	n.send = func(m *gomail.Message) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	}

	err := n.sendOnce(context.Background(), gomail.NewMessage())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
}

func TestSendRemindersRoutesToResponsible(t *testing.T) {
	n := NewNotifier(configuredSMTP(), nil)
	var recipients []string
	n.send = func(m *gomail.Message) error {
		recipients = append(recipients, m.GetHeader("To")[0])
		return nil
	}

	res := n.SendReminders(context.Background(), []Reminder{
		{ContractID: "C-1", Recipient: "buyer@corp.example", Subject: "s", Body: "b"},
	})

	assert.Equal(t, 1, res.Sent)
	require.Len(t, recipients, 1)
	assert.Contains(t, recipients[0], "buyer@corp.example")
}
