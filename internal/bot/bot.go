// Package bot drives the reminder workflow: one pass fetches every unpaid
// invoice, asks the escalation engine whether a reminder is due, sends it,
// and records the send. It is intentionally decoupled from the command
// surface — main wires flags to the three entry points (RunPass, ListUnpaid,
// SendManual) and the Runner handles continuous mode.
package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nyashahama/invoice-reminder-bot/internal/billing"
	"github.com/nyashahama/invoice-reminder-bot/internal/email"
	"github.com/nyashahama/invoice-reminder-bot/internal/escalate"
	"github.com/nyashahama/invoice-reminder-bot/internal/state"
)

// Config holds the escalation policy the bot applies on every pass.
type Config struct {
	// Schedule is the ordered days-overdue thresholds, one per reminder
	// ordinal. Conventionally strictly increasing, not enforced.
	Schedule []int

	// MaxReminders caps how many reminders one invoice ever receives.
	// Typically len(Schedule), but it may be lower.
	MaxReminders int
}

// Bot evaluates invoices sequentially, one full pass at a time. It holds no
// mutable state of its own — all durable state lives in the store.
type Bot struct {
	billing billing.Client
	mailer  email.Sender
	store   *state.Store
	cfg     Config
	logger  *slog.Logger

	// now is the clock, injectable for tests.
	now func() time.Time
}

// New constructs a Bot with all required collaborators.
func New(bc billing.Client, mailer email.Sender, st *state.Store, cfg Config, logger *slog.Logger) *Bot {
	return &Bot{
		billing: bc,
		mailer:  mailer,
		store:   st,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// PassSummary reports what one evaluation pass did. The runner keeps the most
// recent one for the status endpoint.
type PassSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Checked    int       `json:"checked"` // unpaid invoices evaluated
	Sent       int       `json:"sent"`    // reminders delivered and recorded
	Skipped    int       `json:"skipped"` // too early, max reached, no due date, no contact
	Failed     int       `json:"failed"`  // send attempts that errored
}

// ─── PASS ─────────────────────────────────────────────────────────────────────

// RunPass performs one full evaluation of all currently-unpaid invoices.
//
// Per-invoice failures are logged and never abort the pass; the store is only
// updated after a confirmed successful send, so a failed send is naturally
// retried on the next pass. A missing billing configuration degrades to a
// reported no-op. Only a fetch failure is returned as an error.
func (b *Bot) RunPass(ctx context.Context) (PassSummary, error) {
	summary := PassSummary{StartedAt: b.now()}
	b.logger.Info("pass: checking for unpaid invoices")

	invoices, err := b.billing.ListUnpaidInvoices(ctx)
	if errors.Is(err, billing.ErrNotConfigured) {
		b.logger.Warn("pass: billing not configured, nothing to do")
		summary.FinishedAt = b.now()
		return summary, nil
	}
	if err != nil {
		summary.FinishedAt = b.now()
		return summary, fmt.Errorf("pass: fetch unpaid invoices: %w", err)
	}

	b.logger.Info("pass: unpaid invoices fetched", "count", len(invoices))

	for _, inv := range invoices {
		if inv.DueDate == nil {
			// Invoices without a due date are never escalated.
			summary.Skipped++
			continue
		}
		summary.Checked++

		daysOverdue := escalate.DaysOverdue(*inv.DueDate, b.now())
		record := b.store.Record(inv.ID)
		decision := escalate.Decide(daysOverdue, record, b.cfg.Schedule, b.cfg.MaxReminders)

		if !decision.Send {
			b.logger.Debug("pass: skipping invoice",
				"invoice", inv.Label(),
				"reason", string(decision.Reason),
				"days_overdue", daysOverdue,
				"reminders_sent", record.RemindersSent,
			)
			summary.Skipped++
			continue
		}

		b.logger.Info("pass: sending reminder",
			"invoice", inv.Label(),
			"ordinal", decision.Ordinal,
			"days_overdue", daysOverdue,
		)
		b.deliver(ctx, inv, decision.Ordinal, daysOverdue, &summary)
	}

	summary.FinishedAt = b.now()
	b.logger.Info("pass: finished",
		"checked", summary.Checked,
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	return summary, nil
}

// deliver resolves the recipient, sends one reminder, and records it on
// success. Every failure path logs and returns — the caller moves on to the
// next invoice.
func (b *Bot) deliver(ctx context.Context, inv billing.Invoice, ordinal, daysOverdue int, summary *PassSummary) {
	to, err := b.resolveRecipient(ctx, inv)
	if err != nil {
		b.logger.Warn("pass: no email for invoice, skipping", "invoice", inv.Label(), "error", err)
		summary.Skipped++
		return
	}

	err = b.mailer.SendReminder(ctx, email.ReminderParams{
		To:           to,
		InvoiceLabel: inv.Label(),
		AmountDue:    inv.AmountDue,
		Currency:     inv.Currency,
		DaysOverdue:  daysOverdue,
		Ordinal:      ordinal,
	})
	if err != nil {
		// Not recorded: the next pass retries since the store is untouched.
		b.logger.Error("pass: failed to send reminder", "invoice", inv.Label(), "error", err)
		summary.Failed++
		return
	}

	summary.Sent++
	if err := b.store.RecordSend(inv.ID, ordinal, b.now()); err != nil {
		// The email went out but the record did not persist — the next pass
		// may send a duplicate. Accepted limitation; surface it loudly.
		b.logger.Error("pass: reminder sent but state not persisted", "invoice", inv.Label(), "error", err)
	}
}

// resolveRecipient prefers the email on the invoice itself and falls back to
// a customer lookup.
func (b *Bot) resolveRecipient(ctx context.Context, inv billing.Invoice) (string, error) {
	if inv.CustomerEmail != "" {
		return inv.CustomerEmail, nil
	}
	if inv.CustomerID == "" {
		return "", errors.New("bot: invoice has no customer reference")
	}
	contact, err := b.billing.GetCustomerContact(ctx, inv.CustomerID)
	if err != nil {
		return "", fmt.Errorf("bot: look up contact: %w", err)
	}
	if contact.Email == "" {
		return "", fmt.Errorf("bot: customer %s has no email address", inv.CustomerID)
	}
	return contact.Email, nil
}

// ─── REPORT ───────────────────────────────────────────────────────────────────

// ListUnpaid writes a plain-text report of all unpaid invoices to w: amount,
// customer, due date with days overdue, and reminders sent so far.
func (b *Bot) ListUnpaid(ctx context.Context, w io.Writer) error {
	invoices, err := b.billing.ListUnpaidInvoices(ctx)
	if errors.Is(err, billing.ErrNotConfigured) {
		fmt.Fprintln(w, "billing not configured")
		return nil
	}
	if err != nil {
		return fmt.Errorf("bot: fetch unpaid invoices: %w", err)
	}

	if len(invoices) == 0 {
		fmt.Fprintln(w, "No unpaid invoices")
		return nil
	}

	rule := "================================================================================"
	fmt.Fprintf(w, "\n%s\nUNPAID INVOICES\n%s\n", rule, rule)

	for _, inv := range invoices {
		customer := inv.CustomerEmail
		if customer == "" {
			customer = "N/A"
		}

		fmt.Fprintf(w, "\nInvoice: %s\n", inv.Label())
		fmt.Fprintf(w, "  Amount: %s %.2f\n", inv.Currency, inv.AmountDue)
		fmt.Fprintf(w, "  Customer: %s\n", customer)
		if inv.DueDate != nil {
			daysOverdue := escalate.DaysOverdue(*inv.DueDate, b.now())
			fmt.Fprintf(w, "  Due Date: %s (%d days overdue)\n", inv.DueDate.Format("2006-01-02"), daysOverdue)
		}
		fmt.Fprintf(w, "  Reminders Sent: %d/%d\n", b.store.Record(inv.ID).RemindersSent, b.cfg.MaxReminders)
	}
	return nil
}

// ─── MANUAL OVERRIDE ──────────────────────────────────────────────────────────

// SendManual sends a reminder for one specific invoice immediately, bypassing
// the schedule gating. The ordinal is always reminders_sent + 1. The invoice
// must still be unpaid.
func (b *Bot) SendManual(ctx context.Context, invoiceID string) error {
	invoices, err := b.billing.ListUnpaidInvoices(ctx)
	if err != nil {
		return fmt.Errorf("bot: fetch unpaid invoices: %w", err)
	}

	var target *billing.Invoice
	for i := range invoices {
		if invoices[i].ID == invoiceID {
			target = &invoices[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("bot: invoice %s not found or already paid", invoiceID)
	}

	ordinal := b.store.Record(invoiceID).RemindersSent + 1
	daysOverdue := 0
	if target.DueDate != nil {
		daysOverdue = escalate.DaysOverdue(*target.DueDate, b.now())
	}

	b.logger.Info("manual: sending reminder", "invoice", target.Label(), "ordinal", ordinal)

	to, err := b.resolveRecipient(ctx, *target)
	if err != nil {
		return err
	}
	if err := b.mailer.SendReminder(ctx, email.ReminderParams{
		To:           to,
		InvoiceLabel: target.Label(),
		AmountDue:    target.AmountDue,
		Currency:     target.Currency,
		DaysOverdue:  daysOverdue,
		Ordinal:      ordinal,
	}); err != nil {
		return fmt.Errorf("bot: send manual reminder: %w", err)
	}

	if err := b.store.RecordSend(invoiceID, ordinal, b.now()); err != nil {
		return fmt.Errorf("bot: reminder sent but state not persisted: %w", err)
	}
	b.logger.Info("manual: reminder sent", "invoice", target.Label(), "ordinal", ordinal)
	return nil
}
