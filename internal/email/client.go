// Package email defines the interface for reminder email delivery and
// provides an SMTP-backed implementation.
package email

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when SMTP credentials are missing. The bot
// reports the failed send and moves on — a misconfigured transport must never
// crash a pass.
var ErrNotConfigured = errors.New("email: smtp not configured")

// ReminderParams holds the data needed to compose one payment reminder.
// Fields are plain values so this package stays decoupled from billing.
type ReminderParams struct {
	To           string  // recipient email address
	InvoiceLabel string  // invoice number, or the provider ID when unnumbered
	AmountDue    float64 // major currency units
	Currency     string  // e.g. "USD"
	DaysOverdue  int     // the overdue line is omitted when <= 0
	Ordinal      int     // which reminder this is, 1-based
}

// Sender is the interface the bot uses to send reminder emails.
// Tests inject a stub that records calls without hitting the network.
type Sender interface {
	// SendReminder composes and delivers one reminder with both plain-text
	// and HTML bodies. A returned error means the send must not be recorded.
	SendReminder(ctx context.Context, p ReminderParams) error
}
