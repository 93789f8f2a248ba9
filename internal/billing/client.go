// Package billing defines the interface for the billing provider and the
// invoice/contact data the bot works with, plus helpers for translating the
// provider's wire shapes at the boundary. Everything downstream of this
// package sees only the narrow Invoice and Contact structs — never the
// stripe-go object model.
package billing

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by the Stripe-backed Client when no secret key
// was provided. The bot degrades to a reported no-op rather than crashing.
var ErrNotConfigured = errors.New("billing: stripe not configured")

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Invoice is the subset of a provider invoice the bot needs, decoupled from
// the stripe-go wire shape. AmountDue is in major currency units (dollars,
// not cents).
type Invoice struct {
	ID            string
	Number        string // human-facing invoice number; may be empty
	CustomerID    string
	CustomerEmail string // may be empty — resolved via GetCustomerContact
	AmountDue     float64
	Currency      string     // upper-cased ISO code, e.g. "USD"
	DueDate       *time.Time // nil — the invoice is never escalated
	Created       time.Time
}

// Label returns the invoice number when the provider assigned one, falling
// back to the opaque ID. Used in email subjects, logs, and reports.
func (i Invoice) Label() string {
	if i.Number != "" {
		return i.Number
	}
	return i.ID
}

// Contact is the customer contact information needed to address a reminder.
type Contact struct {
	ID    string
	Email string
	Name  string
}

// ─── CLIENT INTERFACE ─────────────────────────────────────────────────────────

// Client is the interface the bot uses for all billing-provider calls. The
// concrete implementation wraps the official stripe-go SDK. Tests inject a
// stub.
type Client interface {
	// ListUnpaidInvoices returns all open invoices with a positive amount
	// due. Invoices already paid simply stop appearing here.
	ListUnpaidInvoices(ctx context.Context) ([]Invoice, error)

	// GetCustomerContact looks up the contact for a customer. Used when an
	// invoice carries no email of its own.
	GetCustomerContact(ctx context.Context, customerID string) (Contact, error)
}
