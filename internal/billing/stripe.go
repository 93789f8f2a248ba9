package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/invoice"
)

// stripeClient is the concrete implementation of Client backed by the
// official stripe-go SDK. Construct it with NewStripeClient.
type stripeClient struct {
	secretKey string
}

// NewStripeClient returns a Client backed by the Stripe SDK.
// secretKey is your STRIPE_SECRET_KEY env var; it may be empty, in which case
// every call returns ErrNotConfigured.
func NewStripeClient(secretKey string) Client {
	return &stripeClient{secretKey: secretKey}
}

// ListUnpaidInvoices lists open invoices and translates them at the boundary.
// Invoices with nothing due (credit-noted down to zero, for example) are
// filtered out here so the bot never evaluates them.
func (c *stripeClient) ListUnpaidInvoices(ctx context.Context) ([]Invoice, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}
	stripe.Key = c.secretKey

	params := &stripe.InvoiceListParams{
		Status: stripe.String(string(stripe.InvoiceStatusOpen)),
	}
	params.Limit = stripe.Int64(100)
	// Propagate context deadline to the Stripe HTTP calls.
	params.Context = ctx

	var unpaid []Invoice
	iter := invoice.List(params)
	for iter.Next() {
		inv := iter.Invoice()
		if inv.AmountDue <= 0 {
			continue
		}
		unpaid = append(unpaid, FromStripeInvoice(inv))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("billing: list invoices: %w", err)
	}
	return unpaid, nil
}

// GetCustomerContact retrieves a customer's contact details. A customer
// without an email address is not an error — the caller decides whether an
// empty Email is actionable.
func (c *stripeClient) GetCustomerContact(ctx context.Context, customerID string) (Contact, error) {
	if c.secretKey == "" {
		return Contact{}, ErrNotConfigured
	}
	stripe.Key = c.secretKey

	params := &stripe.CustomerParams{}
	params.Context = ctx

	cust, err := customer.Get(customerID, params)
	if err != nil {
		return Contact{}, fmt.Errorf("billing: get customer %s: %w", customerID, err)
	}

	return Contact{
		ID:    cust.ID,
		Email: cust.Email,
		Name:  cust.Name,
	}, nil
}

// ─── TRANSLATION ─────────────────────────────────────────────────────────────

// FromStripeInvoice maps a stripe-go invoice into the narrow Invoice struct.
// Amounts arrive from Stripe in the smallest currency unit and are converted
// to major units; the currency code is upper-cased for display. A zero
// due_date on the wire becomes a nil DueDate.
func FromStripeInvoice(inv *stripe.Invoice) Invoice {
	out := Invoice{
		ID:            inv.ID,
		Number:        inv.Number,
		CustomerEmail: inv.CustomerEmail,
		AmountDue:     float64(inv.AmountDue) / 100,
		Currency:      strings.ToUpper(string(inv.Currency)),
		Created:       time.Unix(inv.Created, 0),
	}
	if inv.Customer != nil {
		out.CustomerID = inv.Customer.ID
	}
	if inv.DueDate > 0 {
		due := time.Unix(inv.DueDate, 0)
		out.DueDate = &due
	}
	return out
}
