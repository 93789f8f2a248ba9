package billing_test

import (
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/nyashahama/invoice-reminder-bot/internal/billing"
)

// ─── FromStripeInvoice ────────────────────────────────────────────────────────

func TestFromStripeInvoice_TranslatesAllFields(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	inv := billing.FromStripeInvoice(&stripe.Invoice{
		ID:            "in_abc123",
		Number:        "INV-0042",
		CustomerEmail: "billing@acme.test",
		AmountDue:     125050, // cents
		Currency:      stripe.CurrencyUSD,
		DueDate:       due.Unix(),
		Created:       created.Unix(),
		Customer:      &stripe.Customer{ID: "cus_xyz"},
	})

	if inv.ID != "in_abc123" {
		t.Errorf("ID: got %q", inv.ID)
	}
	if inv.Number != "INV-0042" {
		t.Errorf("Number: got %q", inv.Number)
	}
	if inv.CustomerID != "cus_xyz" {
		t.Errorf("CustomerID: got %q", inv.CustomerID)
	}
	if inv.CustomerEmail != "billing@acme.test" {
		t.Errorf("CustomerEmail: got %q", inv.CustomerEmail)
	}
	if inv.AmountDue != 1250.50 {
		t.Errorf("AmountDue: got %v, want 1250.50 (cents converted)", inv.AmountDue)
	}
	if inv.Currency != "USD" {
		t.Errorf("Currency: got %q, want upper-cased USD", inv.Currency)
	}
	if inv.DueDate == nil || !inv.DueDate.Equal(due) {
		t.Errorf("DueDate: got %v, want %v", inv.DueDate, due)
	}
	if !inv.Created.Equal(created) {
		t.Errorf("Created: got %v, want %v", inv.Created, created)
	}
}

func TestFromStripeInvoice_MissingDueDateBecomesNil(t *testing.T) {
	inv := billing.FromStripeInvoice(&stripe.Invoice{
		ID:        "in_nodue",
		AmountDue: 100,
		Currency:  stripe.CurrencyEUR,
	})
	if inv.DueDate != nil {
		t.Errorf("DueDate: expected nil for zero due_date, got %v", inv.DueDate)
	}
}

func TestFromStripeInvoice_NilCustomerLeavesIDEmpty(t *testing.T) {
	inv := billing.FromStripeInvoice(&stripe.Invoice{ID: "in_x", AmountDue: 100})
	if inv.CustomerID != "" {
		t.Errorf("CustomerID: expected empty, got %q", inv.CustomerID)
	}
}

// ─── Invoice.Label ────────────────────────────────────────────────────────────

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		inv  billing.Invoice
		want string
	}{
		{"prefers number", billing.Invoice{ID: "in_abc", Number: "INV-7"}, "INV-7"},
		{"falls back to id", billing.Invoice{ID: "in_abc"}, "in_abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.Label(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
