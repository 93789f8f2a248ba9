package email_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nyashahama/invoice-reminder-bot/internal/email"
)

func overdueParams() email.ReminderParams {
	return email.ReminderParams{
		To:           "billing@acme.test",
		InvoiceLabel: "INV-0042",
		AmountDue:    1250.50,
		Currency:     "USD",
		DaysOverdue:  10,
		Ordinal:      1,
	}
}

// ─── BuildMessage — headers ───────────────────────────────────────────────────

func TestBuildMessage_Headers(t *testing.T) {
	msg := string(email.BuildMessage("Invoice Reminder Bot <bot@acme.test>", overdueParams()))

	headerChecks := []string{
		"From: Invoice Reminder Bot <bot@acme.test>\r\n",
		"To: billing@acme.test\r\n",
		"Subject: Reminder: Payment Due for Invoice INV-0042\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/alternative; boundary=",
		"Message-ID: <",
	}
	for _, want := range headerChecks {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing header fragment %q", want)
		}
	}
}

func TestBuildMessage_MessageIDsAreUnique(t *testing.T) {
	p := overdueParams()
	a := string(email.BuildMessage("bot@acme.test", p))
	b := string(email.BuildMessage("bot@acme.test", p))

	idOf := func(msg string) string {
		for _, line := range strings.Split(msg, "\r\n") {
			if strings.HasPrefix(line, "Message-ID: ") {
				return line
			}
		}
		return ""
	}
	if idOf(a) == "" || idOf(a) == idOf(b) {
		t.Errorf("expected distinct Message-ID headers, got %q and %q", idOf(a), idOf(b))
	}
}

// ─── BuildMessage — body ──────────────────────────────────────────────────────

func TestBuildMessage_ContainsBothBodies(t *testing.T) {
	msg := string(email.BuildMessage("bot@acme.test", overdueParams()))

	if !strings.Contains(msg, "Content-Type: text/plain; charset=utf-8") {
		t.Error("missing plain-text part")
	}
	if !strings.Contains(msg, "Content-Type: text/html; charset=utf-8") {
		t.Error("missing HTML part")
	}
	// Both renderings carry the invoice facts.
	if strings.Count(msg, "INV-0042") < 3 { // subject + both bodies
		t.Errorf("invoice label should appear in subject and both bodies:\n%s", msg)
	}
	if !strings.Contains(msg, "Amount Due: USD 1250.50") {
		t.Error("plain body missing amount line")
	}
	if !strings.Contains(msg, "<strong>Amount Due:</strong> USD 1250.50") {
		t.Error("HTML body missing amount line")
	}
}

func TestBuildMessage_OverdueLine(t *testing.T) {
	t.Run("included when overdue", func(t *testing.T) {
		msg := string(email.BuildMessage("bot@acme.test", overdueParams()))
		if !strings.Contains(msg, "Days Overdue: 10") {
			t.Error("plain body missing overdue line")
		}
		if !strings.Contains(msg, "<strong>Days Overdue:</strong> 10") {
			t.Error("HTML body missing overdue line")
		}
	})

	t.Run("omitted when not yet overdue", func(t *testing.T) {
		p := overdueParams()
		p.DaysOverdue = 0
		msg := string(email.BuildMessage("bot@acme.test", p))
		if strings.Contains(msg, "Days Overdue") {
			t.Error("overdue line must be omitted when DaysOverdue <= 0")
		}
	})
}

func TestBuildMessage_TerminatesMultipart(t *testing.T) {
	msg := string(email.BuildMessage("bot@acme.test", overdueParams()))
	if !strings.HasSuffix(msg, "--\r\n") {
		t.Errorf("multipart body must end with the closing boundary, got tail %q", msg[len(msg)-20:])
	}
}

// ─── SendReminder — configuration guard ───────────────────────────────────────

func TestSendReminder_MissingCredentialsReturnsErrNotConfigured(t *testing.T) {
	tests := []struct {
		name           string
		user, password string
	}{
		{"no user", "", "secret"},
		{"no password", "bot@acme.test", ""},
		{"neither", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := email.NewSMTPSender("smtp.acme.test", 587, tt.user, tt.password, "Bot")
			err := s.SendReminder(context.Background(), overdueParams())
			if !errors.Is(err, email.ErrNotConfigured) {
				t.Errorf("expected ErrNotConfigured, got %v", err)
			}
		})
	}
}
