package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// multipart boundary for the alternative text/HTML body. Static is fine: the
// bodies are generated from templates below and never contain this marker.
const boundary = "=_reminder_alt_boundary"

// smtpSender is the concrete Sender backed by plain SMTP with STARTTLS.
type smtpSender struct {
	host     string
	port     int
	user     string // also the From address
	password string
	fromName string // display name, e.g. "Invoice Reminder Bot"
}

// NewSMTPSender returns a Sender that delivers mail through the given SMTP
// relay. user doubles as the envelope sender and From address. user and
// password may be empty, in which case sends return ErrNotConfigured.
func NewSMTPSender(host string, port int, user, password, fromName string) Sender {
	return &smtpSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		fromName: fromName,
	}
}

// SendReminder composes the multipart message and hands it to the relay.
// One attempt, no retry: a failure is reported to the caller, which simply
// does not record the send — the next pass retries naturally.
func (c *smtpSender) SendReminder(ctx context.Context, p ReminderParams) error {
	if c.user == "" || c.password == "" {
		return ErrNotConfigured
	}

	msg := BuildMessage(c.from(), p)
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	d := net.Dialer{Timeout: 15 * time.Second}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("email: dial %s: %w", addr, err)
	}
	// net/smtp is not context-aware; carry the deadline onto the socket so a
	// stalled relay cannot hang the pass indefinitely.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	client, err := smtp.NewClient(conn, c.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("email: smtp handshake: %w", err)
	}
	defer client.Close()

	if err := client.StartTLS(&tls.Config{ServerName: c.host}); err != nil {
		return fmt.Errorf("email: starttls: %w", err)
	}
	if err := client.Auth(smtp.PlainAuth("", c.user, c.password, c.host)); err != nil {
		return fmt.Errorf("email: auth: %w", err)
	}
	if err := client.Mail(c.user); err != nil {
		return fmt.Errorf("email: mail from: %w", err)
	}
	if err := client.Rcpt(p.To); err != nil {
		return fmt.Errorf("email: rcpt to %s: %w", p.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("email: data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("email: write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("email: close body: %w", err)
	}

	return client.Quit()
}

func (c *smtpSender) from() string {
	if c.fromName == "" {
		return c.user
	}
	return fmt.Sprintf("%s <%s>", c.fromName, c.user)
}

// ─── MESSAGE COMPOSITION ─────────────────────────────────────────────────────

// BuildMessage assembles the full RFC 5322 message: headers plus a
// multipart/alternative body carrying the plain-text and HTML renderings.
func BuildMessage(from string, p ReminderParams) []byte {
	subject := fmt.Sprintf("Reminder: Payment Due for Invoice %s", p.InvoiceLabel)

	var b strings.Builder
	writeHeader := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}

	writeHeader("From", from)
	writeHeader("To", p.To)
	writeHeader("Subject", subject)
	writeHeader("Date", time.Now().UTC().Format(time.RFC1123Z))
	writeHeader("Message-ID", fmt.Sprintf("<%s@invoice-reminder-bot>", uuid.NewString()))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
	b.WriteString("\r\n")

	writePart := func(contentType, body string) {
		b.WriteString("--" + boundary + "\r\n")
		b.WriteString("Content-Type: " + contentType + "; charset=utf-8\r\n\r\n")
		b.WriteString(body)
		b.WriteString("\r\n")
	}
	writePart("text/plain", reminderText(p))
	writePart("text/html", reminderHTML(p))
	b.WriteString("--" + boundary + "--\r\n")

	return []byte(b.String())
}

func reminderText(p ReminderParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\r\n\r\n")
	fmt.Fprintf(&b, "This is a friendly reminder that payment is due for Invoice %s.\r\n\r\n", p.InvoiceLabel)
	fmt.Fprintf(&b, "Amount Due: %s %.2f\r\n", p.Currency, p.AmountDue)
	if p.DaysOverdue > 0 {
		fmt.Fprintf(&b, "Days Overdue: %d\r\n", p.DaysOverdue)
	}
	fmt.Fprintf(&b, "\r\nPlease make payment at your earliest convenience.\r\n\r\n")
	fmt.Fprintf(&b, "Thank you,\r\nInvoice Reminder Bot\r\n")
	return b.String()
}

func reminderHTML(p ReminderParams) string {
	overdueLine := ""
	if p.DaysOverdue > 0 {
		overdueLine = fmt.Sprintf("<p><strong>Days Overdue:</strong> %d</p>", p.DaysOverdue)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: sans-serif; color: #1a1a1a; max-width: 560px; margin: 0 auto; padding: 24px;">
  <p>Hello,</p>
  <p>This is a friendly reminder that payment is due for Invoice <strong>%s</strong>.</p>
  <p><strong>Amount Due:</strong> %s %.2f</p>
  %s
  <p>Please make payment at your earliest convenience.</p>
  <p>Thank you,<br>Invoice Reminder Bot</p>
</body>
</html>`, p.InvoiceLabel, p.Currency, p.AmountDue, overdueLine)
}
