package config_test

import (
	"slices"
	"testing"

	"github.com/nyashahama/invoice-reminder-bot/internal/config"
)

// ─── ParseSchedule ────────────────────────────────────────────────────────────

func TestParseSchedule_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"7,14,21", []int{7, 14, 21}},
		{"7", []int{7}},
		{" 7 , 14 , 21 ", []int{7, 14, 21}},
		{"30,14,7", []int{30, 14, 7}}, // order is a convention, not enforced
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := config.ParseSchedule(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseSchedule_Invalid(t *testing.T) {
	tests := []string{"", "  ", "7,x,21", "7,,21", "0", "7,-3", "7;14"}
	for _, in := range tests {
		t.Run(in, func(t *testing.T) {
			if _, err := config.ParseSchedule(in); err == nil {
				t.Errorf("ParseSchedule(%q): expected error", in)
			}
		})
	}
}

// ─── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	// t.Setenv restores prior values; unset vars fall back to defaults.
	t.Setenv("REMINDER_DAYS", "")
	t.Setenv("MAX_REMINDERS", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("SMTP_PORT", "")
	t.Setenv("STATE_FILE", "")

	c, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(c.ReminderDays, []int{7, 14, 21}) {
		t.Errorf("ReminderDays: got %v", c.ReminderDays)
	}
	if c.MaxReminders != 3 {
		t.Errorf("MaxReminders: got %d", c.MaxReminders)
	}
	if c.SMTPHost != "smtp.gmail.com" || c.SMTPPort != 587 {
		t.Errorf("SMTP defaults: got %s:%d", c.SMTPHost, c.SMTPPort)
	}
	if c.StateFile != "invoice_state.json" {
		t.Errorf("StateFile: got %q", c.StateFile)
	}
}

func TestLoad_MissingCredentialsAreNotFatal(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("SMTP_PASSWORD", "")

	if _, err := config.Load(); err != nil {
		t.Errorf("missing transport credentials must not fail startup: %v", err)
	}
}

func TestLoad_BadScheduleFailsStartup(t *testing.T) {
	t.Setenv("REMINDER_DAYS", "seven,fourteen")

	if _, err := config.Load(); err == nil {
		t.Error("expected error for unparseable REMINDER_DAYS")
	}
}

func TestLoad_BadMaxRemindersFailsStartup(t *testing.T) {
	t.Setenv("MAX_REMINDERS", "-1")

	if _, err := config.Load(); err == nil {
		t.Error("expected error for negative MAX_REMINDERS")
	}
}
