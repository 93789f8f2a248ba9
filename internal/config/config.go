// Package config loads and validates all environment variables at startup.
// Every other package receives typed values — nothing reads os.Getenv
// directly, and there is no ambient global configuration.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── General ───────────────────────────────────────────────────────────────
	Env string // "development" | "production"

	// ── Stripe ────────────────────────────────────────────────────────────────
	// Optional: without a key the bot degrades to a reported no-op instead of
	// refusing to start, so list/check commands stay usable while onboarding.
	StripeSecretKey string

	// ── SMTP ──────────────────────────────────────────────────────────────────
	SMTPHost      string // default "smtp.gmail.com"
	SMTPPort      int    // default 587
	SMTPUser      string // also the From address; optional, see above
	SMTPPassword  string
	EmailFromName string // display name, default "Invoice Reminder Bot"

	// ── Reminder policy ───────────────────────────────────────────────────────
	ReminderDays []int // days-overdue thresholds, default [7, 14, 21]
	MaxReminders int   // default 3

	// ── State ─────────────────────────────────────────────────────────────────
	StateFile string // default "invoice_state.json"

	// ── Status server ─────────────────────────────────────────────────────────
	// Optional listen address (e.g. ":8080") for the continuous-mode status
	// endpoint. Empty disables it.
	StatusAddr string
}

// Load reads all environment variables and returns a validated Config.
// It automatically loads a .env file from the working directory when present,
// so plain `go run ./cmd/remindbot` works in development without any wrapper.
// Real environment variables always take precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv(".env")

	days, err := ParseSchedule(getEnv("REMINDER_DAYS", "7,14,21"))
	if err != nil {
		return nil, err
	}

	c := &Config{
		Env:             getEnv("ENV", "development"),
		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		SMTPHost:        getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:        getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:        os.Getenv("SMTP_USER"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		EmailFromName:   getEnv("EMAIL_FROM_NAME", "Invoice Reminder Bot"),
		ReminderDays:    days,
		MaxReminders:    getEnvAsInt("MAX_REMINDERS", 3),
		StateFile:       getEnv("STATE_FILE", "invoice_state.json"),
		StatusAddr:      os.Getenv("STATUS_ADDR"),
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	var errs []error

	if c.MaxReminders <= 0 {
		errs = append(errs, fmt.Errorf("MAX_REMINDERS must be positive, got %d", c.MaxReminders))
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		errs = append(errs, fmt.Errorf("SMTP_PORT out of range: %d", c.SMTPPort))
	}
	if c.StateFile == "" {
		errs = append(errs, errors.New("STATE_FILE must not be empty"))
	}
	// Missing Stripe or SMTP credentials are deliberately NOT errors — the
	// bot reports them as degraded transports at runtime.

	return errors.Join(errs...)
}

// ParseSchedule parses a comma-separated days-overdue list such as "7,14,21"
// into the escalation schedule. Every entry must be a positive integer; the
// conventional strictly-increasing order is not enforced.
func ParseSchedule(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("REMINDER_DAYS must not be empty")
	}

	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, part := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("REMINDER_DAYS: invalid entry %q: %w", part, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("REMINDER_DAYS: entries must be positive, got %d", d)
		}
		days = append(days, d)
	}
	return days, nil
}

// ─── DOT-ENV LOADER ──────────────────────────────────────────────────────────

// loadDotEnv reads key=value pairs from path and sets them in the environment,
// but only for keys that are not already set. This means real env vars (e.g.
// from Docker / systemd / your shell) always win over the file.
// Missing file, blank lines, and #-comments are all silently ignored.
func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return // file absent — that's fine
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		// Strip optional surrounding quotes: KEY="value" or KEY='value'
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}
		// Only set if the key isn't already present in the environment.
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}
