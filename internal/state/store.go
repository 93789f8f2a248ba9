// Package state persists the per-invoice reminder history to a single JSON
// file. The whole mapping is rewritten on every mutation — fine at the scale
// of tens to low hundreds of invoices, and deliberately isolated behind the
// Store type so a real embedded store could replace it later without touching
// the escalation engine.
//
// The store assumes a single running process. There is no file locking and it
// is not safe for concurrent writers. A crash between a successful send and
// the following persist can cause one duplicate reminder on the next pass;
// that is an accepted limitation of the design, not something this package
// papers over.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nyashahama/invoice-reminder-bot/internal/escalate"
)

// fileVersion tags the on-disk shape so a future format change can detect and
// migrate old files instead of misparsing them.
const fileVersion = 1

// ErrCorruptState marks a state file that exists but cannot be parsed. It is
// fatal at startup: silently discarding reminder history would re-send every
// reminder, so the operator has to resolve it.
var ErrCorruptState = errors.New("state: corrupt state file")

// ─── FILE LAYOUT ──────────────────────────────────────────────────────────────

type fileRecord struct {
	RemindersSent int        `json:"reminders_sent"`
	LastReminder  *time.Time `json:"last_reminder"`
}

type fileEnvelope struct {
	Version  int                   `json:"version"`
	Invoices map[string]fileRecord `json:"invoices"`
}

// ─── STORE ────────────────────────────────────────────────────────────────────

// Store is the durable invoice-ID → reminder-history mapping. Load it once at
// startup; RecordSend is the single mutation path and persists immediately.
type Store struct {
	path     string
	invoices map[string]fileRecord
}

// Load reads the state file at path. A missing file is not an error — it
// returns an empty store, as on first run. An unparseable file returns an
// error wrapping ErrCorruptState.
func Load(path string) (*Store, error) {
	s := &Store{
		path:     path,
		invoices: make(map[string]fileRecord),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("state: read %s: %w", path, err)
	}

	var env fileEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptState, path, err)
	}
	if env.Invoices != nil {
		s.invoices = env.Invoices
	}
	return s, nil
}

// Record returns the reminder history for an invoice, or a zero-valued record
// for an invoice the store has never seen. Fresh records are not inserted
// into the mapping until a send is recorded.
func (s *Store) Record(invoiceID string) escalate.Record {
	rec := s.invoices[invoiceID]
	return escalate.Record{
		RemindersSent: rec.RemindersSent,
		LastReminder:  rec.LastReminder,
	}
}

// Len reports how many invoices have at least one recorded reminder.
func (s *Store) Len() int {
	return len(s.invoices)
}

// RecordSend records a successful send of the given ordinal: reminders_sent
// becomes max(current, ordinal), last_reminder is set to sentAt, and the
// whole store is persisted before returning. Records are never deleted —
// invoices that get paid simply stop appearing in the unpaid list and their
// record goes inert.
func (s *Store) RecordSend(invoiceID string, ordinal int, sentAt time.Time) error {
	rec := s.invoices[invoiceID]
	if ordinal > rec.RemindersSent {
		rec.RemindersSent = ordinal
	}
	rec.LastReminder = &sentAt
	s.invoices[invoiceID] = rec

	return s.persist()
}

// persist serializes the full mapping and swaps it into place with a
// write-then-rename, so a crash mid-write leaves the previous file intact.
func (s *Store) persist() error {
	env := fileEnvelope{
		Version:  fileVersion,
		Invoices: s.invoices,
	}
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("state: marshal: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".invoice_state_*.json")
	if err != nil {
		return fmt.Errorf("state: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("state: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("state: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("state: rename into place: %w", err)
	}
	return nil
}
