// Package escalate implements the reminder escalation decision: given how
// many days an invoice is overdue and how many reminders it has already
// received, Decide picks the next reminder to send or reports why none is
// due.
//
// The package is pure — no I/O, no clock, no dependencies. The bot passes in
// explicit inputs and the tests drive every branch directly.
package escalate

import "time"

// ─── TYPES ────────────────────────────────────────────────────────────────────

// SkipReason explains why Decide declined to send. String values appear in
// structured logs and in the list-unpaid report.
type SkipReason string

const (
	// SkipTooEarly — the invoice has not been overdue long enough for the
	// next reminder in the schedule.
	SkipTooEarly SkipReason = "too_early"

	// SkipMaxReached — the invoice already received the configured maximum
	// number of reminders.
	SkipMaxReached SkipReason = "max_reached"
)

// Record is the reminder history the engine needs for one invoice. The state
// package persists it; an invoice that has never been reminded is represented
// by the zero value.
type Record struct {
	// RemindersSent is how many reminders this invoice has received. It is
	// monotonically non-decreasing and never exceeds the configured maximum.
	RemindersSent int

	// LastReminder is when the most recent reminder was sent; nil if none
	// has been sent yet. The engine does not read it — it is carried for the
	// list-unpaid report and the persisted state file.
	LastReminder *time.Time
}

// Decision is the outcome of one evaluation. Either Send is true and Ordinal
// names the reminder to send, or Send is false and Reason explains the skip.
type Decision struct {
	Send    bool
	Ordinal int        // 1-based position in the schedule; 0 unless Send
	Reason  SkipReason // set only when Send is false
}

// ─── CORE FUNCTIONS ───────────────────────────────────────────────────────────

// Decide scans the schedule in order and selects the first ordinal i (1-based)
// for which daysOverdue has reached schedule[i-1] AND fewer than i reminders
// have been sent AND the maximum has not been reached.
//
// Reminders are strictly sequential: reminder 2 is never sent before reminder
// 1 has been recorded, even when daysOverdue already qualifies for a higher
// threshold. There is deliberately no catch-up to the highest qualifying
// ordinal — the next pass sends the next one.
//
// When no ordinal qualifies, a record at the maximum reports SkipMaxReached
// regardless of daysOverdue; every other case is SkipTooEarly. An empty
// schedule is valid and always yields SkipTooEarly. A due date in the future
// produces daysOverdue <= 0 and never matches, since thresholds are positive.
func Decide(daysOverdue int, record Record, schedule []int, maxReminders int) Decision {
	for i, days := range schedule {
		ordinal := i + 1
		if daysOverdue >= days && record.RemindersSent < ordinal && record.RemindersSent < maxReminders {
			return Decision{Send: true, Ordinal: ordinal}
		}
	}

	if record.RemindersSent >= maxReminders {
		return Decision{Reason: SkipMaxReached}
	}
	return Decision{Reason: SkipTooEarly}
}

// DaysOverdue returns the number of whole days elapsed between the invoice's
// due date and now. The result is negative or zero for a due date in the
// future, which Decide treats as not eligible.
func DaysOverdue(due, now time.Time) int {
	return int(now.Sub(due) / (24 * time.Hour))
}
