package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner executes passes on a fixed wall-clock interval: one immediately at
// startup, then one per tick until the context is cancelled. Passes never
// overlap — evaluation is single-threaded by design, and an interval shorter
// than a pass simply means the next tick fires as soon as the ticker
// delivers.
type Runner struct {
	bot      *Bot
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	last    *PassSummary
	nextRun time.Time
}

// NewRunner constructs a Runner. Call Start to begin processing.
func NewRunner(b *Bot, interval time.Duration, logger *slog.Logger) *Runner {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Runner{
		bot:      b,
		interval: interval,
		logger:   logger,
	}
}

// Start blocks until ctx is cancelled. Call it in a goroutine from main when
// something else (the status server) must run alongside it.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("runner: starting", "interval", r.interval)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Initial pass at startup, matching one-shot behavior.
	r.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("runner: stopped")
			return
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	summary, err := r.bot.RunPass(ctx)
	if err != nil {
		// A failed fetch skips this pass; the next tick retries. Never fatal
		// in continuous mode.
		r.logger.Error("runner: pass failed", "error", err)
	}

	r.mu.Lock()
	r.last = &summary
	r.nextRun = time.Now().Add(r.interval)
	r.mu.Unlock()
}

// LastPass returns the most recent pass summary, and false if no pass has
// completed yet. Read by the status endpoint.
func (r *Runner) LastPass() (PassSummary, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last == nil {
		return PassSummary{}, false
	}
	return *r.last, true
}

// NextRun reports when the next pass is due; zero until the first pass ran.
func (r *Runner) NextRun() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextRun
}
