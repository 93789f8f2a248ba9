// Command remindbot polls Stripe for unpaid invoices and sends escalating
// email reminders on a days-overdue schedule, tracking what it already sent
// in a local JSON state file.
//
// Modes:
//
//	remindbot                   continuous polling (default, -interval seconds)
//	remindbot -check-once       one evaluation pass, then exit
//	remindbot -list-unpaid      report unpaid invoices and exit
//	remindbot -remind in_xxx    manual reminder for one invoice, bypassing the schedule
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nyashahama/invoice-reminder-bot/internal/api"
	"github.com/nyashahama/invoice-reminder-bot/internal/billing"
	"github.com/nyashahama/invoice-reminder-bot/internal/bot"
	"github.com/nyashahama/invoice-reminder-bot/internal/config"
	"github.com/nyashahama/invoice-reminder-bot/internal/email"
	"github.com/nyashahama/invoice-reminder-bot/internal/state"
)

func main() {
	checkOnce := flag.Bool("check-once", false, "run one evaluation pass and exit")
	listUnpaid := flag.Bool("list-unpaid", false, "list unpaid invoices and exit")
	remind := flag.String("remind", "", "send a manual reminder for the given invoice ID")
	interval := flag.Int("interval", 3600, "poll interval in seconds for continuous mode")
	flag.Parse()

	// ── Logger ────────────────────────────────────────────────────────────────
	// JSON in production, pretty text in development.
	var logger *slog.Logger
	if os.Getenv("ENV") == "production" {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	slog.SetDefault(logger)

	if err := run(logger, *checkOnce, *listUnpaid, *remind, *interval); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, checkOnce, listUnpaid bool, remind string, intervalSecs int) error {
	// ── Config ────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Info("config loaded",
		"env", cfg.Env,
		"schedule", cfg.ReminderDays,
		"max_reminders", cfg.MaxReminders,
		"state_file", cfg.StateFile,
	)

	// ── State ─────────────────────────────────────────────────────────────────
	// A corrupt state file is fatal: resetting it silently would re-send every
	// reminder to every customer.
	st, err := state.Load(cfg.StateFile)
	if err != nil {
		if errors.Is(err, state.ErrCorruptState) {
			return fmt.Errorf("state file %s is corrupt — fix or remove it deliberately: %w", cfg.StateFile, err)
		}
		return fmt.Errorf("state: %w", err)
	}
	logger.Info("state loaded", "tracked_invoices", st.Len())

	// ── Collaborators ─────────────────────────────────────────────────────────
	billingClient := billing.NewStripeClient(cfg.StripeSecretKey)
	if cfg.StripeSecretKey == "" {
		logger.Warn("stripe not configured — passes will be no-ops")
	}
	mailer := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.EmailFromName)
	if cfg.SMTPUser == "" || cfg.SMTPPassword == "" {
		logger.Warn("smtp not configured — sends will fail and not be recorded")
	}

	b := bot.New(billingClient, mailer, st, bot.Config{
		Schedule:     cfg.ReminderDays,
		MaxReminders: cfg.MaxReminders,
	}, logger)

	// Root context cancelled by OS signal; an in-flight pass finishes its
	// current network call and stops at the next check.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── One-shot modes ────────────────────────────────────────────────────────
	switch {
	case listUnpaid:
		return b.ListUnpaid(ctx, os.Stdout)
	case remind != "":
		return b.SendManual(ctx, remind)
	case checkOnce:
		_, err := b.RunPass(ctx)
		return err
	}

	// ── Continuous mode ───────────────────────────────────────────────────────
	interval := time.Duration(intervalSecs) * time.Second
	runner := bot.NewRunner(b, interval, logger)
	logger.Info("starting invoice reminder bot", "interval", interval)

	// Optional status endpoint.
	var srv *http.Server
	serverErr := make(chan error, 1)
	if cfg.StatusAddr != "" {
		srv = &http.Server{
			Addr:         cfg.StatusAddr,
			Handler:      api.NewServer(runner, logger),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("status server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		runner.Start(ctx)
		close(done)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		stop() // let the runner wind down too
		<-done
		return fmt.Errorf("status server: %w", err)
	}

	<-done

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status server shutdown: %w", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}
