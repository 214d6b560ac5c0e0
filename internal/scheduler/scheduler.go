package scheduler

import (
	"context"
	"log/slog"
	"time"

	"communitypulse/internal/domain"
)

// ReminderScheduler periodically runs the daily reminder pass. The pass
// itself dedupes per run, and notifier implementations are expected to be
// idempotent per (recipient, event) within a day, so waking up more than
// once per day is harmless.
type ReminderScheduler struct {
	notifier domain.NotificationService
	logger   *slog.Logger
	interval time.Duration
}

func NewReminderScheduler(notifier domain.NotificationService, logger *slog.Logger, interval time.Duration) *ReminderScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ReminderScheduler{
		notifier: notifier,
		logger:   logger,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled, invoking the reminder pass once per UTC
// day. It checks every interval whether the day has rolled over since the
// last successful pass.
func (s *ReminderScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var lastRun string
	runOnce := func(now time.Time) {
		day := now.UTC().Format("2006-01-02")
		if day == lastRun {
			return
		}
		sent, failed, err := s.notifier.RunDailyReminderPass(ctx, now)
		if err != nil {
			s.logger.Error("reminder pass failed", "err", err)
			return
		}
		lastRun = day
		s.logger.Info("reminder pass completed", "day", day, "sent", sent, "failed", failed)
	}

	runOnce(time.Now())
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			runOnce(now)
		}
	}
}
