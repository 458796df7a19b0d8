// Package reminder runs the alert classification on a fixed interval and
// logs the summary whenever something needs attention.
package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/mmynk/billminder/internal/alerts"
)

// Classifier produces the current alerts.
type Classifier interface {
	Classify(ctx context.Context) (alerts.Alerts, error)
}

// Loop periodically classifies bills.
type Loop struct {
	engine   Classifier
	interval time.Duration
	logger   *slog.Logger
}

// New returns a Loop. A nil logger uses slog.Default.
func New(engine Classifier, interval time.Duration, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{engine: engine, interval: interval, logger: logger}
}

// Run checks once immediately, then on every tick until ctx is done.
// A non-positive interval returns at once.
func (l *Loop) Run(ctx context.Context) {
	if l.interval <= 0 {
		return
	}
	l.logger.Info("Reminder loop started", "interval", l.interval.String())

	l.Check(ctx)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Reminder loop stopped")
			return
		case <-ticker.C:
			l.Check(ctx)
		}
	}
}

// Check classifies once and logs the result. Errors are logged, not
// returned, so one failed check does not stop the loop.
func (l *Loop) Check(ctx context.Context) (alerts.Alerts, bool) {
	a, err := l.engine.Classify(ctx)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Error("Reminder check failed", "error", err)
		}
		return alerts.Alerts{}, false
	}
	if a.Len() == 0 {
		l.logger.Debug("No bills need attention")
		return a, true
	}
	l.logger.Warn("Bills need attention",
		"overdue", len(a.Overdue),
		"critical", len(a.Critical),
		"urgent", len(a.Urgent),
		"upcoming", len(a.Upcoming),
		"summary", alerts.Render(a),
	)
	return a, true
}
