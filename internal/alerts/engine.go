// Package alerts classifies bills into urgency tiers and renders a
// reminder summary. It holds no state between calls.
package alerts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billminder/internal/models"
)

// Tier is an urgency bucket.
type Tier string

const (
	TierOverdue  Tier = "overdue"
	TierCritical Tier = "critical"
	TierUrgent   Tier = "urgent"
	TierUpcoming Tier = "upcoming"
)

// Tiers lists every tier in display order.
var Tiers = []Tier{TierOverdue, TierCritical, TierUrgent, TierUpcoming}

// DefaultWindows are the lookahead windows in days.
var DefaultWindows = []int{7, 3, 1}

// maxUpcomingDays is the furthest a bill can be and still get an alert.
const maxUpcomingDays = 7

// Source is the query side of the bill store.
type Source interface {
	Today() models.Date
	ListOverdue(ctx context.Context) ([]models.Bill, error)
	ListUpcoming(ctx context.Context, daysAhead int) ([]models.Bill, error)
}

// Observer receives the per-tier counts of each classification.
type Observer interface {
	AlertCounts(counts map[Tier]int)
}

// Alert is one bill placed in a tier.
type Alert struct {
	Bill        models.Bill
	Tier        Tier
	Message     string
	DaysUntil   int
	DaysOverdue int
}

// Alerts groups alerts by tier. Within a tier, alerts keep the order
// they were produced in.
type Alerts struct {
	Overdue  []Alert
	Critical []Alert
	Urgent   []Alert
	Upcoming []Alert
}

// Tier returns the alerts in tier t.
func (a Alerts) Tier(t Tier) []Alert {
	switch t {
	case TierOverdue:
		return a.Overdue
	case TierCritical:
		return a.Critical
	case TierUrgent:
		return a.Urgent
	case TierUpcoming:
		return a.Upcoming
	}
	return nil
}

// Len returns the total number of alerts.
func (a Alerts) Len() int {
	return len(a.Overdue) + len(a.Critical) + len(a.Urgent) + len(a.Upcoming)
}

// Counts returns the number of alerts per tier.
func (a Alerts) Counts() map[Tier]int {
	counts := make(map[Tier]int, len(Tiers))
	for _, t := range Tiers {
		counts[t] = len(a.Tier(t))
	}
	return counts
}

func (a *Alerts) add(al Alert) {
	switch al.Tier {
	case TierOverdue:
		a.Overdue = append(a.Overdue, al)
	case TierCritical:
		a.Critical = append(a.Critical, al)
	case TierUrgent:
		a.Urgent = append(a.Urgent, al)
	case TierUpcoming:
		a.Upcoming = append(a.Upcoming, al)
	}
}

// Engine classifies bills from a Source.
type Engine struct {
	source   Source
	windows  []int
	observer Observer
}

// Option configures an Engine.
type Option func(*Engine)

// WithWindows overrides the lookahead windows. Empty keeps the default.
func WithWindows(days []int) Option {
	return func(e *Engine) {
		if len(days) > 0 {
			e.windows = append([]int(nil), days...)
		}
	}
}

// WithObserver registers an observer for tier counts.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// NewEngine returns an Engine reading from source.
func NewEngine(source Source, opts ...Option) *Engine {
	e := &Engine{
		source:  source,
		windows: append([]int(nil), DefaultWindows...),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Windows returns the configured lookahead windows.
func (e *Engine) Windows() []int {
	return append([]int(nil), e.windows...)
}

// Classify buckets overdue and upcoming bills into tiers. Listing overdue
// bills may persist overdue transitions in the source. Each bill appears in
// at most one tier even when several windows contain it.
func (e *Engine) Classify(ctx context.Context) (Alerts, error) {
	today := e.source.Today()

	var out Alerts
	overdue, err := e.source.ListOverdue(ctx)
	if err != nil {
		return Alerts{}, fmt.Errorf("failed to list overdue bills: %w", err)
	}

	seen := make(map[string]bool)
	for _, b := range overdue {
		days := b.DueDate.DaysUntil(today)
		out.add(Alert{
			Bill:        b,
			Tier:        TierOverdue,
			DaysOverdue: days,
			Message:     fmt.Sprintf("OVERDUE: %s (%s) was due %d days ago!", b.Name, FormatAmount(b.Amount), days),
		})
		seen[b.ID] = true
	}

	for _, window := range e.windows {
		upcoming, err := e.source.ListUpcoming(ctx, window)
		if err != nil {
			return Alerts{}, fmt.Errorf("failed to list bills due within %d days: %w", window, err)
		}
		for _, b := range upcoming {
			if seen[b.ID] {
				continue
			}
			al, ok := classifyUpcoming(b, b.DaysUntilDue(today))
			if !ok {
				continue
			}
			out.add(al)
			seen[b.ID] = true
		}
	}

	if e.observer != nil {
		e.observer.AlertCounts(out.Counts())
	}
	slog.Debug("Bills classified",
		"overdue", len(out.Overdue),
		"critical", len(out.Critical),
		"urgent", len(out.Urgent),
		"upcoming", len(out.Upcoming),
	)
	return out, nil
}

// Summary classifies and renders the result.
func (e *Engine) Summary(ctx context.Context) (string, error) {
	a, err := e.Classify(ctx)
	if err != nil {
		return "", err
	}
	return Render(a), nil
}

func classifyUpcoming(b models.Bill, days int) (Alert, bool) {
	al := Alert{Bill: b, DaysUntil: days}
	amount := FormatAmount(b.Amount)
	switch {
	case days == 0:
		al.Tier = TierCritical
		al.Message = fmt.Sprintf("DUE TODAY: %s (%s)", b.Name, amount)
	case days == 1:
		al.Tier = TierUrgent
		al.Message = fmt.Sprintf("Due tomorrow: %s (%s)", b.Name, amount)
	case days >= 2 && days <= maxUpcomingDays:
		al.Tier = TierUpcoming
		al.Message = fmt.Sprintf("Due in %d days: %s (%s)", days, b.Name, amount)
	default:
		return Alert{}, false
	}
	return al, true
}

// FormatAmount renders an amount as dollars with two decimals, e.g. $50.00.
// Negative amounts render as $-5.00.
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
