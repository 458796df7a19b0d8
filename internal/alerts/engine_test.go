package alerts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billminder/internal/bills"
	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/storage/memory"
)

var testNow = time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

func day(offset int) models.Date {
	return models.DateOf(testNow).AddDays(offset)
}

func bill(id, name, amount string, due models.Date) models.Bill {
	return models.Bill{
		ID:      id,
		Name:    name,
		Amount:  decimal.RequireFromString(amount),
		DueDate: due,
		Status:  models.StatusPending,
	}
}

func newEngine(t *testing.T, opts []Option, seed ...models.Bill) (*Engine, *bills.Store) {
	t.Helper()
	store, err := bills.Open(context.Background(), memory.New(seed...),
		bills.WithClock(func() time.Time { return testNow }),
		bills.WithLocation(time.UTC),
	)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return NewEngine(store, opts...), store
}

func TestClassify(t *testing.T) {
	engine, _ := newEngine(t, nil,
		bill("today", "Electric", "50.00", day(0)),
		bill("tomorrow", "Water", "30.5", day(1)),
		bill("three", "Internet", "59.99", day(3)),
		bill("week", "Insurance", "200", day(7)),
		bill("far", "Rent", "1500", day(8)),
		bill("late", "Phone", "45", day(-4)),
	)

	got, err := engine.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	t.Run("due today is critical", func(t *testing.T) {
		if len(got.Critical) != 1 {
			t.Fatalf("expected 1 critical alert, got %d", len(got.Critical))
		}
		if msg := got.Critical[0].Message; msg != "DUE TODAY: Electric ($50.00)" {
			t.Errorf("unexpected message %q", msg)
		}
	})

	t.Run("due tomorrow is urgent", func(t *testing.T) {
		if len(got.Urgent) != 1 || got.Urgent[0].Message != "Due tomorrow: Water ($30.50)" {
			t.Errorf("unexpected urgent alerts: %+v", got.Urgent)
		}
	})

	t.Run("two to seven days is upcoming", func(t *testing.T) {
		if len(got.Upcoming) != 2 {
			t.Fatalf("expected 2 upcoming alerts, got %d", len(got.Upcoming))
		}
		if got.Upcoming[0].Message != "Due in 3 days: Internet ($59.99)" || got.Upcoming[0].DaysUntil != 3 {
			t.Errorf("unexpected alert: %+v", got.Upcoming[0])
		}
		if got.Upcoming[1].Message != "Due in 7 days: Insurance ($200.00)" {
			t.Errorf("unexpected alert: %+v", got.Upcoming[1])
		}
	})

	t.Run("overdue carries days overdue", func(t *testing.T) {
		if len(got.Overdue) != 1 {
			t.Fatalf("expected 1 overdue alert, got %d", len(got.Overdue))
		}
		al := got.Overdue[0]
		if al.DaysOverdue != 4 || al.Message != "OVERDUE: Phone ($45.00) was due 4 days ago!" {
			t.Errorf("unexpected alert: %+v", al)
		}
	})

	t.Run("eight days out is in no tier", func(t *testing.T) {
		for _, tier := range Tiers {
			for _, al := range got.Tier(tier) {
				if al.Bill.ID == "far" {
					t.Errorf("bill due in 8 days landed in %s", tier)
				}
			}
		}
	})
}

func TestClassifyDeduplicatesAcrossWindows(t *testing.T) {
	// Due in 2 days falls inside both the 7 and 3 day windows.
	engine, _ := newEngine(t, nil, bill("b", "Gas", "20", day(2)), bill("c", "Cable", "80", day(1)))

	got, err := engine.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.Len() != 2 {
		t.Errorf("expected 2 alerts, got %d: %+v", got.Len(), got)
	}
	if len(got.Upcoming) != 1 || len(got.Urgent) != 1 {
		t.Errorf("unexpected tiers: %+v", got.Counts())
	}
}

func TestClassifyCustomWindows(t *testing.T) {
	engine, _ := newEngine(t, []Option{WithWindows([]int{14})}, bill("b", "Tax", "10", day(10)), bill("c", "Gym", "25", day(5)))

	got, err := engine.Classify(context.Background())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if got.Len() != 1 || got.Upcoming[0].Bill.ID != "c" {
		t.Errorf("expected only the bill within 7 days, got %+v", got)
	}
}

func TestClassifyPersistsOverdueTransition(t *testing.T) {
	engine, store := newEngine(t, nil, bill("late", "Phone", "45", day(-1)))
	if _, err := engine.Classify(context.Background()); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	b, err := store.Get("late")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if b.Status != models.StatusOverdue {
		t.Errorf("expected overdue, got %s", b.Status)
	}
}

type countingObserver struct {
	counts map[Tier]int
}

func (o *countingObserver) AlertCounts(c map[Tier]int) { o.counts = c }

func TestClassifyNotifiesObserver(t *testing.T) {
	obs := &countingObserver{}
	engine, _ := newEngine(t, []Option{WithObserver(obs)}, bill("a", "A", "1", day(0)), bill("b", "B", "1", day(0)))
	if _, err := engine.Classify(context.Background()); err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if obs.counts[TierCritical] != 2 || obs.counts[TierOverdue] != 0 {
		t.Errorf("unexpected counts: %v", obs.counts)
	}
}

type failingSource struct{}

func (failingSource) Today() models.Date { return day(0) }
func (failingSource) ListOverdue(context.Context) ([]models.Bill, error) {
	return nil, errors.New("disk full")
}
func (failingSource) ListUpcoming(context.Context, int) ([]models.Bill, error) {
	return nil, nil
}

func TestClassifyPropagatesSourceErrors(t *testing.T) {
	_, err := NewEngine(failingSource{}).Classify(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected wrapped source error, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		engine, _ := newEngine(t, nil)
		got, err := engine.Summary(context.Background())
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if got != NoAlertsMessage {
			t.Errorf("unexpected summary %q", got)
		}
	})

	t.Run("blocks in urgency order", func(t *testing.T) {
		engine, _ := newEngine(t, nil,
			bill("u", "Internet", "59.99", day(4)),
			bill("t", "Electric", "50", day(0)),
			bill("o", "Phone", "45", day(-2)),
		)
		got, err := engine.Summary(context.Background())
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		want := "🔴 OVERDUE BILLS:\n" +
			"  OVERDUE: Phone ($45.00) was due 2 days ago!\n" +
			"\n" +
			"⚠️ DUE TODAY:\n" +
			"  DUE TODAY: Electric ($50.00)\n" +
			"\n" +
			"📅 UPCOMING (Next 7 days):\n" +
			"  Due in 4 days: Internet ($59.99)\n" +
			"\n"
		if got != want {
			t.Errorf("unexpected summary:\n%s\nwant:\n%s", got, want)
		}
	})
}
