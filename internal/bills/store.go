// Package bills owns the bill collection: it validates and applies every
// mutation, derives overdue status, and writes each change through to a
// storage backend before making it visible.
package bills

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/storage"
)

// Observer is notified after changes are persisted.
type Observer interface {
	// BillTransition is called once per bill whose status changed.
	BillTransition(from, to models.Status)
	// BillCounts is called with the number of bills per status after every
	// successful write and after loading.
	BillCounts(counts map[models.Status]int)
}

// Store is the single owner of bill state. All methods are safe for
// concurrent use; mutations are serialized and persisted before they are
// visible to readers.
type Store struct {
	mu       sync.Mutex
	bills    []models.Bill
	backend  storage.Store
	now      func() time.Time
	loc      *time.Location
	newID    func() string
	observer Observer
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the time zone "today" is computed in.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithIDGenerator sets how ids are assigned to new bills.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithObserver registers an observer for transitions and counts.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// Open loads the collection from backend and returns a ready Store.
func Open(ctx context.Context, backend storage.Store, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		now:     time.Now,
		loc:     time.Local,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bills: %w", err)
	}
	if err := checkLoaded(loaded); err != nil {
		return nil, fmt.Errorf("stored bills are inconsistent: %w", err)
	}
	s.bills = loaded
	s.reportCounts()

	slog.Debug("Bill store opened", "bills", len(loaded))
	return s, nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Today returns the current calendar date in the store's time zone.
func (s *Store) Today() models.Date {
	return models.DateOf(s.now().In(s.loc))
}

// Add stores a new pending bill and returns it with its assigned id.
func (s *Store) Add(ctx context.Context, bill models.Bill) (models.Bill, error) {
	bill = bill.Clone()
	bill.Name = strings.TrimSpace(bill.Name)
	bill.Status = models.StatusPending
	bill.LastPaidDate = nil
	if err := validateFields(bill); err != nil {
		return models.Bill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if bill.ID == "" {
		bill.ID = s.newID()
	}
	if s.indexOf(bill.ID) >= 0 {
		return models.Bill{}, &ValidationError{Field: "id", Reason: fmt.Sprintf("bill %s already exists", bill.ID)}
	}

	next := append(s.snapshot(), bill)
	if err := s.commit(ctx, "add", next); err != nil {
		return models.Bill{}, err
	}

	slog.Info("Bill added", "bill_id", bill.ID, "name", bill.Name, "due_date", bill.DueDate.String())
	return bill.Clone(), nil
}

// Get returns the bill with the given id.
func (s *Store) Get(id string) (models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Bill{}, &NotFoundError{ID: id}
	}
	return s.bills[i].Clone(), nil
}

// Update replaces the bill with the given id. The id cannot change and the
// status may only move forward. Moving to paid without a last paid date
// stamps today.
func (s *Store) Update(ctx context.Context, id string, bill models.Bill) (models.Bill, error) {
	bill = bill.Clone()
	bill.Name = strings.TrimSpace(bill.Name)
	if bill.ID != "" && bill.ID != id {
		return models.Bill{}, &ValidationError{Field: "id", Reason: "id cannot be changed"}
	}
	bill.ID = id
	if err := validateFields(bill); err != nil {
		return models.Bill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Bill{}, &NotFoundError{ID: id}
	}
	prev := s.bills[i]
	if !prev.Status.CanTransition(bill.Status) {
		return models.Bill{}, &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("cannot move from %s to %s", prev.Status, bill.Status),
		}
	}
	if today := s.Today(); bill.Status == models.StatusOverdue && !bill.DueDate.Before(today) {
		return models.Bill{}, &ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("an overdue bill must be due before %s", today),
		}
	}
	switch {
	case bill.Status == models.StatusPaid && bill.LastPaidDate == nil:
		today := s.Today()
		bill.LastPaidDate = &today
	case bill.Status != models.StatusPaid && bill.LastPaidDate != nil:
		return models.Bill{}, &ValidationError{Field: "last_paid_date", Reason: "only paid bills have a last paid date"}
	}

	next := s.snapshot()
	next[i] = bill
	if err := s.commit(ctx, "update", next); err != nil {
		return models.Bill{}, err
	}
	s.reportTransition(prev.Status, bill.Status)

	slog.Info("Bill updated", "bill_id", id, "status", bill.Status)
	return bill.Clone(), nil
}

// Delete removes the bill with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return &NotFoundError{ID: id}
	}

	next := slices.Delete(s.snapshot(), i, i+1)
	if err := s.commit(ctx, "delete", next); err != nil {
		return err
	}

	slog.Info("Bill deleted", "bill_id", id)
	return nil
}

// List returns every bill. Callers must not rely on the order.
func (s *Store) List() []models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// ListUpcoming returns pending bills due between today and today+daysAhead
// inclusive, earliest first. It never mutates.
func (s *Store) ListUpcoming(ctx context.Context, daysAhead int) ([]models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.Today()
	upcoming := []models.Bill{}
	for _, b := range s.bills {
		if b.Status != models.StatusPending {
			continue
		}
		days := b.DaysUntilDue(today)
		if days >= 0 && days <= daysAhead {
			upcoming = append(upcoming, b.Clone())
		}
	}
	sortByDue(upcoming)
	return upcoming, nil
}

// SweepOverdue moves every pending bill whose due date has passed to
// overdue and persists the result once. It returns the number of bills
// that changed; zero means nothing was written.
func (s *Store) SweepOverdue(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(ctx)
}

// Overdue returns bills currently marked overdue whose due date is before
// today, earliest first. It never mutates.
func (s *Store) Overdue() []models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overdueLocked()
}

// ListOverdue sweeps and then returns every overdue bill. Repeated calls
// return the same set and only the first one writes.
func (s *Store) ListOverdue(ctx context.Context) ([]models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sweepLocked(ctx); err != nil {
		return nil, err
	}
	return s.overdueLocked(), nil
}

// Pay marks the bill paid and stamps today as its last paid date. Paying a
// bill that is already paid returns it unchanged.
func (s *Store) Pay(ctx context.Context, id string) (models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Bill{}, &NotFoundError{ID: id}
	}
	return s.payLocked(ctx, i)
}

// PayByName resolves name with Resolve and pays the single match.
func (s *Store) PayByName(ctx context.Context, name string) (models.Bill, error) {
	if strings.TrimSpace(name) == "" {
		return models.Bill{}, &ValidationError{Field: "name", Reason: "name is required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	matches := Resolve(s.bills, name)
	switch len(matches) {
	case 0:
		return models.Bill{}, &NotFoundError{Name: name, Suggestions: Suggest(s.bills, name, 3)}
	case 1:
		return s.payLocked(ctx, s.indexOf(matches[0].ID))
	default:
		candidates := make([]models.Bill, len(matches))
		for i, b := range matches {
			candidates[i] = b.Clone()
		}
		return models.Bill{}, &AmbiguousMatchError{Query: name, Candidates: candidates}
	}
}

func (s *Store) payLocked(ctx context.Context, i int) (models.Bill, error) {
	prev := s.bills[i]
	if prev.Status == models.StatusPaid {
		return prev.Clone(), nil
	}

	today := s.Today()
	paid := prev.Clone()
	paid.Status = models.StatusPaid
	paid.LastPaidDate = &today

	next := s.snapshot()
	next[i] = paid
	if err := s.commit(ctx, "payment", next); err != nil {
		return models.Bill{}, err
	}
	s.reportTransition(prev.Status, models.StatusPaid)

	slog.Info("Bill paid", "bill_id", paid.ID, "name", paid.Name, "paid_on", today.String())
	return paid.Clone(), nil
}

func (s *Store) sweepLocked(ctx context.Context) (int, error) {
	today := s.Today()
	var next []models.Bill
	changed := 0
	for i, b := range s.bills {
		if b.Status != models.StatusPending || !b.DueDate.Before(today) {
			continue
		}
		if next == nil {
			next = s.snapshot()
		}
		next[i].Status = models.StatusOverdue
		changed++
	}
	if changed == 0 {
		return 0, nil
	}

	if err := s.commit(ctx, "overdue sweep", next); err != nil {
		return 0, err
	}
	for range changed {
		s.reportTransition(models.StatusPending, models.StatusOverdue)
	}

	slog.Info("Bills marked overdue", "count", changed, "today", today.String())
	return changed, nil
}

func (s *Store) overdueLocked() []models.Bill {
	today := s.Today()
	overdue := []models.Bill{}
	for _, b := range s.bills {
		if b.Status == models.StatusOverdue && b.DueDate.Before(today) {
			overdue = append(overdue, b.Clone())
		}
	}
	sortByDue(overdue)
	return overdue
}

// commit persists next and makes it current only if the write succeeds.
func (s *Store) commit(ctx context.Context, op string, next []models.Bill) error {
	if err := s.backend.Save(ctx, next); err != nil {
		slog.Error("Failed to persist bills", "op", op, "error", err)
		return &PersistenceError{Op: op, Err: err}
	}
	s.bills = next
	s.reportCounts()
	return nil
}

func (s *Store) snapshot() []models.Bill {
	out := make([]models.Bill, len(s.bills))
	for i, b := range s.bills {
		out[i] = b.Clone()
	}
	return out
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.bills, func(b models.Bill) bool { return b.ID == id })
}

func (s *Store) reportTransition(from, to models.Status) {
	if s.observer != nil && from != to {
		s.observer.BillTransition(from, to)
	}
}

func (s *Store) reportCounts() {
	if s.observer == nil {
		return
	}
	counts := map[models.Status]int{
		models.StatusPending: 0,
		models.StatusOverdue: 0,
		models.StatusPaid:    0,
	}
	for _, b := range s.bills {
		counts[b.Status]++
	}
	s.observer.BillCounts(counts)
}

func validateFields(b models.Bill) error {
	if b.Name == "" {
		return &ValidationError{Field: "name", Reason: "name is required"}
	}
	if b.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Reason: "due date is required"}
	}
	if !b.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", b.Status)}
	}
	return nil
}

// checkLoaded rejects collections with duplicate or empty ids, or with a
// last paid date that disagrees with the status.
func checkLoaded(all []models.Bill) error {
	seen := make(map[string]bool, len(all))
	for _, b := range all {
		if b.ID == "" {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("bill %q has no id", b.Name)}
		}
		if seen[b.ID] {
			return &ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate id %s", b.ID)}
		}
		seen[b.ID] = true
		if (b.Status == models.StatusPaid) != (b.LastPaidDate != nil) {
			return &ValidationError{
				Field:  "last_paid_date",
				Reason: fmt.Sprintf("bill %s is %s but last paid date is %v", b.ID, b.Status, b.LastPaidDate),
			}
		}
	}
	return nil
}

func sortByDue(bills []models.Bill) {
	slices.SortStableFunc(bills, func(a, b models.Bill) int {
		if c := a.DueDate.Compare(b.DueDate); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
}
