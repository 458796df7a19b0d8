// Package memory provides a volatile storage.Store for tests and throwaway runs.
package memory

import (
	"context"
	"sync"

	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps the last saved snapshot in memory.
type Store struct {
	mu      sync.Mutex
	bills   []models.Bill
	saves   int
	saveErr error
}

// New returns a store preloaded with bills.
func New(bills ...models.Bill) *Store {
	return &Store{bills: cloneAll(bills)}
}

func (s *Store) Load(ctx context.Context) ([]models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAll(s.bills), nil
}

func (s *Store) Save(ctx context.Context, bills []models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.bills = cloneAll(bills)
	s.saves++
	return nil
}

// FailSaves makes every following Save return err without storing anything.
// A nil err restores normal behavior.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves returns how many successful saves the store has seen.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Store) Close() error {
	return nil
}

func cloneAll(bills []models.Bill) []models.Bill {
	out := make([]models.Bill, len(bills))
	for i, b := range bills {
		out[i] = b.Clone()
	}
	return out
}
