// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/billminder/internal/models"
)

// Store persists the whole bill collection as one snapshot.
// The bill store loads it once at startup and saves the full collection
// after every mutation, so backends never see partial updates.
type Store interface {
	// Load returns every persisted bill. A backend with no data yet
	// returns an empty slice and no error.
	Load(ctx context.Context) ([]models.Bill, error)

	// Save replaces the persisted collection with bills.
	// On error the previously persisted collection must still be readable.
	Save(ctx context.Context, bills []models.Bill) error

	// Close releases any resources held by the store.
	Close() error
}
