// Package jsonfile stores bills as an indented JSON array in a single file.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/storage"
)

// DefaultFileName is the database file used when only a directory is configured.
const DefaultFileName = "bills_db.json"

var _ storage.Store = (*FileStore)(nil)

// record is a bill as laid out on disk. The amount is a bare JSON number;
// quoted amounts are still accepted on read.
type record struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Amount         json.Number   `json:"amount"`
	DueDate        models.Date   `json:"due_date"`
	Status         models.Status `json:"status"`
	AutoPayEnabled bool          `json:"auto_pay_enabled"`
	Provider       string        `json:"provider"`
	AccountNumber  string        `json:"account_number,omitempty"`
	LastPaidDate   *models.Date  `json:"last_paid_date,omitempty"`
}

func toRecords(bills []models.Bill) []record {
	out := make([]record, len(bills))
	for i, b := range bills {
		out[i] = record{
			ID:             b.ID,
			Name:           b.Name,
			Amount:         json.Number(b.Amount.String()),
			DueDate:        b.DueDate,
			Status:         b.Status,
			AutoPayEnabled: b.AutoPayEnabled,
			Provider:       b.Provider,
			AccountNumber:  b.AccountNumber,
			LastPaidDate:   b.LastPaidDate,
		}
	}
	return out
}

func fromRecords(records []record) ([]models.Bill, error) {
	out := make([]models.Bill, len(records))
	for i, r := range records {
		amount := decimal.Zero
		if r.Amount != "" {
			var err error
			amount, err = decimal.NewFromString(string(r.Amount))
			if err != nil {
				return nil, fmt.Errorf("bill %s: invalid amount %q: %w", r.ID, r.Amount, err)
			}
		}
		out[i] = models.Bill{
			ID:             r.ID,
			Name:           r.Name,
			Amount:         amount,
			DueDate:        r.DueDate,
			Status:         r.Status,
			AutoPayEnabled: r.AutoPayEnabled,
			Provider:       r.Provider,
			AccountNumber:  r.AccountNumber,
			LastPaidDate:   r.LastPaidDate,
		}
	}
	return out, nil
}

// FileStore implements storage.Store on top of a JSON file.
type FileStore struct {
	path string
}

// New returns a FileStore for path, creating the parent directory.
// The file itself is created on the first Save.
func New(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the bill array. A missing or empty file is an empty collection.
func (s *FileStore) Load(ctx context.Context) ([]models.Bill, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Bill{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return []models.Bill{}, nil
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	bills, err := fromRecords(records)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return bills, nil
}

// Save writes bills to a temp file in the same directory and renames it
// over the database, so a failed write never truncates existing data.
func (s *FileStore) Save(ctx context.Context, bills []models.Bill) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if bills == nil {
		bills = []models.Bill{}
	}

	data, err := json.MarshalIndent(toRecords(bills), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode bills: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".bills-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.path, err)
	}
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *FileStore) Close() error {
	return nil
}
