// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/billminder/internal/models"
	"github.com/mmynk/billminder/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns every bill in saved order.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.Bill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, amount, due_date, status, auto_pay_enabled, provider, account_number, last_paid_date
		FROM bills ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	bills := []models.Bill{}
	for rows.Next() {
		var (
			b        models.Bill
			amount   string
			dueDate  string
			status   string
			autoPay  bool
			lastPaid sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &amount, &dueDate, &status, &autoPay, &b.Provider, &b.AccountNumber, &lastPaid); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}

		b.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("bill %s: bad amount %q: %w", b.ID, amount, err)
		}
		b.DueDate, err = models.ParseDate(dueDate)
		if err != nil {
			return nil, fmt.Errorf("bill %s: %w", b.ID, err)
		}
		b.Status = models.Status(status)
		b.AutoPayEnabled = autoPay
		if lastPaid.Valid && lastPaid.String != "" {
			d, err := models.ParseDate(lastPaid.String)
			if err != nil {
				return nil, fmt.Errorf("bill %s: %w", b.ID, err)
			}
			b.LastPaidDate = &d
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

// Save rewrites the bills table inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, bills []models.Bill) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bills"); err != nil {
		return fmt.Errorf("failed to clear bills: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bills (id, position, name, amount, due_date, status, auto_pay_enabled, provider, account_number, last_paid_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range bills {
		var lastPaid sql.NullString
		if b.LastPaidDate != nil {
			lastPaid = sql.NullString{String: b.LastPaidDate.String(), Valid: true}
		}
		_, err := stmt.ExecContext(ctx,
			b.ID, i, b.Name, b.Amount.String(), b.DueDate.String(), string(b.Status),
			b.AutoPayEnabled, b.Provider, b.AccountNumber, lastPaid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bill %s: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
