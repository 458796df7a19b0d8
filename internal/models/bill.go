package models

import (
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a bill.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue:
		return true
	}
	return false
}

// Unpaid reports whether a bill in status s still needs paying.
func (s Status) Unpaid() bool {
	return s == StatusPending || s == StatusOverdue
}

// rank orders statuses along the only allowed direction of travel.
func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusOverdue:
		return 1
	case StatusPaid:
		return 2
	}
	return -1
}

// CanTransition reports whether a bill may move from s to next.
// Staying in place is always allowed.
func (s Status) CanTransition(next Status) bool {
	if !s.IsValid() || !next.IsValid() {
		return false
	}
	return next.rank() >= s.rank()
}

// Bill is a tracked recurring bill.
//
// Amount is expected to be non-negative but is not enforced.
// LastPaidDate is set exactly when Status is StatusPaid.
type Bill struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	DueDate        Date            `json:"due_date"`
	Status         Status          `json:"status"`
	AutoPayEnabled bool            `json:"auto_pay_enabled"`
	Provider       string          `json:"provider"`
	AccountNumber  string          `json:"account_number,omitempty"`
	LastPaidDate   *Date           `json:"last_paid_date,omitempty"`
}

// Clone returns a copy of b that shares no pointers with it.
func (b Bill) Clone() Bill {
	if b.LastPaidDate != nil {
		d := *b.LastPaidDate
		b.LastPaidDate = &d
	}
	return b
}

// DaysUntilDue returns the days from today to the due date.
func (b Bill) DaysUntilDue(today Date) int {
	return today.DaysUntil(b.DueDate)
}
