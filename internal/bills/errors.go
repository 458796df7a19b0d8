package bills

import (
	"fmt"
	"strings"

	"github.com/mmynk/billminder/internal/models"
)

// ValidationError reports a rejected field on input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a lookup that matched no bill. Exactly one of ID
// and Name is set. Suggestions holds close bill names for name lookups.
type NotFoundError struct {
	ID          string
	Name        string
	Suggestions []string
}

func (e *NotFoundError) Error() string {
	if e.Name != "" {
		msg := fmt.Sprintf("no unpaid bill matches %q", e.Name)
		if len(e.Suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
		}
		return msg
	}
	return fmt.Sprintf("bill not found: %s", e.ID)
}

// AmbiguousMatchError reports a name that matched several unpaid bills.
type AmbiguousMatchError struct {
	Query      string
	Candidates []models.Bill
}

func (e *AmbiguousMatchError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, b := range e.Candidates {
		names[i] = b.Name
	}
	return fmt.Sprintf("%q matches %d bills: %s", e.Query, len(e.Candidates), strings.Join(names, ", "))
}

// PersistenceError reports a failed write. The in-memory state is left as
// it was before the operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
