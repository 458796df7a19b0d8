package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/billminder/internal/bills"
)

// connectError maps bill store errors onto Connect codes.
func connectError(err error) *connect.Error {
	var (
		validation *bills.ValidationError
		notFound   *bills.NotFoundError
		ambiguous  *bills.AmbiguousMatchError
		persist    *bills.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.As(err, &notFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &ambiguous):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &persist):
		return connect.NewError(connect.CodeInternal, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
