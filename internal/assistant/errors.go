package assistant

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"
)

// ToolError is a failed tool call. Its message is written for the reader of
// the conversation, not for a program.
type ToolError struct {
	Text string
	Err  error
}

func (e *ToolError) Error() string { return e.Text }

func (e *ToolError) Unwrap() error { return e.Err }

// explain turns a service error into a sentence saying what went wrong.
func explain(action string, err error) error {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return &ToolError{Text: fmt.Sprintf("Could not %s: %v.", action, err), Err: err}
	}

	msg := connectErr.Message()
	var text string
	switch connectErr.Code() {
	case connect.CodeNotFound:
		text = fmt.Sprintf("Could not %s because no such bill exists: %s.", action, msg)
	case connect.CodeInvalidArgument:
		text = fmt.Sprintf("Could not %s because the request was invalid: %s.", action, msg)
	case connect.CodeFailedPrecondition:
		text = fmt.Sprintf("Could not %s: %s. Please be more specific.", action, msg)
	case connect.CodeInternal:
		text = fmt.Sprintf("Could not %s because the bill database could not be updated, so nothing was changed: %s.", action, msg)
	default:
		text = fmt.Sprintf("Could not %s: %s.", action, msg)
	}
	return &ToolError{Text: text, Err: err}
}
