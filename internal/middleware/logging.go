package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// billTarget is implemented by requests that act on a single bill.
type billTarget interface {
	TargetBillID() string
}

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, protocol, result code, duration, the request ID and,
// for single-bill requests, the bill ID. Caller mistakes log at WARN and
// server failures at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"protocol", req.Peer().Protocol,
			}
			if id := GetRequestID(ctx); id != "" { // empty outside the HTTP server
				attrs = append(attrs, "request_id", id)
			}
			if t, ok := req.Any().(billTarget); ok && t.TargetBillID() != "" {
				attrs = append(attrs, "bill_id", t.TargetBillID())
			}

			resp, err := next(ctx, req)

			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
			if err == nil {
				slog.Info("RPC ok", append(attrs, "code", "ok")...)
				return resp, nil
			}

			code := connect.CodeOf(err)
			msg := err.Error()
			var connectErr *connect.Error
			if errors.As(err, &connectErr) {
				msg = connectErr.Message()
			}
			attrs = append(attrs, "code", code.String(), "error", msg)
			if callerFault(code) {
				slog.Warn("RPC rejected", attrs...)
			} else {
				slog.Error("RPC failed", attrs...)
			}
			return resp, err
		}
	}
}

func callerFault(code connect.Code) bool {
	switch code {
	case connect.CodeInvalidArgument, connect.CodeNotFound, connect.CodeFailedPrecondition,
		connect.CodeAlreadyExists, connect.CodeCanceled:
		return true
	}
	return false
}
