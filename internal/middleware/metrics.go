package middleware

import (
	"context"
	"time"

	"connectrpc.com/connect"
)

// RPCObserver records finished RPCs.
type RPCObserver interface {
	ObserveRPC(procedure, code string, elapsed time.Duration)
}

// MetricsInterceptor returns a Connect interceptor that reports every RPC's
// procedure, result code and latency to obs.
func MetricsInterceptor(obs RPCObserver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			obs.ObserveRPC(req.Spec().Procedure, code, time.Since(start))
			return resp, err
		}
	}
}
