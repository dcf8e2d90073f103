package channelfabric

import (
	"context"
	"errors"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/sony/gobreaker"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// breakerInterceptor is the circuit-breaker stage (§4.5: "Circuit breaker
// (application level)"). A call made while the breaker is open fails fast
// with KindCircuitOpen instead of reaching the wire.
func (f *Fabric) breakerInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	_, err := f.breaker.Execute(func() (any, error) {
		callErr := invoker(ctx, method, req, reply, cc, opts...)
		f.recordOutcome(!isBreakerFailure(callErr))

		return nil, callErr
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return apperrors.ToGRPCStatus(apperrors.New(apperrors.KindCircuitOpen, "circuit open for "+f.peer.Name))
	}

	return err
}

// isBreakerFailure classifies an RPC outcome for gobreaker's internal
// counters: only transport-level failures count against the breaker, so a
// well-formed business error (NotFound, InvalidArgument, ...) never trips it.
func isBreakerFailure(err error) bool {
	if err == nil {
		return false
	}

	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal:
		return true
	default:
		return false
	}
}
