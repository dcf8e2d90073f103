package channelfabric

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// deadlineInterceptor applies the peer's default per-call deadline unless
// the caller already attached a deadline of its own (§4.5: "Default deadline per
// call: 10 s (overridable per call)"), then additionally enforces the
// peer's soft time limit as a distinct, separately-configured cutoff
// (§4.5: "Time limiter. Separate from per-call deadline..."). Both bound
// the same invocation; whichever fires first yields DeadlineExceeded.
func (f *Fabric) deadlineInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	if f.peer.Deadline > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.peer.Deadline)
			defer cancel()
		}
	}

	if f.peer.SoftTimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.peer.SoftTimeLimit)
		defer cancel()
	}

	err := invoker(ctx, method, req, reply, cc, opts...)
	if err != nil && status.Code(err) == codes.Unknown && ctx.Err() != nil {
		return status.Error(codes.DeadlineExceeded, "soft time limit exceeded")
	}

	return err
}
