package channelfabric

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// retryInterceptor implements §4.5's transport-level retry policy: retry
// only Unavailable/DeadlineExceeded, up to MaxAttempts total, with backoff
// doubling from InitialBackoff up to MaxBackoff plus uniform jitter. Methods
// the caller hasn't marked idempotent are never retried.
func (f *Fabric) retryInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	if !f.idempotent(method) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	var lastErr error

	for attempt := 0; attempt < f.peer.Retry.MaxAttempts; attempt++ {
		if attempt > 0 {
			f.sleep(f.backoffFor(attempt))
		}

		lastErr = invoker(ctx, method, req, reply, cc, opts...)
		if !isRetryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// backoffFor computes the delay before the given retry attempt (1-indexed):
// InitialBackoff * multiplier^(attempt-1), capped at MaxBackoff, plus
// uniform jitter in [0, InitialBackoff).
func (f *Fabric) backoffFor(attempt int) time.Duration {
	backoff := f.peer.Retry.InitialBackoff

	for i := 1; i < attempt; i++ {
		backoff = time.Duration(float64(backoff) * f.peer.Retry.BackoffMultiple)
		if backoff > f.peer.Retry.MaxBackoff {
			backoff = f.peer.Retry.MaxBackoff
			break
		}
	}

	return backoff + f.jitter(f.peer.Retry.InitialBackoff)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}
