package channelfabric

import (
	"context"

	"github.com/coreflux/idorder/common/apperrors"
	"google.golang.org/grpc"
)

// bulkheadInterceptor is the outermost stage (§4.5: "Bulkhead"): admits at
// most peer.Bulkhead.MaxConcurrent concurrent calls, waiting up to
// peer.Bulkhead.MaxWaitTime for a slot before failing fast.
func (f *Fabric) bulkheadInterceptor(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	waitCtx, cancel := context.WithTimeout(ctx, f.peer.Bulkhead.MaxWaitTime)
	defer cancel()

	if err := f.sem.Acquire(waitCtx, 1); err != nil {
		return apperrors.ToGRPCStatus(apperrors.New(apperrors.KindBulkheadFull, "no capacity for "+f.peer.Name))
	}
	defer f.sem.Release(1)

	return invoker(ctx, method, req, reply, cc, opts...)
}
