package channelfabric

import (
	"context"
	"testing"
	"time"

	"github.com/coreflux/idorder/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func testPeer() config.Peer {
	return config.Peer{
		Name:           "identityservice",
		Address:        "localhost:9090",
		Deadline:       10 * time.Second,
		MaxMessageSize: 16 << 20,
		CircuitBreaker: config.DefaultCircuitBreaker(),
		Retry:          config.DefaultRetry(),
		Bulkhead:       config.DefaultBulkhead(),
	}
}

func noopInvoker(err error) grpc.UnaryInvoker {
	return func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
		return err
	}
}

func TestFabric_Retry_RetriesIdempotentOnUnavailable(t *testing.T) {
	f := New(testPeer(), func(string) bool { return true })
	f.sleep = func(time.Duration) {}
	f.jitter = func(time.Duration) time.Duration { return 0 }

	attempts := 0
	invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
		attempts++
		if attempts < 3 {
			return status.Error(codes.Unavailable, "down")
		}
		return nil
	}

	err := f.retryInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestFabric_Retry_DoesNotRetryNonIdempotent(t *testing.T) {
	f := New(testPeer(), nil)

	attempts := 0
	invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
		attempts++
		return status.Error(codes.Unavailable, "down")
	}

	err := f.retryInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestFabric_Retry_DoesNotRetryNonRetryableCode(t *testing.T) {
	f := New(testPeer(), func(string) bool { return true })
	f.sleep = func(time.Duration) {}

	attempts := 0
	invoker := func(context.Context, string, any, any, *grpc.ClientConn, ...grpc.CallOption) error {
		attempts++
		return status.Error(codes.InvalidArgument, "bad input")
	}

	err := f.retryInterceptor(context.Background(), "/svc/Method", nil, nil, nil, invoker)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestFabric_Bulkhead_RejectsWhenExhausted(t *testing.T) {
	peer := testPeer()
	peer.Bulkhead.MaxConcurrent = 1
	peer.Bulkhead.MaxWaitTime = 10 * time.Millisecond
	f := New(peer, nil)

	release := make(chan struct{})
	blocking := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		<-release
		return nil
	}

	go func() {
		_ = f.bulkheadInterceptor(context.Background(), "/svc/M", nil, nil, nil, blocking)
	}()

	time.Sleep(5 * time.Millisecond)

	err := f.bulkheadInterceptor(context.Background(), "/svc/M", nil, nil, nil, noopInvoker(nil))
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))

	close(release)
}

func TestFabric_Breaker_OpensAfterFailureThreshold(t *testing.T) {
	peer := testPeer()
	peer.CircuitBreaker.MinCallsToEvaluate = 2
	peer.CircuitBreaker.WindowSize = 2
	peer.CircuitBreaker.FailureRateThresh = 0.5
	f := New(peer, nil)

	for i := 0; i < 2; i++ {
		_ = f.breakerInterceptor(context.Background(), "/svc/M", nil, nil, nil, noopInvoker(status.Error(codes.Unavailable, "down")))
	}

	err := f.breakerInterceptor(context.Background(), "/svc/M", nil, nil, nil, noopInvoker(nil))
	require.Error(t, err)
	assert.Equal(t, codes.Unavailable, status.Code(err))
}

func TestFabric_Deadline_AppliesDefaultWhenAbsent(t *testing.T) {
	peer := testPeer()
	peer.Deadline = 50 * time.Millisecond
	f := New(peer, nil)

	var sawDeadline bool
	invoker := func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		_, sawDeadline = ctx.Deadline()
		return nil
	}

	err := f.deadlineInterceptor(context.Background(), "/svc/M", nil, nil, nil, invoker)
	require.NoError(t, err)
	assert.True(t, sawDeadline)
}
