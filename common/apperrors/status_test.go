package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToGRPCStatus(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		wantCode codes.Code
	}{
		{"malformed token", New(KindMalformed, "malformed token"), codes.Unauthenticated},
		{"expired token", New(KindExpired, "token expired"), codes.Unauthenticated},
		{"policy denial", New(KindPolicyDenied, "not allowed"), codes.PermissionDenied},
		{"invalid input", NewInvalidInput("bad email"), codes.InvalidArgument},
		{"not found", NewNotFound("User", "no such user"), codes.NotFound},
		{"already exists", NewAlreadyExists("User", "duplicate username"), codes.AlreadyExists},
		{"invalid transition", NewInvalidTransition("DELIVERED", "PENDING"), codes.FailedPrecondition},
		{"version conflict", NewVersionConflict("Order"), codes.Aborted},
		{"remote unavailable", New(KindRemoteUnavailable, "peer down"), codes.Unavailable},
		{"circuit open", New(KindCircuitOpen, "breaker open"), codes.Unavailable},
		{"bulkhead full", New(KindBulkheadFull, "no slots"), codes.Unavailable},
		{"remote deadline", New(KindRemoteDeadline, "timed out"), codes.DeadlineExceeded},
		{"unexpected", New(KindUnexpected, "boom"), codes.Internal},
		{"plain error", errors.New("unwrapped"), codes.Internal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToGRPCStatus(tc.err)

			st, ok := status.FromError(got)
			assert.True(t, ok)
			assert.Equal(t, tc.wantCode, st.Code())
		})
	}
}

func TestToGRPCStatus_Nil(t *testing.T) {
	assert.Nil(t, ToGRPCStatus(nil))
}

func TestError_Is(t *testing.T) {
	err := New(KindNotFound, "missing")
	assert.True(t, errors.Is(err, New(KindNotFound, "different message")))
	assert.False(t, errors.Is(err, New(KindAlreadyExists, "missing")))
}
