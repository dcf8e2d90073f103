package apperrors

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// kindToCode is the authoritative table from §6: "Status-code mapping table".
var kindToCode = map[Kind]codes.Code{
	KindMalformed:            codes.Unauthenticated,
	KindBadSignature:         codes.Unauthenticated,
	KindExpired:              codes.Unauthenticated,
	KindWrongIssuer:          codes.Unauthenticated,
	KindWrongAudience:        codes.Unauthenticated,
	KindMissingRequiredClaim: codes.Unauthenticated,
	KindUnknownSubject:       codes.Unauthenticated,
	KindAccountDisabled:      codes.Unauthenticated,
	KindPolicyDenied:         codes.PermissionDenied,
	KindInvalidInput:         codes.InvalidArgument,
	KindNotFound:             codes.NotFound,
	KindAlreadyExists:        codes.AlreadyExists,
	KindInvalidTransition:    codes.FailedPrecondition,
	KindVersionConflict:      codes.Aborted,
	KindRemoteUnavailable:    codes.Unavailable,
	KindCircuitOpen:          codes.Unavailable,
	KindBulkheadFull:         codes.Unavailable,
	KindRemoteDeadline:       codes.DeadlineExceeded,
	KindTokenIssuanceError:   codes.Unauthenticated,
	KindUnexpected:           codes.Internal,
}

// ToGRPCStatus is the single place that maps the internal error taxonomy to
// a wire gRPC status (§6, §7). CacheUnavailable never reaches here: per §7 it
// is recovered locally by falling through to the authoritative lookup and
// never surfaces as an RPC failure in its own right.
func ToGRPCStatus(err error) error {
	if err == nil {
		return nil
	}

	var appErr Error
	if !errors.As(err, &appErr) {
		return status.Error(codes.Internal, "internal error")
	}

	code, ok := kindToCode[appErr.Kind]
	if !ok {
		code = codes.Internal
	}

	return status.Error(code, appErr.Error())
}
