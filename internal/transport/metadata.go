// Package transport holds the wire-level pieces shared by every RPC surface:
// the gRPC metadata key constants (§6: "Metadata keys (wire-visible)") and
// the JSON codec that stands in for protobuf wire encoding (see
// SPEC_FULL.md §4).
package transport

// Metadata keys, wire-visible per §6.
const (
	MetadataAuthorization   = "authorization"
	MetadataCorrelationID   = "x-correlation-id"
	MetadataRequestID       = "x-request-id"
	BearerPrefix            = "Bearer "
	TrailerCorrelationIDKey = "x-correlation-id"
)
