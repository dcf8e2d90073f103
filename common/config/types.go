package config

import "time"

// SecurityMode selects how the server or client interceptor chain behaves.
type SecurityMode string

// Server modes (§4.3) and client modes (§4.4).
const (
	ModeNone            SecurityMode = "NONE"
	ModeBasicValidation SecurityMode = "BASIC_VALIDATION"
	ModeFull            SecurityMode = "FULL"
	ModePropagate       SecurityMode = "PROPAGATE"
	ModeValidate        SecurityMode = "VALIDATE"
)

// JWT carries the Token Codec (C1) configuration surface.
type JWT struct {
	Secret       []byte
	Issuer       string
	Audience     string
	ExpirationMs int64
	Leeway       time.Duration
}

// ExpirationDuration returns ExpirationMs as a time.Duration.
func (j JWT) ExpirationDuration() time.Duration {
	return time.Duration(j.ExpirationMs) * time.Millisecond
}

// Security carries the server/client interceptor chain mode selection (§4.3, §4.4).
type Security struct {
	ServerMode      SecurityMode
	ClientMode      SecurityMode
	ExcludedMethods []string
}

// CircuitBreaker carries the per-peer breaker configuration (§4.5).
type CircuitBreaker struct {
	WindowSize          uint32
	MinCallsToEvaluate  uint32
	FailureRateThresh   float64
	OpenStateTimeout    time.Duration
	HalfOpenMaxCalls    uint32
}

// Retry carries the per-peer transport retry configuration (§4.5).
type Retry struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	BackoffMultiple float64
	MaxBackoff      time.Duration
}

// Bulkhead carries the per-peer admission-control configuration (§4.5).
type Bulkhead struct {
	MaxConcurrent int64
	MaxWaitTime   time.Duration
}

// Peer bundles everything the Channel Fabric (C5) needs to dial and guard one
// downstream service.
type Peer struct {
	Name           string
	Address        string
	TLS            bool
	Deadline       time.Duration
	SoftTimeLimit  time.Duration
	MaxMessageSize int
	CircuitBreaker CircuitBreaker
	Retry          Retry
	Bulkhead       Bulkhead
}

// ValidationCache carries the Validation Cache (C6) TTL asymmetry (§4.6).
type ValidationCache struct {
	TTLPostCreate time.Duration
	TTLPostLookup time.Duration
}

// DefaultCircuitBreaker returns the §4.5 defaults: 10-call window, 5-call
// minimum, 50% failure threshold, 10s open state, 5 half-open trial calls.
func DefaultCircuitBreaker() CircuitBreaker {
	return CircuitBreaker{
		WindowSize:         10,
		MinCallsToEvaluate: 5,
		FailureRateThresh:  0.5,
		OpenStateTimeout:   10 * time.Second,
		HalfOpenMaxCalls:   5,
	}
}

// DefaultRetry returns the §4.5 defaults: 3 attempts, 500ms initial backoff,
// x2 multiplier, 2s cap.
func DefaultRetry() Retry {
	return Retry{
		MaxAttempts:     3,
		InitialBackoff:  500 * time.Millisecond,
		BackoffMultiple: 2,
		MaxBackoff:      2 * time.Second,
	}
}

// DefaultBulkhead returns the §4.5 defaults: 10 concurrent calls, 1s admission wait.
func DefaultBulkhead() Bulkhead {
	return Bulkhead{
		MaxConcurrent: 10,
		MaxWaitTime:   1 * time.Second,
	}
}

// DefaultValidationCache returns the §4.6 TTL defaults: 24h post-create, 30m post-lookup.
func DefaultValidationCache() ValidationCache {
	return ValidationCache{
		TTLPostCreate: 24 * time.Hour,
		TTLPostLookup: 30 * time.Minute,
	}
}
