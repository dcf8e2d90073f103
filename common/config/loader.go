package config

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LoadJWT reads the Token Codec configuration surface (§6: jwt.secret,
// jwt.issuer, jwt.audience, jwt.expirationMs).
func LoadJWT() (JWT, error) {
	secretB64 := GetenvOrDefault("JWT_SECRET", "")
	if secretB64 == "" {
		return JWT{}, fmt.Errorf("JWT_SECRET is required")
	}

	secret, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil {
		return JWT{}, fmt.Errorf("JWT_SECRET must be base64-encoded: %w", err)
	}

	if len(secret)*8 < 256 {
		return JWT{}, fmt.Errorf("JWT_SECRET must decode to at least 256 bits")
	}

	return JWT{
		Secret:       secret,
		Issuer:       GetenvOrDefault("JWT_ISSUER", "idorder"),
		Audience:     GetenvOrDefault("JWT_AUDIENCE", "idorder-clients"),
		ExpirationMs: GetenvIntOrDefault("JWT_EXPIRATION_MS", 86_400_000),
		Leeway:       GetenvDurationMsOrDefault("JWT_LEEWAY_MS", 0),
	}, nil
}

// LoadSecurity reads the interceptor-chain mode configuration surface (§6:
// security.grpc.serverMode, security.grpc.clientMode, security.grpc.excludedMethods).
func LoadSecurity() Security {
	return Security{
		ServerMode:      SecurityMode(strings.ToUpper(GetenvOrDefault("SECURITY_GRPC_SERVER_MODE", string(ModeFull)))),
		ClientMode:      SecurityMode(strings.ToUpper(GetenvOrDefault("SECURITY_GRPC_CLIENT_MODE", string(ModePropagate)))),
		ExcludedMethods: GetenvStringSlice("SECURITY_GRPC_EXCLUDED_METHODS"),
	}
}

// LoadValidationCache reads the Validation Cache TTL surface (§6:
// cache.validation.ttl.postCreate, cache.validation.ttl.postLookup).
func LoadValidationCache() ValidationCache {
	defaults := DefaultValidationCache()

	return ValidationCache{
		TTLPostCreate: GetenvDurationMsOrDefault("CACHE_VALIDATION_TTL_POST_CREATE_MS", defaults.TTLPostCreate),
		TTLPostLookup: GetenvDurationMsOrDefault("CACHE_VALIDATION_TTL_POST_LOOKUP_MS", defaults.TTLPostLookup),
	}
}

// LoadPeer reads the Channel Fabric configuration surface for one named peer
// (§6: channel.<peer>.address/.tls/.deadline, circuitBreaker.<peer>.*,
// retry.<peer>.*, bulkhead.<peer>.*), environment variables prefixed with the
// upper-cased peer name.
func LoadPeer(name string) Peer {
	prefix := strings.ToUpper(name) + "_"

	cb := DefaultCircuitBreaker()
	retry := DefaultRetry()
	bulkhead := DefaultBulkhead()

	return Peer{
		Name:           name,
		Address:        GetenvOrDefault(prefix+"ADDRESS", "localhost:50051"),
		TLS:            GetenvBoolOrDefault(prefix+"TLS", false),
		Deadline:       GetenvDurationMsOrDefault(prefix+"DEADLINE_MS", 10*time.Second),
		SoftTimeLimit:  GetenvDurationMsOrDefault(prefix+"SOFT_TIME_LIMIT_MS", 10*time.Second),
		MaxMessageSize: int(GetenvIntOrDefault(prefix+"MAX_MESSAGE_SIZE_BYTES", 16<<20)),
		CircuitBreaker: CircuitBreaker{
			WindowSize:         uint32(GetenvIntOrDefault(prefix+"CB_WINDOW_SIZE", int64(cb.WindowSize))),
			MinCallsToEvaluate: uint32(GetenvIntOrDefault(prefix+"CB_MIN_CALLS", int64(cb.MinCallsToEvaluate))),
			FailureRateThresh:  parseFloatOrDefault(prefix+"CB_FAILURE_RATE", cb.FailureRateThresh),
			OpenStateTimeout:   GetenvDurationMsOrDefault(prefix+"CB_OPEN_TIMEOUT_MS", cb.OpenStateTimeout),
			HalfOpenMaxCalls:   uint32(GetenvIntOrDefault(prefix+"CB_HALF_OPEN_CALLS", int64(cb.HalfOpenMaxCalls))),
		},
		Retry: Retry{
			MaxAttempts:     int(GetenvIntOrDefault(prefix+"RETRY_MAX_ATTEMPTS", int64(retry.MaxAttempts))),
			InitialBackoff:  GetenvDurationMsOrDefault(prefix+"RETRY_INITIAL_BACKOFF_MS", retry.InitialBackoff),
			BackoffMultiple: parseFloatOrDefault(prefix+"RETRY_BACKOFF_MULTIPLIER", retry.BackoffMultiple),
			MaxBackoff:      GetenvDurationMsOrDefault(prefix+"RETRY_MAX_BACKOFF_MS", retry.MaxBackoff),
		},
		Bulkhead: Bulkhead{
			MaxConcurrent: GetenvIntOrDefault(prefix+"BULKHEAD_MAX_CONCURRENT", bulkhead.MaxConcurrent),
			MaxWaitTime:   GetenvDurationMsOrDefault(prefix+"BULKHEAD_MAX_WAIT_MS", bulkhead.MaxWaitTime),
		},
	}
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	v := GetenvOrDefault(key, "")
	if v == "" {
		return defaultValue
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}

	return f
}
