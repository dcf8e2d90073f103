package transport

import (
	"context"

	"github.com/coreflux/idorder/common/mmodel"
)

// Request-scoped context is the only channel through which the server
// interceptor chain (C3) publishes state to handlers, and through which the
// client interceptor chain (C4) reads state to decorate outbound calls.
// Every value set here lives only for the lifetime of the context it is
// attached to — never package-level or goroutine-local — so that request A
// can never observe request B's state even when served by the same worker
// (§5: "Shared resources").
type ctxKey string

const (
	ctxKeyCorrelationID ctxKey = "correlation-id"
	ctxKeyPrincipal     ctxKey = "principal"
	ctxKeyToken         ctxKey = "token"
)

// WithCorrelationID returns a context carrying the given correlation-id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyCorrelationID, id)
}

// CorrelationIDFromContext returns the correlation-id carried by ctx, or ""
// if none was set.
func CorrelationIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyCorrelationID).(string); ok {
		return v
	}

	return ""
}

// WithPrincipal returns a context carrying the resolved Principal.
func WithPrincipal(ctx context.Context, p mmodel.Principal) context.Context {
	return context.WithValue(ctx, ctxKeyPrincipal, p)
}

// PrincipalFromContext returns the Principal carried by ctx and whether one
// was present.
func PrincipalFromContext(ctx context.Context) (mmodel.Principal, bool) {
	p, ok := ctx.Value(ctxKeyPrincipal).(mmodel.Principal)
	return p, ok
}

// WithToken returns a context carrying the raw bearer token string, so C4
// can propagate the caller's own token instead of minting a new one.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyToken, token)
}

// TokenFromContext returns the bearer token carried by ctx and whether one
// was present.
func TokenFromContext(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(ctxKeyToken).(string)
	return t, ok
}
