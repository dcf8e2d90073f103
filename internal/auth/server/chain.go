// Package server implements the Server Interceptor Chain (C3): the ordered,
// fixed-order chain every inbound RPC passes through (§4.3). Grounded on the
// common/net/http middleware family (withCorrelationID.go, withJWT.go,
// withLogging.go) — the same ordered-stage idea, translated from
// fiber.Handler chaining to a single grpc.UnaryServerInterceptor.
package server

import (
	"context"
	"strings"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/config"
	"github.com/coreflux/idorder/common/mlog"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/auth/principal"
	"github.com/coreflux/idorder/internal/auth/token"
	"github.com/coreflux/idorder/internal/transport"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Policy decides whether a call is authorized, given whether the caller is
// anonymous, its authorities, and the raw request message — so a policy can
// compare a caller-claim against a method argument (§4.3).
type Policy func(isAnonymous bool, authorities []string, req any) bool

// RequireAuthenticated is the default policy (§4.3: "Methods default to
// 'requires authenticated caller'").
func RequireAuthenticated(isAnonymous bool, _ []string, _ any) bool {
	return !isAnonymous
}

// AllowAnyone is a policy for methods with no authorization requirement
// beyond whatever the security mode itself enforces.
func AllowAnyone(bool, []string, any) bool {
	return true
}

// Chain builds the server interceptor (C3).
type Chain struct {
	mode        config.SecurityMode
	excluded    map[string]bool
	codec       *token.Codec
	resolver    *principal.Resolver
	policies    map[string]Policy
	defaultPlcy Policy
	logger      mlog.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithPolicy registers a per-method authorization policy (§4.3: "consult a
// per-method policy map").
func WithPolicy(fullMethod string, p Policy) Option {
	return func(c *Chain) { c.policies[fullMethod] = p }
}

// WithLogger attaches a logger used for the Unexpected-error surface.
func WithLogger(logger mlog.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

// New builds a Chain for the given security mode (§4.3: "Security levels"),
// token codec, principal resolver, and excluded-method set (§4.3:
// "Exclusion list").
func New(mode config.SecurityMode, excludedMethods []string, codec *token.Codec, resolver *principal.Resolver, opts ...Option) *Chain {
	excluded := make(map[string]bool, len(excludedMethods))
	for _, m := range excludedMethods {
		excluded[m] = true
	}

	c := &Chain{
		mode:        mode,
		excluded:    excluded,
		codec:       codec,
		resolver:    resolver,
		policies:    map[string]Policy{},
		defaultPlcy: RequireAuthenticated,
		logger:      mlog.FromContext(context.Background()),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// UnaryInterceptor returns the grpc.UnaryServerInterceptor implementing the
// four fixed-order stages (§4.3).
func (c *Chain) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		// Stage 1: CorrelationId (highest precedence).
		correlationID, ctx := c.correlationIDStage(ctx)

		// Stage 4: Cleanup (always-on). Registered first via defer so it
		// runs on every exit path — normal return, panic-recovered error,
		// or cancellation — regardless of what stages 2/3 did below.
		// Context values are immutable and scoped to this call's ctx,
		// so there is structurally nothing left to scrub once this
		// function returns: no thread-local/global map is ever written.
		defer func() {
			if r := recover(); r != nil {
				c.logger.Errorf("panic in %s [correlation-id=%s]: %v", info.FullMethod, correlationID, r)
				err = status.Error(codes.Internal, "internal error")
			}

			err = attachCorrelationTrailer(ctx, err, correlationID)
		}()

		if c.mode == config.ModeNone || c.excluded[info.FullMethod] {
			return handler(ctx, req)
		}

		// Stage 2: Authentication.
		claims, tok, isAnonymous, authErr := c.authenticationStage(ctx)
		if authErr != nil {
			return nil, apperrors.ToGRPCStatus(authErr)
		}

		if !isAnonymous {
			// Published so a downstream C4 client call in PROPAGATE mode can
			// reuse this caller's token instead of minting its own (§4.4).
			ctx = transport.WithToken(ctx, tok)
		}

		var authorities []string

		if c.mode == config.ModeFull && !isAnonymous {
			p, err := c.resolver.Resolve(ctx, claims)
			if err != nil {
				return nil, status.Error(codes.Unauthenticated, "identity unknown or disabled")
			}

			ctx = transport.WithPrincipal(ctx, p)
			authorities = p.Authorities
		}

		// Stage 3: Authorization.
		if c.mode == config.ModeFull {
			policy := c.policies[info.FullMethod]
			if policy == nil {
				policy = c.defaultPlcy
			}

			if !policy(isAnonymous, authorities, req) {
				return nil, status.Error(codes.PermissionDenied, "insufficient privileges")
			}
		}

		return handler(ctx, req)
	}
}

func (c *Chain) correlationIDStage(ctx context.Context) (string, context.Context) {
	id := ""

	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(transport.MetadataCorrelationID); len(vals) > 0 && vals[0] != "" {
			id = vals[0]
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	return id, transport.WithCorrelationID(ctx, id)
}

func (c *Chain) authenticationStage(ctx context.Context) (mmodel.Claims, string, bool, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return mmodel.Claims{}, "", true, nil
	}

	vals := md.Get(transport.MetadataAuthorization)
	if len(vals) == 0 || !strings.HasPrefix(vals[0], transport.BearerPrefix) {
		return mmodel.Claims{}, "", true, nil
	}

	tok := strings.TrimPrefix(vals[0], transport.BearerPrefix)

	claims, err := c.codec.Verify(tok)
	if err != nil {
		return mmodel.Claims{}, "", false, err
	}

	return claims, tok, false, nil
}

func attachCorrelationTrailer(ctx context.Context, err error, correlationID string) error {
	_ = grpc.SetTrailer(ctx, metadata.Pairs(transport.TrailerCorrelationIDKey, correlationID))
	return err
}
