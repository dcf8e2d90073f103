// Package client implements the Client Interceptor Chain (C4): the two
// outbound decoration stages applied to every RPC a service makes to
// another (§4.4). No teacher client interceptor exists — common/mgrpc's
// GRPCConnection dials a bare channel with no decoration — so this is
// authored fresh in the same small-struct-plus-method idiom the teacher
// uses for its server-side middleware family, generalized to the client
// direction.
package client

import (
	"context"
	"time"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/coreflux/idorder/common/config"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/auth/token"
	"github.com/coreflux/idorder/internal/transport"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// maxMintAttempts and mintBackoff implement §4.4: "minting is attempted up
// to 3 times with a fixed 100 ms backoff".
const (
	maxMintAttempts = 3
	mintBackoff     = 100 * time.Millisecond
)

// tokenCacheSafetyMargin implements §4.4: "reuse it until 90% of its TTL has
// elapsed".
const tokenCacheSafetyMargin = 0.9

type cachedToken struct {
	value     string
	mintedAt  time.Time
	expiresAt time.Time
}

func (c cachedToken) stillFresh(now time.Time) bool {
	ttl := c.expiresAt.Sub(c.mintedAt)
	return now.Before(c.mintedAt.Add(time.Duration(float64(ttl) * tokenCacheSafetyMargin)))
}

// Chain decorates outbound unary calls with correlation-id propagation and
// token attachment (§4.4).
type Chain struct {
	mode  config.SecurityMode
	codec *token.Codec
	ttl   time.Duration
	now   func() time.Time

	mu    chan struct{}
	cache map[string]cachedToken
	sleep func(time.Duration)
}

// New builds a client Chain for the given mode (§4.4: "Modes").
func New(mode config.SecurityMode, codec *token.Codec, mintedTokenTTL time.Duration) *Chain {
	return &Chain{
		mode:  mode,
		codec: codec,
		ttl:   mintedTokenTTL,
		now:   time.Now,
		mu:    make(chan struct{}, 1),
		cache: map[string]cachedToken{},
		sleep: time.Sleep,
	}
}

// UnaryInterceptor returns the grpc.UnaryClientInterceptor implementing both
// stages (§4.4).
func (c *Chain) UnaryInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		ctx = c.correlationIDStage(ctx)

		ctx, err := c.tokenAttachmentStage(ctx)
		if err != nil {
			if _, isStatus := status.FromError(err); isStatus {
				return err
			}

			return apperrors.ToGRPCStatus(err)
		}

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

func (c *Chain) correlationIDStage(ctx context.Context) context.Context {
	id := transport.CorrelationIDFromContext(ctx)
	if id == "" {
		id = uuid.NewString()
	}

	return metadata.AppendToOutgoingContext(ctx, transport.MetadataCorrelationID, id)
}

func (c *Chain) tokenAttachmentStage(ctx context.Context) (context.Context, error) {
	switch c.mode {
	case config.ModeNone:
		return ctx, nil
	case config.ModePropagate, config.ModeValidate:
		tok, err := c.resolveToken(ctx)
		if err != nil {
			return ctx, err
		}

		if c.mode == config.ModeValidate {
			if _, err := c.codec.Verify(tok); err != nil {
				return ctx, status.Error(codes.Unauthenticated, "token failed re-verification")
			}
		}

		return metadata.AppendToOutgoingContext(ctx, transport.MetadataAuthorization, transport.BearerPrefix+tok), nil
	default:
		return ctx, nil
	}
}

// resolveToken reuses the caller's token from request-scoped state if
// present; otherwise mints a new one from the current Principal via C1
// (§4.4: "Token attachment").
func (c *Chain) resolveToken(ctx context.Context) (string, error) {
	if tok, ok := transport.TokenFromContext(ctx); ok && tok != "" {
		return tok, nil
	}

	principal, ok := transport.PrincipalFromContext(ctx)
	if !ok {
		return "", apperrors.New(apperrors.KindTokenIssuanceError, "no principal in request scope to mint a token for")
	}

	if cached, hit := c.lookupCache(principal.UserID); hit {
		return cached, nil
	}

	return c.mintWithRetry(principal)
}

func (c *Chain) lookupCache(userID string) (string, bool) {
	c.mu <- struct{}{}
	defer func() { <-c.mu }()

	entry, ok := c.cache[userID]
	if !ok || !entry.stillFresh(c.now()) {
		return "", false
	}

	return entry.value, true
}

func (c *Chain) storeCache(userID, value string, now time.Time) {
	c.mu <- struct{}{}
	defer func() { <-c.mu }()

	c.cache[userID] = cachedToken{value: value, mintedAt: now, expiresAt: now.Add(c.ttl)}
}

func (c *Chain) mintWithRetry(p mmodel.Principal) (string, error) {
	var lastErr error

	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		if attempt > 0 {
			c.sleep(mintBackoff)
		}

		now := c.now()

		tok, err := c.codec.Issue(p, c.ttl)
		if err == nil {
			c.storeCache(p.UserID, tok, now)
			return tok, nil
		}

		lastErr = err
	}

	return "", apperrors.Wrap(apperrors.KindTokenIssuanceError, "failed to mint token after retries", lastErr)
}
