package client

import (
	"context"
	"testing"
	"time"

	"github.com/coreflux/idorder/common/config"
	"github.com/coreflux/idorder/common/mmodel"
	"github.com/coreflux/idorder/internal/auth/token"
	"github.com/coreflux/idorder/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

func testCodec() *token.Codec {
	return token.New(token.Config{
		Secret:   []byte("0123456789abcdef0123456789abcdef"),
		Issuer:   "idorder",
		Audience: "idorder-clients",
	})
}

func captureInvoker(captured *metadata.MD) grpc.UnaryInvoker {
	return func(ctx context.Context, _ string, _, _ any, _ *grpc.ClientConn, _ ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		*captured = md
		return nil
	}
}

func TestChain_None_AttachesNothing(t *testing.T) {
	chain := New(config.ModeNone, testCodec(), time.Hour)

	var captured metadata.MD

	err := chain.UnaryInterceptor()(context.Background(), "/svc/M", nil, nil, nil, captureInvoker(&captured))
	require.NoError(t, err)
	assert.Empty(t, captured.Get(transport.MetadataAuthorization))
}

func TestChain_Propagate_ReusesExistingToken(t *testing.T) {
	chain := New(config.ModePropagate, testCodec(), time.Hour)

	ctx := transport.WithToken(context.Background(), "existing-token")

	var captured metadata.MD

	err := chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&captured))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bearer existing-token"}, captured.Get(transport.MetadataAuthorization))
}

func TestChain_Propagate_MintsFromPrincipalWhenNoToken(t *testing.T) {
	chain := New(config.ModePropagate, testCodec(), time.Hour)

	ctx := transport.WithPrincipal(context.Background(), mmodel.Principal{UserID: "user-1"})

	var captured metadata.MD

	err := chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&captured))
	require.NoError(t, err)
	require.Len(t, captured.Get(transport.MetadataAuthorization), 1)
	assert.Contains(t, captured.Get(transport.MetadataAuthorization)[0], "Bearer ")
}

func TestChain_Propagate_CachesMintedTokenUntil90PercentTTL(t *testing.T) {
	chain := New(config.ModePropagate, testCodec(), time.Hour)

	base := time.Now()
	chain.now = func() time.Time { return base }

	ctx := transport.WithPrincipal(context.Background(), mmodel.Principal{UserID: "user-1"})

	var first, second metadata.MD

	require.NoError(t, chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&first)))

	chain.now = func() time.Time { return base.Add(30 * time.Minute) }
	require.NoError(t, chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&second)))

	assert.Equal(t, first.Get(transport.MetadataAuthorization), second.Get(transport.MetadataAuthorization))
}

func TestChain_Propagate_RemintsAfter90PercentTTL(t *testing.T) {
	chain := New(config.ModePropagate, testCodec(), time.Hour)

	base := time.Now()
	chain.now = func() time.Time { return base }

	ctx := transport.WithPrincipal(context.Background(), mmodel.Principal{UserID: "user-1"})

	var first, second metadata.MD

	require.NoError(t, chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&first)))

	chain.now = func() time.Time { return base.Add(55 * time.Minute) }
	require.NoError(t, chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&second)))

	assert.NotEqual(t, first.Get(transport.MetadataAuthorization), second.Get(transport.MetadataAuthorization))
}

func TestChain_Validate_RejectsExpiredTokenLocally(t *testing.T) {
	codec := testCodec()
	chain := New(config.ModeValidate, codec, time.Hour)

	base := time.Now()

	expiredCodec := token.New(token.Config{Secret: []byte("0123456789abcdef0123456789abcdef"), Issuer: "idorder", Audience: "idorder-clients", Now: func() time.Time { return base.Add(-2 * time.Hour) }})
	expiredTok, err := expiredCodec.Issue(mmodel.Principal{UserID: "user-1"}, time.Minute)
	require.NoError(t, err)

	ctx := transport.WithToken(context.Background(), expiredTok)

	var captured metadata.MD
	err = chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&captured))
	require.Error(t, err)
}

func TestChain_CorrelationID_PropagatedWhenPresent(t *testing.T) {
	chain := New(config.ModeNone, testCodec(), time.Hour)

	ctx := transport.WithCorrelationID(context.Background(), "cid-123")

	var captured metadata.MD
	err := chain.UnaryInterceptor()(ctx, "/svc/M", nil, nil, nil, captureInvoker(&captured))
	require.NoError(t, err)
	assert.Equal(t, []string{"cid-123"}, captured.Get(transport.MetadataCorrelationID))
}

func TestChain_CorrelationID_MintedWhenAbsent(t *testing.T) {
	chain := New(config.ModeNone, testCodec(), time.Hour)

	var captured metadata.MD
	err := chain.UnaryInterceptor()(context.Background(), "/svc/M", nil, nil, nil, captureInvoker(&captured))
	require.NoError(t, err)
	require.Len(t, captured.Get(transport.MetadataCorrelationID), 1)
	assert.NotEmpty(t, captured.Get(transport.MetadataCorrelationID)[0])
}
