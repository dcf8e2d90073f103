// Command orderservice runs the Order Service (§6): the Postgres-backed
// order store exposing CreateOrder/GetOrder/ListUserOrders/
// UpdateOrderStatus/HealthCheck over gRPC, driving the Order Saga (C7) for
// CreateOrder and calling the Identity Service through the Channel Fabric
// (C5) decorated with the Client Interceptor Chain (C4) to validate users.
// Grounded, like cmd/identityservice/main.go, on
// components/ledger_two/cmd/app/main.go's flat construction order.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreflux/idorder/common/config"
	"github.com/coreflux/idorder/common/mlog"
	"github.com/coreflux/idorder/common/mpostgres"
	"github.com/coreflux/idorder/common/mredis"
	"github.com/coreflux/idorder/common/mzap"
	authclient "github.com/coreflux/idorder/internal/auth/client"
	"github.com/coreflux/idorder/internal/auth/principal"
	authserver "github.com/coreflux/idorder/internal/auth/server"
	"github.com/coreflux/idorder/internal/auth/token"
	"github.com/coreflux/idorder/internal/bootstrap"
	"github.com/coreflux/idorder/internal/channelfabric"
	"github.com/coreflux/idorder/internal/orderservice"
	"github.com/coreflux/idorder/internal/saga"
	"github.com/coreflux/idorder/internal/validationcache"
	"github.com/coreflux/idorder/proto/identity"
	"github.com/coreflux/idorder/proto/order"
	"google.golang.org/grpc"
)

// identityPeerName selects the IDENTITY_* environment variable prefix
// config.LoadPeer reads the Channel Fabric (C5) dial target from.
const identityPeerName = "identity"

// publicMethods lists the order.OrderHandler methods excluded from
// authentication (§4.3: "Exclusion list"): HealthCheck must answer before
// any token exists.
var publicMethods = []string{
	"/order.OrderHandler/HealthCheck",
}

func main() {
	config.LoadDotEnv()

	logger := mzap.InitializeLogger()

	jwtCfg, err := config.LoadJWT()
	if err != nil {
		logger.Fatalf("orderservice: load JWT config: %v", err)
	}

	security := config.LoadSecurity()

	codec := token.New(token.Config{
		Secret:   jwtCfg.Secret,
		Issuer:   jwtCfg.Issuer,
		Audience: jwtCfg.Audience,
		Leeway:   jwtCfg.Leeway,
	})

	ctx := context.Background()

	identityConn := dialIdentityService(logger, security, codec)
	identityClient := identity.NewIdentityHandlerClient(identityConn)

	redisConn := &mredis.RedisConnection{
		ConnectionStringSource: config.GetenvOrDefault("VALIDATION_CACHE_REDIS_URL", "redis://localhost:6379/0"),
		Logger:                 logger,
	}

	redisClient, err := redisConn.GetDB(ctx)
	if err != nil {
		logger.Fatalf("orderservice: connect to redis: %v", err)
	}

	cacheTTL := config.LoadValidationCache()
	cache := validationcache.New(redisClient, orderservice.NewRemoteUserLookup(identityClient), cacheTTL, logger)

	pg := &mpostgres.PostgresConnection{
		ConnectionString: config.GetenvOrDefault("ORDER_DB_DSN", "postgres://localhost:5432/order?sslmode=disable"),
	}

	repo := orderservice.NewOrderPostgreSQLRepository(pg)

	orderSaga := saga.New(repo, cache, saga.WithLogger(logger))

	svc := orderservice.New(repo, orderSaga)
	orderServer := orderservice.NewServer(svc)

	// The Order Service keeps no local user directory; its resolver trusts
	// the caller's JWT claims directly (principal.Resolver.ResolveFromClaimsOnly),
	// the allowed fallback when no directory is configured (§4.2).
	resolver := principal.New(nil, principal.DefaultCacheTTL)

	chain := authserver.New(
		security.ServerMode,
		append(append([]string{}, security.ExcludedMethods...), publicMethods...),
		codec,
		resolver,
		authserver.WithLogger(logger),
	)

	grpcServer, err := bootstrap.NewGRPCServer(
		config.GetenvOrDefault("ORDER_GRPC_ADDRESS", ":50052"),
		logger,
		chain.UnaryInterceptor(),
		func(s *grpc.Server) { order.RegisterOrderHandlerServer(s, orderServer) },
	)
	if err != nil {
		logger.Fatalf("orderservice: %v", err)
	}

	go func() {
		if err := grpcServer.Run(); err != nil {
			logger.Errorf("orderservice: server stopped: %v", err)
		}
	}()

	waitForShutdown(logger, grpcServer, identityConn)
}

// dialIdentityService opens the Channel Fabric (C5) connection to the
// Identity Service, decorated with bulkhead/breaker/retry/deadline plus the
// Client Interceptor Chain (C4)'s correlation-id and token-attachment stages.
func dialIdentityService(logger mlog.Logger, security config.Security, codec *token.Codec) *grpc.ClientConn {
	peer := config.LoadPeer(identityPeerName)

	fabric := channelfabric.New(peer, isIdempotentIdentityMethod, channelfabric.WithLogger(logger))

	clientChain := authclient.New(security.ClientMode, codec, jwtMintedTokenTTL(peer))

	conn, err := fabric.Dial(clientChain.UnaryInterceptor())
	if err != nil {
		logger.Fatalf("orderservice: dial identity service: %v", err)
	}

	return conn
}

// isIdempotentIdentityMethod classifies GetUser/ValidateUser/HealthCheck as
// safe to retry (§4.5: "Retries MUST NOT be applied to non-idempotent
// methods"); CreateUser and UpdateUserProfile are mutating and excluded.
func isIdempotentIdentityMethod(fullMethod string) bool {
	switch fullMethod {
	case "/identity.IdentityHandler/GetUser",
		"/identity.IdentityHandler/ValidateUser",
		"/identity.IdentityHandler/HealthCheck":
		return true
	default:
		return false
	}
}

// jwtMintedTokenTTL gives the Client Interceptor Chain (C4) a minted-token
// lifetime tied to the peer's own deadline, long enough to outlive any one
// call the fabric will make against it.
func jwtMintedTokenTTL(peer config.Peer) (ttl time.Duration) {
	if peer.Deadline <= 0 {
		return time.Minute
	}

	return peer.Deadline
}

func waitForShutdown(logger mlog.Logger, s *bootstrap.GRPCServer, conns ...*grpc.ClientConn) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("orderservice: shutting down")
	s.GracefulStop()

	for _, conn := range conns {
		_ = conn.Close()
	}

	_ = logger.Sync()
}
