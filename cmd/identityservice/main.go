// Command identityservice runs the Identity Service (§6): the Postgres-backed
// user directory exposing CreateUser/GetUser/UpdateUserProfile/ValidateUser/
// HealthCheck over gRPC, wired through the Server Interceptor Chain (C3).
// Grounded on components/ledger_two/cmd/app/main.go's flat
// config-then-connections-then-repositories-then-handlers construction,
// simplified to this repo's single-pool Postgres wrapper and single gRPC
// service instead of the teacher's HTTP+gRPC dual surface.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/coreflux/idorder/common/config"
	"github.com/coreflux/idorder/common/mlog"
	"github.com/coreflux/idorder/common/mpostgres"
	"github.com/coreflux/idorder/common/mzap"
	"github.com/coreflux/idorder/internal/auth/principal"
	authserver "github.com/coreflux/idorder/internal/auth/server"
	"github.com/coreflux/idorder/internal/auth/token"
	"github.com/coreflux/idorder/internal/bootstrap"
	"github.com/coreflux/idorder/internal/identityservice"
	"github.com/coreflux/idorder/proto/identity"
	"google.golang.org/grpc"
)

// publicMethods lists the identity.IdentityHandler methods excluded from
// authentication (§4.3: "Exclusion list"): registration has no caller to
// authenticate yet, and HealthCheck must answer before any token exists.
var publicMethods = []string{
	"/identity.IdentityHandler/CreateUser",
	"/identity.IdentityHandler/HealthCheck",
}

func main() {
	config.LoadDotEnv()

	logger := mzap.InitializeLogger()

	jwtCfg, err := config.LoadJWT()
	if err != nil {
		logger.Fatalf("identityservice: load JWT config: %v", err)
	}

	security := config.LoadSecurity()

	codec := token.New(token.Config{
		Secret:   jwtCfg.Secret,
		Issuer:   jwtCfg.Issuer,
		Audience: jwtCfg.Audience,
		Leeway:   jwtCfg.Leeway,
	})

	pg := &mpostgres.PostgresConnection{
		ConnectionString: config.GetenvOrDefault("IDENTITY_DB_DSN", "postgres://localhost:5432/identity?sslmode=disable"),
	}

	repo := identityservice.NewUserPostgreSQLRepository(pg)

	// repo satisfies principal.Directory (FindByUsername) directly, so the
	// resolver consults the same Postgres-backed directory CreateUser writes to.
	resolver := principal.New(repo, principal.DefaultCacheTTL)

	chain := authserver.New(
		security.ServerMode,
		append(append([]string{}, security.ExcludedMethods...), publicMethods...),
		codec,
		resolver,
		authserver.WithLogger(logger),
	)

	svc := identityservice.New(repo)
	identityServer := identityservice.NewServer(svc)

	grpcServer, err := bootstrap.NewGRPCServer(
		config.GetenvOrDefault("IDENTITY_GRPC_ADDRESS", ":50051"),
		logger,
		chain.UnaryInterceptor(),
		func(s *grpc.Server) { identity.RegisterIdentityHandlerServer(s, identityServer) },
	)
	if err != nil {
		logger.Fatalf("identityservice: %v", err)
	}

	go func() {
		if err := grpcServer.Run(); err != nil {
			logger.Errorf("identityservice: server stopped: %v", err)
		}
	}()

	waitForShutdown(logger, grpcServer)
}

func waitForShutdown(logger mlog.Logger, s *bootstrap.GRPCServer) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	logger.Info("identityservice: shutting down")
	s.GracefulStop()
	_ = logger.Sync()
}
