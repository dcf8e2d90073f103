// Package bootstrap assembles the process-wide gRPC server shared by
// cmd/identityservice and cmd/orderservice, grounded on
// components/ledger/internal/service/servergRPC.go's ServerGRPC: a
// listener plus a *grpc.Server wrapped in a small struct with a Run method,
// translated from the teacher's common.Launcher-driven Run signature (no
// Launcher exists in this repo's ambient stack) to a plain error return.
package bootstrap

import (
	"fmt"
	"net"

	"github.com/coreflux/idorder/common/mlog"
	"github.com/coreflux/idorder/internal/transport"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// GRPCServer wraps a listening *grpc.Server for one service.
type GRPCServer struct {
	listener net.Listener
	server   *grpc.Server
	address  string
	logger   mlog.Logger
}

// NewGRPCServer binds address and builds a *grpc.Server decorated with the
// server interceptor chain (C3)'s UnaryInterceptor and the JSON wire codec
// (internal/transport.CodecName), then lets register attach the service
// implementation before the listener starts accepting.
func NewGRPCServer(address string, logger mlog.Logger, unary grpc.UnaryServerInterceptor, register func(*grpc.Server)) (*GRPCServer, error) {
	listener, err := net.Listen("tcp4", address)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: listen on %s: %w", address, err)
	}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(unary),
		grpc.ForceServerCodec(encoding.GetCodec(transport.CodecName)),
	)

	register(server)

	return &GRPCServer{listener: listener, server: server, address: address, logger: logger}, nil
}

// Run blocks serving RPCs until the listener is closed or GracefulStop is called.
func (s *GRPCServer) Run() error {
	s.logger.Infof("grpc server listening on %s", s.address)

	if err := s.server.Serve(s.listener); err != nil {
		return fmt.Errorf("bootstrap: serve: %w", err)
	}

	return nil
}

// GracefulStop stops accepting new RPCs and waits for in-flight ones to finish.
func (s *GRPCServer) GracefulStop() {
	s.server.GracefulStop()
}
