package server

import (
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/windfall/kidvocab_service/internal/config"
	grpchandler "github.com/windfall/kidvocab_service/internal/handler/grpc"
)

// GRPCServer represents the gRPC server.
type GRPCServer struct {
	server *grpc.Server
	health *grpchandler.Handler
	addr   string
	log    zerolog.Logger
}

// NewGRPCServer creates a new gRPC server.
func NewGRPCServer(
	cfg *config.Config,
	log zerolog.Logger,
	health *grpchandler.Handler,
) *GRPCServer {
	// Create gRPC server with interceptors
	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			UnaryLoggingInterceptor(log),
			UnaryRecoveryInterceptor(log),
		),
		grpc.ChainStreamInterceptor(
			StreamLoggingInterceptor(log),
			StreamRecoveryInterceptor(log),
		),
	)

	health.Register(server)

	// Enable reflection for development
	if cfg.IsDevelopment() {
		reflection.Register(server)
	}

	return &GRPCServer{
		server: server,
		health: health,
		addr:   cfg.GRPCAddress(),
		log:    log,
	}
}

// Start starts the gRPC server.
func (s *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

// Serve accepts connections on lis until the server stops.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.log.Info().Str("addr", lis.Addr().String()).Msg("Starting gRPC server")
	return s.server.Serve(lis)
}

// GracefulStop gracefully stops the gRPC server.
func (s *GRPCServer) GracefulStop() {
	s.log.Info().Msg("Shutting down gRPC server")
	s.health.Shutdown()
	s.server.GracefulStop()
}
