package grpc

import (
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceRemoteAI is the health service name of the generative backend.
const ServiceRemoteAI = "kidvocab.remote_ai"

// Handler serves grpc.health.v1 for the process and the generative backend.
type Handler struct {
	health *health.Server
	log    zerolog.Logger
}

// NewHandler creates a new gRPC health handler. remote tells whether a
// generative service credential is configured.
func NewHandler(log zerolog.Logger, remote bool) *Handler {
	h := &Handler{
		health: health.NewServer(),
		log:    log,
	}
	h.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(ServiceRemoteAI, remoteStatus(remote))
	log.Info().Bool("remote_ai", remote).Msg("gRPC health service ready")
	return h
}

// Register attaches the health service to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Shutdown marks every service NOT_SERVING.
func (h *Handler) Shutdown() {
	h.log.Info().Msg("gRPC health service shutting down")
	h.health.Shutdown()
}

func remoteStatus(available bool) healthpb.HealthCheckResponse_ServingStatus {
	if available {
		return healthpb.HealthCheckResponse_SERVING
	}
	return healthpb.HealthCheckResponse_NOT_SERVING
}
