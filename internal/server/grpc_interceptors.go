package server

import (
	"context"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// UnaryLoggingInterceptor logs each unary call once it completes, with its
// status code and duration. Health probes log at debug.
func UnaryLoggingInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		event := rpcEvent(log, info.FullMethod, err).Dur("duration", time.Since(start))
		if check, ok := req.(*healthpb.HealthCheckRequest); ok {
			event = event.Str("health_service", check.GetService())
		}
		event.Err(err).Msg("gRPC request")

		return resp, err
	}
}

// UnaryRecoveryInterceptor turns a handler panic into codes.Internal.
func UnaryRecoveryInterceptor(log zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(log, info.FullMethod, r)
			}
		}()
		return handler(ctx, req)
	}
}

// StreamLoggingInterceptor logs each stream when it closes. Health watches
// can stay open for the life of a connection.
func StreamLoggingInterceptor(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		start := time.Now()
		err := handler(srv, ss)

		rpcEvent(log, info.FullMethod, err).
			Dur("duration", time.Since(start)).
			Bool("client_stream", info.IsClientStream).
			Bool("server_stream", info.IsServerStream).
			Err(err).
			Msg("gRPC stream")

		return err
	}
}

// StreamRecoveryInterceptor turns a stream handler panic into codes.Internal.
func StreamRecoveryInterceptor(log zerolog.Logger) grpc.StreamServerInterceptor {
	return func(
		srv interface{},
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered(log, info.FullMethod, r)
			}
		}()
		return handler(srv, ss)
	}
}

func recovered(log zerolog.Logger, fullMethod string, r interface{}) error {
	service, method := splitMethod(fullMethod)
	log.Error().
		Interface("panic", r).
		Str("stack", string(debug.Stack())).
		Str("grpc_service", service).
		Str("grpc_method", method).
		Msg("gRPC panic recovered")
	return status.Error(codes.Internal, "internal server error")
}

// rpcEvent picks the level from the status code: server faults are errors,
// caller faults warnings.
func rpcEvent(log zerolog.Logger, fullMethod string, err error) *zerolog.Event {
	service, method := splitMethod(fullMethod)
	code := status.Code(err)

	var event *zerolog.Event
	switch code {
	case codes.OK:
		if service == healthpb.Health_ServiceDesc.ServiceName {
			event = log.Debug()
		} else {
			event = log.Info()
		}
	case codes.Canceled, codes.InvalidArgument, codes.NotFound, codes.AlreadyExists,
		codes.PermissionDenied, codes.Unauthenticated, codes.FailedPrecondition,
		codes.OutOfRange, codes.ResourceExhausted:
		event = log.Warn()
	default:
		event = log.Error()
	}
	return event.
		Str("grpc_service", service).
		Str("grpc_method", method).
		Str("grpc_code", code.String())
}

// splitMethod splits "/pkg.Service/Method".
func splitMethod(fullMethod string) (service, method string) {
	name := strings.TrimPrefix(fullMethod, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "unknown", name
}
