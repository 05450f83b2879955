package middleware

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/iho/bankledger/internal/infrastructure/logger"
)

// RequestIDHeader is the metadata key carrying a caller supplied request ID.
const RequestIDHeader = "x-request-id"

// GRPCRecorder receives finished call measurements.
type GRPCRecorder interface {
	ObserveGRPC(method, status string, duration time.Duration)
}

// LoggingInterceptor attaches a request scoped logger and logs one line per call.
func LoggingInterceptor(base zerolog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()

		ctx = base.WithContext(ctx)
		ctx = logger.WithRequest(ctx, requestID(ctx), "")

		resp, err := handler(ctx, req)

		code := status.Code(err)
		ev := zerolog.Ctx(ctx).Info()
		if code == codes.Internal || code == codes.Unknown {
			ev = zerolog.Ctx(ctx).Error().Err(err)
		}
		ev.Str("method", info.FullMethod).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("grpc call completed")

		return resp, err
	}
}

// MetricsInterceptor records call counts and latency.
func MetricsInterceptor(rec GRPCRecorder) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		rec.ObserveGRPC(info.FullMethod, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// RecoveryInterceptor turns handler panics into Internal errors.
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				zerolog.Ctx(ctx).Error().
					Interface("error", r).
					Str("stack", string(debug.Stack())).
					Str("method", info.FullMethod).
					Msg("panic recovered")
				err = status.Error(codes.Internal, "an internal error occurred")
			}
		}()
		return handler(ctx, req)
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if ids := md.Get(RequestIDHeader); len(ids) > 0 && ids[0] != "" {
			return ids[0]
		}
	}
	return uuid.NewString()
}
