package server

import (
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/iho/bankledger/internal/adapter/grpc/middleware"
	"github.com/iho/bankledger/internal/usecase"
)

// Config holds dependencies for the gRPC server.
type Config struct {
	AccountUC        AccountService
	Logger           zerolog.Logger
	Metrics          middleware.GRPCRecorder
	TokenVerifier    middleware.TokenVerifier
	AuthRequired     bool
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
}

// New builds a grpc.Server with LedgerService and the health service registered.
func New(cfg Config) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		middleware.LoggingInterceptor(cfg.Logger),
		middleware.RecoveryInterceptor(),
	}
	if cfg.Metrics != nil {
		interceptors = append(interceptors, middleware.MetricsInterceptor(cfg.Metrics))
	}
	if cfg.TokenVerifier != nil {
		interceptors = append(interceptors, middleware.AuthInterceptor(cfg.TokenVerifier, cfg.AuthRequired))
	}
	if cfg.IdempotencyStore != nil {
		interceptors = append(interceptors, middleware.IdempotencyInterceptor(
			cfg.IdempotencyStore,
			cfg.IdempotencyTTL,
			FullMethod(MethodBalance),
			FullMethod(MethodHistory),
		))
	}

	srv := grpc.NewServer(grpc.UnaryInterceptor(middleware.ChainUnaryServer(interceptors...)))

	RegisterLedgerServiceServer(srv, NewLedgerServer(cfg.AccountUC, middleware.UserIDFromContext))

	healthSrv := health.NewServer()
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, healthSrv)

	return srv
}
