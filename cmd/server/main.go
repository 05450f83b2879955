package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	grpcserver "github.com/iho/bankledger/internal/adapter/grpc/server"
	httpAdapter "github.com/iho/bankledger/internal/adapter/http"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	redisRepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/infrastructure/auth"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
	"github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

const serviceName = "bankledger"

func main() {
	// Default logger until the configuration is known
	logger.Setup(logger.Config{Level: "info", Format: "console", Service: serviceName})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.Setup(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: serviceName})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(l.WithContext(ctx), cfg); err != nil {
		l.Fatal().Err(err).Msg("server failed")
	}

	l.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	l := zerolog.Ctx(ctx)

	store, err := openStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.close()
	l.Info().Str("driver", cfg.DatabaseDriver).Msg("connected to database")

	m := metrics.New()

	accountUC := usecase.NewAccountUseCase(store.txManager, store.accounts, store.log, store.outbox, store.idGen).
		WithMetrics(m)
	reconciliationUC := usecase.NewReconciliationUseCase(store.accounts, store.log, store.ledger)

	healthChecks := map[string]handler.Pinger{"database": store.ping}

	var (
		idempotencyStore usecase.IdempotencyStore
		sharedLimits     middleware.SharedLimitStore
	)
	if cfg.RedisEnabled {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		sharedLimits = redisRepo.NewRateLimitStore(redisClient, cfg.RateLimitBurst, time.Second)
		healthChecks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	var jwtManager *auth.JWTManager
	if cfg.JWTSecret != "" {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).
			WithHitsCounter(m.RateLimitHits)
		if sharedLimits != nil {
			rateLimiter.WithSharedStore(sharedLimits)
		}
		go rateLimiter.RunCleanup(ctx, 10*time.Minute)
	}

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:   handler.NewAccountHandler(accountUC, middleware.UserIDFromContext),
		LedgerHandler:    handler.NewLedgerHandler(reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(healthChecks),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      rateLimiter,
		Logger:           zerolog.Ctx(ctx),
		Metrics:          m,
		MetricsHandler:   promhttp.Handler(),
		AuthRequired:     cfg.AuthEnabled,
	}
	grpcCfg := grpcserver.Config{
		AccountUC:        accountUC,
		Logger:           *zerolog.Ctx(ctx),
		Metrics:          m,
		AuthRequired:     cfg.AuthEnabled,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	}
	if jwtManager != nil {
		routerCfg.TokenVerifier = jwtManager
		grpcCfg.TokenVerifier = jwtManager
	}

	if cfg.OutboxEnabled {
		publisher, closePublisher, err := outboxPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		defer closePublisher()

		worker := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: store.outbox,
			Publisher:  publisher,
			Recorder:   m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		})
		go func() {
			if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				l.Error().Err(err).Msg("outbox worker stopped")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         listenAddr(cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	grpcListener, err := net.Listen("tcp", listenAddr(cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen on grpc port: %w", err)
	}
	grpcSrv := grpcserver.New(grpcCfg)

	errCh := make(chan error, 2)

	go func() {
		l.Info().Str("port", cfg.HTTPPort).Msg("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		l.Info().Str("port", cfg.GRPCPort).Msg("starting grpc server")
		if err := grpcSrv.Serve(grpcListener); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		l.Info().Msg("shutting down server...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		grpcSrv.GracefulStop()
		close(stopped)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("http server forced to shutdown")
	}

	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcSrv.Stop()
	}

	return nil
}

// outboxPublisher returns the Kafka publisher when brokers are configured and
// a log-only publisher otherwise.
func outboxPublisher(ctx context.Context, cfg *config.Config) (eventpublisher.Publisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		zerolog.Ctx(ctx).Info().Msg("no kafka brokers configured, outbox events will be logged")
		return eventpublisher.NewLogPublisher(), func() {}, nil
	}

	kp, err := eventpublisher.NewKafkaPublisher(ctx, eventpublisher.KafkaConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	})
	if err != nil {
		return nil, nil, err
	}

	return kp, func() {
		if err := kp.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close kafka writer")
		}
	}, nil
}

func listenAddr(port string) string {
	return ":" + port
}
