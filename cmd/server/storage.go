package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/handler"
	mysqlRepo "github.com/iho/bankledger/internal/adapter/repository/mysql"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/mysql"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/usecase"
)

// storage bundles the repositories of the configured driver.
type storage struct {
	txManager usecase.TransactionManager
	accounts  usecase.AccountRepository
	log       usecase.TransactionLogRepository
	ledger    usecase.LedgerRepository
	outbox    usecase.OutboxRepository
	idGen     usecase.IDGenerator
	ping      handler.Pinger
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	var (
		store *storage
		err   error
	)

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		store, err = openPostgres(ctx, cfg)
	case config.DriverMySQL:
		store, err = openMySQL(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.OutboxEnabled {
		store.outbox = postgresRepo.NewNullOutboxRepository()
	}
	store.idGen = postgresRepo.NewULIDGenerator()

	return store, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*storage, error) {
	if cfg.MigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		zerolog.Ctx(ctx).Info().Msg("migrations applied")
	}

	isolation, err := postgresRepo.ParseIsolationLevel(cfg.DatabaseIsolationLevel)
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return &storage{
		txManager: postgresRepo.NewTxManager(pool,
			postgresRepo.WithIsolationLevel(isolation),
			postgresRepo.WithLockTimeout(cfg.DatabaseLockTimeout),
			postgresRepo.WithRetrier(postgresRepo.NewRetrier()),
		),
		accounts: postgresRepo.NewAccountRepository(pool),
		log:      postgresRepo.NewTransactionLogRepository(pool),
		ledger:   postgresRepo.NewLedgerRepository(pool),
		outbox:   postgresRepo.NewOutboxRepository(pool),
		ping:     pool,
		close:    pool.Close,
	}, nil
}

func openMySQL(ctx context.Context, cfg *config.Config) (*storage, error) {
	client, err := mysql.NewClient(ctx, mysql.Config{
		DSN:            cfg.DatabaseURL,
		MaxOpenConns:   cfg.DatabaseMaxConns,
		MaxIdleConns:   cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
		LogLevel:       cfg.DatabaseLogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	db := client.DB()
	if cfg.MigrateOnStart {
		if err := mysqlRepo.AutoMigrate(db); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to migrate mysql schema: %w", err)
		}
	}

	return &storage{
		txManager: mysqlRepo.NewTxManager(db, cfg.DatabaseLockTimeout),
		accounts:  mysqlRepo.NewAccountRepository(db),
		log:       mysqlRepo.NewTransactionLogRepository(db),
		ledger:    mysqlRepo.NewLedgerRepository(db),
		outbox:    mysqlRepo.NewOutboxRepository(db),
		ping:      client,
		close: func() {
			if err := client.Close(); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close mysql connection")
			}
		},
	}, nil
}
