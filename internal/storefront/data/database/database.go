package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"smm-market/pkg/logging"
	"smm-market/pkg/timeutils"
)

var DefaultRetryAttemptDelays = []time.Duration{time.Second, 3 * time.Second, 5 * time.Second}

type Config struct {
	ConnectionString   string
	RetryAttemptDelays []time.Duration
}

type PgxDatabaseFactory struct {
	cfg    Config
	logger *logging.ZapLogger
}

func NewPgxDatabaseFactory(cfg Config, logger *logging.ZapLogger) *PgxDatabaseFactory {
	if cfg.RetryAttemptDelays == nil {
		cfg.RetryAttemptDelays = DefaultRetryAttemptDelays
	}
	return &PgxDatabaseFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// Create migrates the schema and returns a pool that answered a ping. Both
// steps are retried while the database is unreachable.
func (f *PgxDatabaseFactory) Create(ctx context.Context) (*pgxpool.Pool, error) {
	_, err := timeutils.Retry(
		ctx,
		f.cfg.RetryAttemptDelays,
		func(context.Context) (struct{}, error) {
			return struct{}{}, runMigrations(f.cfg.ConnectionString)
		},
		f.needRetry(ctx, "migrations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to run DB migrations: %w", err)
	}

	pool, err := pgxpool.New(ctx, f.cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to create a connection pool: %w", err)
	}
	_, err = timeutils.Retry(
		ctx,
		f.cfg.RetryAttemptDelays,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, pool.Ping(ctx)
		},
		f.needRetry(ctx, "ping"),
	)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to the DB: %w", err)
	}
	return pool, nil
}

func (f *PgxDatabaseFactory) needRetry(ctx context.Context, step string) func(struct{}, error) bool {
	return func(_ struct{}, err error) bool {
		if err == nil || ctx.Err() != nil {
			return false
		}
		f.logger.WarnCtx(ctx, "database is not ready", zap.String("step", step), zap.Error(err))
		return true
	}
}

//go:embed migrations/*.sql
var migrationsDir embed.FS

func runMigrations(dsn string) error {
	d, err := iofs.New(migrationsDir, "migrations")
	if err != nil {
		return fmt.Errorf("failed to return an iofs driver: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, dsn)
	if err != nil {
		return fmt.Errorf("failed to get a new migrate instance: %w", err)
	}
	defer m.Close() //nolint:errcheck // source and db errors are irrelevant here
	if err := m.Up(); err != nil {
		if !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations to the DB: %w", err)
		}
	}
	return nil
}
