package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

// DB bundles the database handle with the dialect the query builder targets.
type DB struct {
	SQL     *sql.DB
	Dialect string
	pool    *pgxpool.Pool
	logger  *zap.Logger
}

// builder returns a statement builder for the configured dialect.
func (db *DB) builder() *entsql.DialectBuilder {
	return entsql.Dialect(db.Dialect)
}

// Open connects to Postgres through a pgx pool or to SQLite through
// modernc.org/sqlite, pings with retries and applies the schema.
func Open(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("connecting to database", zap.String("driver", cfg.Driver))

	db := &DB{logger: logger}
	switch cfg.Driver {
	case common.DriverPostgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database url", zap.Error(err))
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		pc.MinConns = cfg.MinConns
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "angebotsagent"
		if cfg.StatementTimeout > 0 {
			pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
		}
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout(cfg))
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", zap.Error(err))
			return nil, err
		}
		db.pool = pool
		db.SQL = stdlib.OpenDBFromPool(pool)
		db.Dialect = dialect.Postgres
	case common.DriverSQLite:
		sqlDB, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, err
		}
		// one writer; avoids SQLITE_BUSY between pooled connections
		sqlDB.SetMaxOpenConns(1)
		db.SQL = sqlDB
		db.Dialect = dialect.SQLite
	default:
		return nil, common.NewAppError("CONFIG_ERROR", "unsupported database driver "+cfg.Driver, common.ErrInvalidInput)
	}

	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 1
	}
	if err := HealthCheck(ctx, db, dialTimeout(cfg), attempts); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("successfully connected to database", zap.String("dialect", db.Dialect))
	return db, nil
}

func dialTimeout(cfg common.DatabaseConfig) time.Duration {
	if cfg.DialTimeout > 0 {
		return cfg.DialTimeout
	}
	return 3 * time.Second
}

// HealthCheck pings the database, retrying up to attempts times.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, attempts uint) error {
	return retry.Do(
		func() error {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return db.SQL.PingContext(pctx)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			db.logger.Warn("database ping failed", zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

// Close closes the database connections gracefully
func (db *DB) Close() {
	if db == nil {
		return
	}
	db.logger.Info("closing database connections")
	if db.SQL != nil {
		if err := db.SQL.Close(); err != nil {
			db.logger.Error("failed to close database handle", zap.Error(err))
		}
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// exec builds and runs a statement.
func (db *DB) exec(ctx context.Context, q entsql.Querier) error {
	query, args := q.Query()
	_, err := db.SQL.ExecContext(ctx, query, args...)
	return err
}

// withTx runs fn inside a transaction.
func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
