package server

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/common"
	"github.com/clarencejohnson126/angebotsagent/internal/repository"
)

// ConnectDB opens the configured database; the schema is applied on open.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *zap.Logger) (*repository.DB, error) {
	db, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return nil, err
	}
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repository.DB, logger *zap.Logger, timeout time.Duration) error {
	logger.Debug("pinging database")
	if err := repository.HealthCheck(ctx, db, timeout, 1); err != nil {
		logger.Error("database ping failed", zap.Error(err))
		return err
	}
	logger.Debug("database ping successful")
	return nil
}

// CloseDB closes the database connections gracefully
func CloseDB(db *repository.DB, logger *zap.Logger) {
	db.Close()
	logger.Info("database connections closed")
}
