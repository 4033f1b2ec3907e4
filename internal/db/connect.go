package db

import (
	"context"
	"fmt"

	"todo_webapp/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates the shared connection pool and verifies it with a ping.
func Connect(dsn string, poolSize int) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Fatal("invalid database url", "error", err)
	}
	if poolSize > 0 {
		cfg.MaxConns = int32(poolSize)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		logger.Fatal("failed to create database pool", "error", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("failed to ping database", "error", err)
	}

	logger.Info("database connected", "pool_size", fmt.Sprint(cfg.MaxConns))
	return pool
}
