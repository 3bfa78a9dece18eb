// Package store persists form submissions and cached scenario runs in
// Postgres. The API degrades to compute-only mode when no database is
// configured, so handlers must treat a nil pool as a soft failure.
package store

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool *pgxpool.Pool
	once sync.Once
)

// InitDB initializes the database connection pool using the DATABASE_URL
// environment variable and verifies connectivity with a ping.
func InitDB(ctx context.Context) error {
	var err error
	once.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}

		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}

		pool, err = pgxpool.NewWithConfig(ctx, config)
		if err != nil {
			return
		}
		if pingErr := pool.Ping(ctx); pingErr != nil {
			err = fmt.Errorf("database ping failed: %w", pingErr)
			pool.Close()
			pool = nil
		}
	})
	return err
}

// GetPool returns the database connection pool (nil when not initialized).
func GetPool() *pgxpool.Pool {
	return pool
}

// Ready reports whether persistence is available.
func Ready() bool {
	return pool != nil
}

// Close closes the database connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}
