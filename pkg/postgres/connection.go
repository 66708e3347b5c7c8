package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const retryDelay = 2 * time.Second

// Connect opens a pool to PostgreSQL and pings it, trying up to attempts times.
func Connect(ctx context.Context, databaseURL string, attempts, maxConns int, log *zap.Logger) (*sql.DB, error) {
	if attempts < 1 {
		attempts = 1
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	for i := 1; i <= attempts; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			log.Info("connected to PostgreSQL", zap.Int("max_conns", maxConns))
			return db, nil
		}
		if i == attempts {
			break
		}

		log.Warn("failed to ping database, retrying",
			zap.Error(err), zap.Int("attempt", i), zap.Duration("delay", retryDelay))
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}
