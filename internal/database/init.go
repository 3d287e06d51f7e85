package database

import (
	"context"
	"fmt"

	"github.com/yourusername/stockcast/internal/config"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS price_points (
		symbol TEXT NOT NULL,
		date DATE NOT NULL,
		close DOUBLE PRECISION NOT NULL,
		volume BIGINT NOT NULL DEFAULT 0,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (symbol, date)
	)`,
	`CREATE TABLE IF NOT EXISTS news_articles (
		id UUID PRIMARY KEY,
		symbol TEXT NOT NULL,
		title TEXT NOT NULL,
		link TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		published_at TIMESTAMPTZ NOT NULL,
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_news_articles_symbol_published
		ON news_articles (symbol, published_at DESC)`,
	`CREATE TABLE IF NOT EXISTS backtest_runs (
		id UUID PRIMARY KEY,
		run_date TIMESTAMPTZ NOT NULL,
		train_start DATE NOT NULL,
		train_end DATE NOT NULL,
		test_date DATE NOT NULL,
		symbols TEXT[] NOT NULL,
		success_count INT NOT NULL DEFAULT 0,
		direction_accuracy DOUBLE PRECISION NOT NULL DEFAULT 0,
		avg_pct_error DOUBLE PRECISION NOT NULL DEFAULT 0,
		snapshot JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_backtest_runs_run_date
		ON backtest_runs (run_date DESC)`,
}

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the application tables when they do not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
