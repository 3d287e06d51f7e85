package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/stockcast/internal/models"
)

// PriceRepository defines the interface for daily price data access
type PriceRepository interface {
	UpsertSeries(ctx context.Context, series *models.PriceSeries) error
	GetWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error)
	GetLatest(ctx context.Context, symbol string) (*models.PricePoint, error)
}

// NewsRepository defines the interface for news article data access
type NewsRepository interface {
	InsertBatch(ctx context.Context, articles []models.NewsArticle) error
	GetBySymbol(ctx context.Context, symbol string, since time.Time, limit int) ([]models.NewsArticle, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// BacktestRunRepository defines the interface for backtest run data access
type BacktestRunRepository interface {
	Create(ctx context.Context, run *models.BacktestRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error)
}
