package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stockcast/internal/database"
	"github.com/yourusername/stockcast/internal/models"
)

const errScanPricePoint = "failed to scan price point: %w"

// PostgresPriceRepository implements PriceRepository for PostgreSQL
type PostgresPriceRepository struct {
	db *database.DB
}

// NewPostgresPriceRepository creates a new price repository
func NewPostgresPriceRepository(db *database.DB) PriceRepository {
	return &PostgresPriceRepository{db: db}
}

// UpsertSeries inserts or refreshes the daily closes of a series
func (r *PostgresPriceRepository) UpsertSeries(ctx context.Context, series *models.PriceSeries) error {
	if series == nil || len(series.Points) == 0 {
		return nil
	}

	query := `
		INSERT INTO price_points (symbol, date, close, volume, fetched_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (symbol, date) DO UPDATE
		SET close = EXCLUDED.close, volume = EXCLUDED.volume, fetched_at = now()
	`

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, p := range series.Points {
			if _, err := r.db.GetPool().Exec(txCtx, query, series.Symbol, p.Date, p.Close, p.Volume); err != nil {
				return fmt.Errorf("failed to upsert price point: %w", err)
			}
		}
		return nil
	})
}

// GetWindow retrieves prices within the inclusive date window, oldest first
func (r *PostgresPriceRepository) GetWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	query := `
		SELECT date, close, volume
		FROM price_points
		WHERE symbol = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC
	`
	rows, err := r.db.GetPool().Query(ctx, query, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query price points: %w", err)
	}
	defer rows.Close()

	series := &models.PriceSeries{Symbol: symbol}
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Close, &p.Volume); err != nil {
			return nil, fmt.Errorf(errScanPricePoint, err)
		}
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}

// GetLatest retrieves the most recent stored price for a symbol
func (r *PostgresPriceRepository) GetLatest(ctx context.Context, symbol string) (*models.PricePoint, error) {
	query := `
		SELECT date, close, volume
		FROM price_points
		WHERE symbol = $1
		ORDER BY date DESC
		LIMIT 1
	`
	var p models.PricePoint
	err := r.db.GetPool().QueryRow(ctx, query, symbol).Scan(&p.Date, &p.Close, &p.Volume)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(errScanPricePoint, err)
	}
	return &p, nil
}
