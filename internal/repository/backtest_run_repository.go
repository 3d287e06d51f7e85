package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/stockcast/internal/database"
	"github.com/yourusername/stockcast/internal/models"
)

const errScanBacktestRun = "failed to scan backtest run: %w"

// PostgresBacktestRunRepository implements BacktestRunRepository for PostgreSQL
type PostgresBacktestRunRepository struct {
	db *database.DB
}

// NewPostgresBacktestRunRepository creates a new backtest run repository
func NewPostgresBacktestRunRepository(db *database.DB) BacktestRunRepository {
	return &PostgresBacktestRunRepository{db: db}
}

// Create inserts a backtest run with its full snapshot
func (r *PostgresBacktestRunRepository) Create(ctx context.Context, run *models.BacktestRun) error {
	query := `
		INSERT INTO backtest_runs (
			id, run_date, train_start, train_end, test_date,
			symbols, success_count, direction_accuracy, avg_pct_error, snapshot, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		run.ID, run.RunDate, run.TrainStart, run.TrainEnd, run.TestDate,
		run.Symbols, run.SuccessCount, run.DirectionAccuracy, run.AvgPctError, run.Snapshot, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save backtest run: %w", err)
	}
	return nil
}

// GetByID retrieves one backtest run
func (r *PostgresBacktestRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BacktestRun, error) {
	query := `
		SELECT id, run_date, train_start, train_end, test_date,
			symbols, success_count, direction_accuracy, avg_pct_error, snapshot, created_at
		FROM backtest_runs WHERE id = $1
	`
	run := &models.BacktestRun{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&run.ID, &run.RunDate, &run.TrainStart, &run.TrainEnd, &run.TestDate,
		&run.Symbols, &run.SuccessCount, &run.DirectionAccuracy, &run.AvgPctError, &run.Snapshot, &run.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(errScanBacktestRun, err)
	}
	return run, nil
}

// GetLatest retrieves the most recent backtest runs
func (r *PostgresBacktestRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.BacktestRun, error) {
	query := `
		SELECT id, run_date, train_start, train_end, test_date,
			symbols, success_count, direction_accuracy, avg_pct_error, snapshot, created_at
		FROM backtest_runs ORDER BY run_date DESC LIMIT $1
	`
	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.BacktestRun
	for rows.Next() {
		run := &models.BacktestRun{}
		if err := rows.Scan(
			&run.ID, &run.RunDate, &run.TrainStart, &run.TrainEnd, &run.TestDate,
			&run.Symbols, &run.SuccessCount, &run.DirectionAccuracy, &run.AvgPctError, &run.Snapshot, &run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf(errScanBacktestRun, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
