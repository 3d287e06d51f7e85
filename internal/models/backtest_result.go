package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// BacktestRun represents a persisted backtest run
type BacktestRun struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	RunDate           time.Time       `db:"run_date" json:"run_date"`
	TrainStart        time.Time       `db:"train_start" json:"train_start"`
	TrainEnd          time.Time       `db:"train_end" json:"train_end"`
	TestDate          time.Time       `db:"test_date" json:"test_date"`
	Symbols           []string        `db:"symbols" json:"symbols"`
	SuccessCount      int             `db:"success_count" json:"success_count"`
	DirectionAccuracy float64         `db:"direction_accuracy" json:"direction_accuracy"`
	AvgPctError       float64         `db:"avg_pct_error" json:"avg_pct_error"`
	Snapshot          json.RawMessage `db:"snapshot" json:"snapshot"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}
