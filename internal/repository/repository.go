package repository

import (
	"fmt"

	"github.com/yourusername/stockcast/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Price       PriceRepository
	News        NewsRepository
	BacktestRun BacktestRunRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Price:       NewPostgresPriceRepository(db),
		News:        NewPostgresNewsRepository(db),
		BacktestRun: NewPostgresBacktestRunRepository(db),
	}, nil
}
