package backtest

import (
	"fmt"
	"time"

	"github.com/yourusername/stockcast/internal/config"
)

// Default run parameters, applied when the loaded configuration leaves
// them unset.
const (
	DefaultTrainingWindowDays = 21
	DefaultOutputDir          = "backtest_reports"
)

// Config controls a backtest run.
type Config struct {
	Symbols            []string
	OutputDir          string
	TrainingWindowDays int
}

// FromConfig builds a backtest Config from the loaded application config.
func FromConfig(cfg *config.Config) (Config, error) {
	if len(cfg.Backtest.Symbols) == 0 {
		return Config{}, fmt.Errorf("backtest requires at least one symbol")
	}

	btConfig := Config{
		Symbols:            cfg.Backtest.Symbols,
		OutputDir:          cfg.Backtest.OutputDir,
		TrainingWindowDays: cfg.Backtest.TrainingWindowDays,
	}
	if btConfig.OutputDir == "" {
		btConfig.OutputDir = DefaultOutputDir
	}
	if btConfig.TrainingWindowDays <= 0 {
		btConfig.TrainingWindowDays = DefaultTrainingWindowDays
	}
	return btConfig, nil
}

// Windows holds the date boundaries for one run.
type Windows struct {
	TrainStart time.Time
	TrainEnd   time.Time
	TestDate   time.Time
}

// WindowsAt derives the training and test windows from the run time.
// Training ends two days before the run so the test day's close is already
// published when the run evaluates it.
func (c Config) WindowsAt(now time.Time) Windows {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Windows{
		TrainStart: day.AddDate(0, 0, -c.TrainingWindowDays),
		TrainEnd:   day.AddDate(0, 0, -2),
		TestDate:   day.AddDate(0, 0, -1),
	}
}
