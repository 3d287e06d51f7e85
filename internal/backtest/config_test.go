package backtest

import (
	"testing"

	"github.com/yourusername/stockcast/internal/config"
)

func TestFromConfigDefaults(t *testing.T) {
	cfg := &config.Config{}
	cfg.Backtest.Symbols = []string{"AAPL", "MSFT"}

	btConfig, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if btConfig.OutputDir != DefaultOutputDir {
		t.Errorf("output dir: got %q, want %q", btConfig.OutputDir, DefaultOutputDir)
	}
	if btConfig.TrainingWindowDays != DefaultTrainingWindowDays {
		t.Errorf("training window: got %d, want %d", btConfig.TrainingWindowDays, DefaultTrainingWindowDays)
	}
}

func TestFromConfigNoSymbols(t *testing.T) {
	if _, err := FromConfig(&config.Config{}); err == nil {
		t.Fatal("expected error without symbols")
	}
}

func TestWindowsAt(t *testing.T) {
	cfg := Config{TrainingWindowDays: 21}
	windows := cfg.WindowsAt(fixedNow)

	if got := windows.TrainStart.Format("2006-01-02"); got != "2026-08-09" {
		t.Errorf("train start: got %s, want 2026-08-09", got)
	}
	if got := windows.TrainEnd.Format("2006-01-02"); got != "2026-08-28" {
		t.Errorf("train end: got %s, want 2026-08-28", got)
	}
	if got := windows.TestDate.Format("2006-01-02"); got != "2026-08-29" {
		t.Errorf("test date: got %s, want 2026-08-29", got)
	}
}
