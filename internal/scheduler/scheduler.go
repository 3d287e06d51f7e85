package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/models"
)

// NewsFetcher fetches recent articles for one symbol.
type NewsFetcher interface {
	FetchRecent(ctx context.Context, symbol string, asOf time.Time) ([]models.NewsArticle, error)
}

// NewsStore persists fetched articles and enforces retention.
type NewsStore interface {
	InsertBatch(ctx context.Context, articles []models.NewsArticle) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Scheduler manages the scheduled news refresh jobs
type Scheduler struct {
	cron            *cron.Cron
	news            NewsFetcher
	store           NewsStore
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(news NewsFetcher, store NewsStore, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		news:            news,
		store:           store,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleNewsRefresh schedules a recurring news fetch for the given symbols.
// Each run also prunes articles older than the retention window.
func (s *Scheduler) ScheduleNewsRefresh(cronExpression string, symbols []string, retentionDays int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(symbols) == 0 {
		return fmt.Errorf("news refresh requires at least one symbol")
	}
	if retentionDays <= 0 {
		retentionDays = 3
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.refreshNews(ctx, symbols, retentionDays)
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":    cronExpression,
		"symbols": symbols,
	}).Info("Scheduled news refresh job")

	return nil
}

// refreshNews fetches and stores articles for every symbol, then prunes old
// rows. A failing symbol is logged and skipped.
func (s *Scheduler) refreshNews(ctx context.Context, symbols []string, retentionDays int) {
	now := time.Now().UTC()

	for _, symbol := range symbols {
		articles, err := s.news.FetchRecent(ctx, symbol, now)
		if err != nil {
			s.logger.WithField("symbol", symbol).WithError(err).Error("Scheduled news fetch failed")
			continue
		}
		if err := s.store.InsertBatch(ctx, articles); err != nil {
			s.logger.WithField("symbol", symbol).WithError(err).Error("Failed to store fetched articles")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"symbol":   symbol,
			"articles": len(articles),
		}).Info("News refresh completed")
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("News retention cleanup failed")
		return
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("Pruned expired news articles")
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}
	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}
	return entries
}
