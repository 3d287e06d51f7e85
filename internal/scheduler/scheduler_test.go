package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/models"
)

type fakeFetcher struct {
	calls      int
	failSymbol string
}

func (f *fakeFetcher) FetchRecent(_ context.Context, symbol string, asOf time.Time) ([]models.NewsArticle, error) {
	f.calls++
	if symbol == f.failSymbol {
		return nil, errors.New("feed unavailable")
	}
	return []models.NewsArticle{
		{ID: uuid.New(), Symbol: symbol, Title: "headline", PublishedAt: asOf, FetchedAt: asOf},
	}, nil
}

type fakeStore struct {
	inserted int
	deletes  int
	cutoff   time.Time
}

func (f *fakeStore) InsertBatch(_ context.Context, articles []models.NewsArticle) error {
	f.inserted += len(articles)
	return nil
}

func (f *fakeStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.deletes++
	f.cutoff = cutoff
	return 1, nil
}

func newTestScheduler(fetcher *fakeFetcher, store *fakeStore) *Scheduler {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewScheduler(fetcher, store, log)
}

func TestRefreshNews(t *testing.T) {
	fetcher := &fakeFetcher{}
	store := &fakeStore{}
	s := newTestScheduler(fetcher, store)

	s.refreshNews(context.Background(), []string{"AAPL", "MSFT"}, 3)

	if fetcher.calls != 2 {
		t.Errorf("fetch calls: got %d, want 2", fetcher.calls)
	}
	if store.inserted != 2 {
		t.Errorf("inserted: got %d, want 2", store.inserted)
	}
	if store.deletes != 1 {
		t.Errorf("deletes: got %d, want 1", store.deletes)
	}

	wantCutoff := time.Now().UTC().AddDate(0, 0, -3)
	if store.cutoff.Before(wantCutoff.Add(-time.Minute)) || store.cutoff.After(wantCutoff.Add(time.Minute)) {
		t.Errorf("cutoff: got %v, want about %v", store.cutoff, wantCutoff)
	}
}

func TestRefreshNewsSourceFailure(t *testing.T) {
	fetcher := &fakeFetcher{failSymbol: "AAPL"}
	store := &fakeStore{}
	s := newTestScheduler(fetcher, store)

	s.refreshNews(context.Background(), []string{"AAPL", "MSFT"}, 3)

	// The failing symbol is skipped, the rest still lands.
	if store.inserted != 1 {
		t.Errorf("inserted: got %d, want 1", store.inserted)
	}
	if store.deletes != 1 {
		t.Errorf("deletes: got %d, want 1", store.deletes)
	}
}

func TestScheduleNewsRefreshValidation(t *testing.T) {
	s := newTestScheduler(&fakeFetcher{}, &fakeStore{})

	if err := s.ScheduleNewsRefresh("0 6 * * *", nil, 3); err == nil {
		t.Error("expected error without symbols")
	}
	if err := s.ScheduleNewsRefresh("not a cron", []string{"AAPL"}, 3); err == nil {
		t.Error("expected error for bad cron expression")
	}
	if err := s.ScheduleNewsRefresh("0 6 * * *", []string{"AAPL"}, 3); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler(&fakeFetcher{}, &fakeStore{})

	if err := s.Start(); err == nil {
		t.Error("expected error with no jobs scheduled")
	}

	if err := s.ScheduleNewsRefresh("0 6 * * *", []string{"AAPL"}, 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.IsRunning() {
		t.Error("expected scheduler running")
	}
	if err := s.Start(); err == nil {
		t.Error("expected error on double start")
	}
	if s.GetNextRun().IsZero() {
		t.Error("expected a next run time")
	}

	if err := s.Stop(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.IsRunning() {
		t.Error("expected scheduler stopped")
	}
}
