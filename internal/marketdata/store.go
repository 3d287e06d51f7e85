package marketdata

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/models"
)

// PriceStore persists fetched daily closes and serves stored windows.
type PriceStore interface {
	UpsertSeries(ctx context.Context, series *models.PriceSeries) error
	GetWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error)
}

// StoredSource writes every fetched series through to a price store and
// serves the stored window when the upstream provider is unavailable.
type StoredSource struct {
	upstream PriceSource
	store    PriceStore
	logger   *logrus.Logger
}

// NewStoredSource wraps a price source with store persistence.
func NewStoredSource(upstream PriceSource, store PriceStore, logger *logrus.Logger) *StoredSource {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &StoredSource{upstream: upstream, store: store, logger: logger}
}

// Name returns the upstream source name.
func (s *StoredSource) Name() string {
	return s.upstream.Name()
}

// FetchDailyPrices fetches the full daily history and persists it.
func (s *StoredSource) FetchDailyPrices(ctx context.Context, symbol string) (*models.PriceSeries, error) {
	series, err := s.upstream.FetchDailyPrices(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, series)
	return series, nil
}

// FetchWindow fetches a date window and persists it. When the provider
// fails, a non-empty stored window is served instead.
func (s *StoredSource) FetchWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	series, err := s.upstream.FetchWindow(ctx, symbol, start, end)
	if err != nil {
		stored, storeErr := s.store.GetWindow(ctx, symbol, start, end)
		if storeErr == nil && stored != nil && len(stored.Points) > 0 {
			s.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"source": s.upstream.Name(),
				"error":  err.Error(),
			}).Warn("Price provider unavailable, serving stored prices")
			return stored, nil
		}
		return nil, err
	}
	s.persist(ctx, series)
	return series, nil
}

func (s *StoredSource) persist(ctx context.Context, series *models.PriceSeries) {
	if err := s.store.UpsertSeries(ctx, series); err != nil {
		s.logger.WithError(err).WithField("symbol", series.Symbol).Warn("Failed to persist price series")
	}
}
