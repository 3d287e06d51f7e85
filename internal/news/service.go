// Package news aggregates company headlines from multiple providers.
package news

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/metrics"
	"github.com/yourusername/stockcast/internal/models"
)

// Source defines the interface for a single news provider
type Source interface {
	// FetchArticles retrieves articles for a symbol within [from, to]
	FetchArticles(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsArticle, error)

	// Name returns the name of the news source
	Name() string
}

// Service aggregates articles across sources with a recency window and cap
type Service struct {
	sources       []Source
	maxArticles   int
	retentionDays int
	logger        *logrus.Logger
}

// NewService creates a news aggregation service
func NewService(sources []Source, maxArticles, retentionDays int, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if maxArticles <= 0 {
		maxArticles = 30
	}
	if retentionDays <= 0 {
		retentionDays = 3
	}
	return &Service{
		sources:       sources,
		maxArticles:   maxArticles,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// FetchRecent retrieves articles published within the retention window
// ending at asOf. Articles are de-duplicated by title, ordered newest
// first, and capped at the configured maximum. A source failure is logged
// and skipped so one dead provider does not empty the whole step.
func (s *Service) FetchRecent(ctx context.Context, symbol string, asOf time.Time) ([]models.NewsArticle, error) {
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	from := asOf.AddDate(0, 0, -s.retentionDays)

	var collected []models.NewsArticle
	seenTitles := make(map[string]bool)

	for _, source := range s.sources {
		articles, err := source.FetchArticles(ctx, symbol, from, asOf)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"symbol": symbol,
				"source": source.Name(),
				"error":  err.Error(),
			}).Warn("News source failed, skipping")
			continue
		}

		metrics.RecordNewsArticlesFetched(source.Name(), len(articles))

		for _, article := range articles {
			if seenTitles[article.Title] {
				continue
			}
			seenTitles[article.Title] = true
			collected = append(collected, article)
		}
	}

	models.SortArticlesByDate(collected)

	if len(collected) > s.maxArticles {
		collected = collected[:s.maxArticles]
	}

	s.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"articles": len(collected),
		"from":     from.Format("2006-01-02"),
		"to":       asOf.Format("2006-01-02"),
	}).Info("Aggregated recent news")

	return collected, nil
}
