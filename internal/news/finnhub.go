package news

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/marketdata"
	"github.com/yourusername/stockcast/internal/models"
)

const finnhubSourceName = "finnhub"

// FinnhubClient fetches company news from the Finnhub API
type FinnhubClient struct {
	httpClient *marketdata.RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// finnhubArticle mirrors one entry of the company-news payload
type finnhubArticle struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// NewFinnhubClient creates a new Finnhub company news client
func NewFinnhubClient(httpClient *marketdata.RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *FinnhubClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &FinnhubClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Name returns the name of the news source
func (c *FinnhubClient) Name() string {
	return finnhubSourceName
}

// FetchArticles retrieves company news for a symbol within [from, to]
func (c *FinnhubClient) FetchArticles(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsArticle, error) {
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	query := url.Values{}
	query.Set("symbol", symbol)
	query.Set("from", from.Format("2006-01-02"))
	query.Set("to", to.Format("2006-01-02"))
	query.Set("token", c.apiKey)

	endpoint := fmt.Sprintf("%s/company-news?%s", c.baseURL, query.Encode())

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, marketdata.NewSourceError(finnhubSourceName, marketdata.ErrCodeNetworkError, "failed to fetch company news", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, marketdata.NewSourceError(finnhubSourceName, marketdata.ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, marketdata.NewSourceError(finnhubSourceName, marketdata.ErrCodeRateLimitExceeded, "rate limit exceeded", marketdata.ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, marketdata.NewSourceError(finnhubSourceName, marketdata.ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var raw []finnhubArticle
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, marketdata.NewSourceError(finnhubSourceName, marketdata.ErrCodeInvalidData, "failed to parse response", err)
	}

	now := time.Now().UTC()
	articles := make([]models.NewsArticle, 0, len(raw))
	for _, item := range raw {
		if item.Headline == "" {
			continue
		}
		articles = append(articles, models.NewsArticle{
			ID:          uuid.New(),
			Symbol:      symbol,
			Title:       item.Headline,
			Link:        item.URL,
			Source:      item.Source,
			Summary:     item.Summary,
			PublishedAt: time.Unix(item.Datetime, 0).UTC(),
			FetchedAt:   now,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"articles": len(articles),
	}).Debug("Fetched company news")

	return articles, nil
}
