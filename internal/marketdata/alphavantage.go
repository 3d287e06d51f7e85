package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/models"
)

const (
	alphaVantageSourceName = "alpha_vantage"
	dailySeriesFunction    = "TIME_SERIES_DAILY"
	dateLayout             = "2006-01-02"
)

// AlphaVantageClient implements PriceSource for the Alpha Vantage API
type AlphaVantageClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// alphaVantageResponse mirrors the daily time series payload. Throttled
// requests come back as HTTP 200 with a Note or Information field instead
// of data.
type alphaVantageResponse struct {
	ErrorMessage string                     `json:"Error Message"`
	Note         string                     `json:"Note"`
	Information  string                     `json:"Information"`
	DailySeries  map[string]alphaVantageBar `json:"Time Series (Daily)"`
}

type alphaVantageBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// NewAlphaVantageClient creates a new Alpha Vantage API client
func NewAlphaVantageClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, logger *logrus.Logger) *AlphaVantageClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &AlphaVantageClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

// Name returns the name of the price source
func (c *AlphaVantageClient) Name() string {
	return alphaVantageSourceName
}

// FetchDailyPrices retrieves the full daily close history for a symbol
func (c *AlphaVantageClient) FetchDailyPrices(ctx context.Context, symbol string) (*models.PriceSeries, error) {
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	query := url.Values{}
	query.Set("function", dailySeriesFunction)
	query.Set("symbol", symbol)
	query.Set("outputsize", "compact")
	query.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s/query?%s", c.baseURL, query.Encode())

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeNetworkError, "failed to fetch daily prices", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var payload alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}

	if payload.ErrorMessage != "" {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeInvalidData, payload.ErrorMessage, nil)
	}

	// Throttle notices must reach the caller unchanged so backtest error
	// entries record what the provider actually said.
	if payload.Note != "" {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeRateLimitExceeded, payload.Note, ErrRateLimitExceeded)
	}
	if payload.Information != "" {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeRateLimitExceeded, payload.Information, ErrRateLimitExceeded)
	}

	if len(payload.DailySeries) == 0 {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeNotFound, "no daily series for "+symbol, ErrNoPriceData)
	}

	series, err := c.buildSeries(symbol, payload.DailySeries)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"points": len(series.Points),
	}).Debug("Fetched daily prices")

	return series, nil
}

// FetchWindow retrieves daily closes within [start, end] inclusive
func (c *AlphaVantageClient) FetchWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error) {
	series, err := c.FetchDailyPrices(ctx, symbol)
	if err != nil {
		return nil, err
	}

	windowed := series.Filter(start, end)
	if len(windowed.Points) == 0 {
		return nil, NewSourceError(alphaVantageSourceName, ErrCodeNotFound,
			fmt.Sprintf("no prices for %s between %s and %s", symbol, start.Format(dateLayout), end.Format(dateLayout)), ErrNoPriceData)
	}
	return windowed, nil
}

// buildSeries converts the provider's date-keyed map into an ordered series
func (c *AlphaVantageClient) buildSeries(symbol string, bars map[string]alphaVantageBar) (*models.PriceSeries, error) {
	series := &models.PriceSeries{Symbol: symbol}

	for dateStr, bar := range bars {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, NewSourceError(alphaVantageSourceName, ErrCodeInvalidData, "invalid date "+dateStr, err)
		}

		closePrice, err := strconv.ParseFloat(bar.Close, 64)
		if err != nil {
			return nil, NewSourceError(alphaVantageSourceName, ErrCodeInvalidData, "invalid close price "+bar.Close, err)
		}

		volume, err := strconv.ParseInt(bar.Volume, 10, 64)
		if err != nil {
			volume = 0
		}

		series.Points = append(series.Points, models.PricePoint{
			Date:   date,
			Close:  closePrice,
			Volume: volume,
		})
	}

	sort.Slice(series.Points, func(i, j int) bool {
		return series.Points[i].Date.Before(series.Points[j].Date)
	})

	return series, nil
}
