package marketdata

import (
	"context"
	"errors"
	"time"

	"github.com/yourusername/stockcast/internal/models"
)

// PriceSource defines the interface for fetching daily price history from external providers
type PriceSource interface {
	// FetchDailyPrices retrieves the daily close history for a symbol
	FetchDailyPrices(ctx context.Context, symbol string) (*models.PriceSeries, error)

	// FetchWindow retrieves daily closes within the specified date range
	FetchWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error)

	// Name returns the name of the price source
	Name() string
}

// SourceError represents errors from price source operations
type SourceError struct {
	Source  string // Price source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// Sentinel errors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNoPriceData       = errors.New("no price data for symbol")
)

// NewSourceError creates a new price source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
