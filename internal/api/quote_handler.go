package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/stockcast/internal/quotes"
)

// QuoteProvider serves the latest streamed price per symbol.
type QuoteProvider interface {
	LastPrice(symbol string) (quotes.Quote, bool)
	IsConnected() bool
	Subscribe(symbol string) error
}

// QuoteHandler exposes live quote lookups
type QuoteHandler struct {
	provider QuoteProvider
}

// NewQuoteHandler creates a new quote handler. The provider may be nil when
// no stream is configured.
func NewQuoteHandler(provider QuoteProvider) *QuoteHandler {
	return &QuoteHandler{provider: provider}
}

// Get handles GET /api/v1/quote/:symbol
func (h *QuoteHandler) Get(c *gin.Context) {
	if h.provider == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: codeNotFound, Message: "quote streaming is not configured"},
		})
		return
	}

	symbol := c.Param("symbol")
	quote, ok := h.provider.LastPrice(symbol)
	if !ok {
		// Subscribe so a later request can be served.
		if err := h.provider.Subscribe(symbol); err != nil {
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error: ErrorDetail{Code: codeUpstreamError, Message: err.Error()},
			})
			return
		}
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{Code: codeNotFound, Message: "no quote received yet for " + symbol},
		})
		return
	}

	c.JSON(http.StatusOK, QuoteResponse{
		Symbol:    quote.Symbol,
		Price:     quote.Price,
		Volume:    quote.Volume,
		Timestamp: quote.At.Format(time.RFC3339),
		Connected: h.provider.IsConnected(),
	})
}
