package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Section names recognised in a model response. Every PredictionResult carries
// all of them; a section the model omitted maps to the empty string.
const (
	SectionSummary    = "summary"
	SectionPrices     = "price_analysis"
	SectionNews       = "news_impact"
	SectionSentiment  = "sentiment_analysis"
	SectionForecast   = "prediction"
	SectionConfidence = "confidence"
	SectionRisks      = "risk_factors"
)

// SectionNames lists all recognised sections in report order
func SectionNames() []string {
	return []string{
		SectionSummary,
		SectionPrices,
		SectionNews,
		SectionSentiment,
		SectionForecast,
		SectionConfidence,
		SectionRisks,
	}
}

// PredictionResult represents a generated prediction for one symbol
type PredictionResult struct {
	Symbol      string            `json:"symbol"`
	UserQuery   string            `json:"user_query"`
	Text        string            `json:"prediction"`
	Sections    map[string]string `json:"sections"`
	TargetPrice *decimal.Decimal  `json:"target_price,omitempty"`
	GeneratedAt time.Time         `json:"timestamp"`
}

// HasTargetPrice reports whether a usable numeric target was extracted
func (p *PredictionResult) HasTargetPrice() bool {
	return p != nil && p.TargetPrice != nil
}
