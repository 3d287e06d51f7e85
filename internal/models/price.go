package models

import (
	"time"
)

// PricePoint represents one trading day's closing price for a symbol
type PricePoint struct {
	Date   time.Time `db:"date" json:"date" validate:"required"`
	Close  float64   `db:"close" json:"close" validate:"required,gt=0"`
	Volume int64     `db:"volume" json:"volume" validate:"gte=0"`
}

// PriceSeries is an ordered sequence of daily prices (oldest first)
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Last returns the most recent price point and whether one exists
func (s *PriceSeries) Last() (PricePoint, bool) {
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Filter returns a copy containing only the points within [start, end] inclusive
func (s *PriceSeries) Filter(start, end time.Time) *PriceSeries {
	filtered := &PriceSeries{Symbol: s.Symbol}
	for _, p := range s.Points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		filtered.Points = append(filtered.Points, p)
	}
	return filtered
}

// On returns the price point for the given calendar day, or the closest
// available day when the exact date is missing (markets close on weekends
// and holidays).
func (s *PriceSeries) On(date time.Time) (PricePoint, bool) {
	day := date.Truncate(24 * time.Hour)
	for _, p := range s.Points {
		if p.Date.Truncate(24 * time.Hour).Equal(day) {
			return p, true
		}
	}
	if len(s.Points) == 0 {
		return PricePoint{}, false
	}
	closest := s.Points[0]
	for _, p := range s.Points[1:] {
		if absDuration(p.Date.Sub(date)) < absDuration(closest.Date.Sub(date)) {
			closest = p
		}
	}
	return closest, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
