package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsArticle represents a single news item fetched for a symbol
type NewsArticle struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Symbol      string    `db:"symbol" json:"symbol" validate:"required"`
	Title       string    `db:"title" json:"title" validate:"required"`
	Link        string    `db:"link" json:"link"`
	Source      string    `db:"source" json:"source"`
	Summary     string    `db:"summary" json:"summary"`
	PublishedAt time.Time `db:"published_at" json:"published"`
	FetchedAt   time.Time `db:"fetched_at" json:"timestamp"`
}

// SortArticlesByDate orders articles newest first, in place
func SortArticlesByDate(articles []NewsArticle) {
	for i := 0; i < len(articles)-1; i++ {
		for j := i + 1; j < len(articles); j++ {
			if articles[j].PublishedAt.After(articles[i].PublishedAt) {
				articles[i], articles[j] = articles[j], articles[i]
			}
		}
	}
}
