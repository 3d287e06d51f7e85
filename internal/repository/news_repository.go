package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/stockcast/internal/database"
	"github.com/yourusername/stockcast/internal/models"
)

const errScanNewsArticle = "failed to scan news article: %w"

// PostgresNewsRepository implements NewsRepository for PostgreSQL
type PostgresNewsRepository struct {
	db *database.DB
}

// NewPostgresNewsRepository creates a new news repository
func NewPostgresNewsRepository(db *database.DB) NewsRepository {
	return &PostgresNewsRepository{db: db}
}

// InsertBatch stores fetched articles, ignoring duplicates by id
func (r *PostgresNewsRepository) InsertBatch(ctx context.Context, articles []models.NewsArticle) error {
	if len(articles) == 0 {
		return nil
	}

	query := `
		INSERT INTO news_articles (id, symbol, title, link, source, summary, published_at, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, a := range articles {
			_, err := r.db.GetPool().Exec(txCtx, query,
				a.ID, a.Symbol, a.Title, a.Link, a.Source, a.Summary, a.PublishedAt, a.FetchedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert news article: %w", err)
			}
		}
		return nil
	})
}

// GetBySymbol retrieves articles for a symbol published since the cutoff,
// newest first
func (r *PostgresNewsRepository) GetBySymbol(ctx context.Context, symbol string, since time.Time, limit int) ([]models.NewsArticle, error) {
	query := `
		SELECT id, symbol, title, link, source, summary, published_at, fetched_at
		FROM news_articles
		WHERE symbol = $1 AND published_at >= $2
		ORDER BY published_at DESC
		LIMIT $3
	`
	rows, err := r.db.GetPool().Query(ctx, query, symbol, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query news articles: %w", err)
	}
	defer rows.Close()

	var articles []models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Title, &a.Link, &a.Source, &a.Summary, &a.PublishedAt, &a.FetchedAt); err != nil {
			return nil, fmt.Errorf(errScanNewsArticle, err)
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// DeleteOlderThan removes articles published before the cutoff and returns
// the number deleted
func (r *PostgresNewsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx, "DELETE FROM news_articles WHERE published_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old news articles: %w", err)
	}
	return tag.RowsAffected(), nil
}
