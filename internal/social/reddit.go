package social

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/marketdata"
	"github.com/yourusername/stockcast/internal/models"
)

const (
	redditSourceName = "reddit"
	defaultBaseURL   = "https://www.reddit.com"
	defaultUserAgent = "stockcast/1.0"
)

// RedditClient fetches discussion posts from Reddit's public JSON search
type RedditClient struct {
	httpClient *marketdata.RateLimitedHTTPClient
	baseURL    string
	userAgent  string
	logger     *logrus.Logger
}

// redditListing mirrors the envelope of a listing response
type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	Author     string  `json:"author"`
	CreatedUTC float64 `json:"created_utc"`
	Selftext   string  `json:"selftext"`
}

// NewRedditClient creates a Reddit search client. An empty baseURL or
// userAgent falls back to the public API defaults.
func NewRedditClient(httpClient *marketdata.RateLimitedHTTPClient, baseURL, userAgent string, logger *logrus.Logger) *RedditClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &RedditClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
	}
}

// Name returns the name of the social source
func (c *RedditClient) Name() string {
	return redditSourceName
}

// FetchPosts retrieves recent discussion posts mentioning the symbol,
// scored for sentiment. Reddit blocks default Go user agents, hence the
// explicit header.
func (c *RedditClient) FetchPosts(ctx context.Context, symbol string, limit int) ([]*models.SocialPost, error) {
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}
	if limit <= 0 {
		limit = 10
	}

	query := url.Values{}
	query.Set("q", symbol)
	query.Set("sort", "new")
	query.Set("limit", fmt.Sprintf("%d", limit))
	query.Set("restrict_sr", "false")

	endpoint := fmt.Sprintf("%s/search.json?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, marketdata.NewSourceError(redditSourceName, marketdata.ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, marketdata.NewSourceError(redditSourceName, marketdata.ErrCodeNetworkError, "failed to fetch posts", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, marketdata.NewSourceError(redditSourceName, marketdata.ErrCodeRateLimitExceeded, "rate limit exceeded", marketdata.ErrRateLimitExceeded)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, marketdata.NewSourceError(redditSourceName, marketdata.ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, marketdata.NewSourceError(redditSourceName, marketdata.ErrCodeInvalidData, "failed to parse response", err)
	}

	posts := make([]*models.SocialPost, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		raw := child.Data
		if raw.Title == "" {
			continue
		}
		post := &models.SocialPost{
			Title:     raw.Title,
			URL:       c.baseURL + raw.Permalink,
			Score:     raw.Score,
			Author:    raw.Author,
			CreatedAt: int64(raw.CreatedUTC),
			Body:      raw.Selftext,
			Sentiment: ScoreText(raw.Title + " " + raw.Selftext),
		}
		posts = append(posts, post)
	}

	c.logger.WithFields(logrus.Fields{
		"symbol": symbol,
		"posts":  len(posts),
	}).Debug("Fetched discussion posts")

	return posts, nil
}

// FetchSocialData retrieves posts and their aggregate sentiment. Any
// fetch failure degrades to empty data so the prediction pipeline can
// continue without social context.
func (c *RedditClient) FetchSocialData(ctx context.Context, symbol string, limit int) *models.SocialData {
	posts, err := c.FetchPosts(ctx, symbol, limit)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"symbol": symbol,
			"error":  err.Error(),
		}).Warn("Social fetch failed, degrading to empty sentiment")
		return models.EmptySocialData()
	}

	return &models.SocialData{
		Posts:   posts,
		Summary: Summarize(posts),
	}
}
