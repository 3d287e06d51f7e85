package news

import (
	"context"
	"encoding/xml"
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

const googleNewsSourceName = "google_news"

// GoogleNewsClient fetches headlines from the Google News RSS search feed
type GoogleNewsClient struct {
	httpClient *marketdata.RateLimitedHTTPClient
	feedURL    string
	logger     *logrus.Logger
}

// rssFeed mirrors the subset of the RSS document we care about
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	PubDate     string    `xml:"pubDate"`
	Description string    `xml:"description"`
	Source      rssSource `xml:"source"`
}

type rssSource struct {
	Name string `xml:",chardata"`
}

// NewGoogleNewsClient creates a new Google News RSS client
func NewGoogleNewsClient(httpClient *marketdata.RateLimitedHTTPClient, feedURL string, logger *logrus.Logger) *GoogleNewsClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &GoogleNewsClient{
		httpClient: httpClient,
		feedURL:    feedURL,
		logger:     logger,
	}
}

// Name returns the name of the news source
func (c *GoogleNewsClient) Name() string {
	return googleNewsSourceName
}

// FetchArticles retrieves recent headlines mentioning the symbol. The feed
// carries no date filter so results are filtered locally to [from, to].
func (c *GoogleNewsClient) FetchArticles(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsArticle, error) {
	if symbol == "" {
		return nil, models.ErrSymbolRequired
	}

	query := url.Values{}
	query.Set("q", symbol+" stock")

	endpoint := fmt.Sprintf("%s?%s", c.feedURL, query.Encode())

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return nil, marketdata.NewSourceError(googleNewsSourceName, marketdata.ErrCodeNetworkError, "failed to fetch RSS feed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, marketdata.NewSourceError(googleNewsSourceName, marketdata.ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, marketdata.NewSourceError(googleNewsSourceName, marketdata.ErrCodeInvalidData, "failed to parse RSS feed", err)
	}

	now := time.Now().UTC()
	articles := make([]models.NewsArticle, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Title == "" {
			continue
		}

		published := parsePubDate(item.PubDate)
		if published.Before(from) || published.After(to) {
			continue
		}

		source := item.Source.Name
		if source == "" {
			source = googleNewsSourceName
		}

		articles = append(articles, models.NewsArticle{
			ID:          uuid.New(),
			Symbol:      symbol,
			Title:       item.Title,
			Link:        item.Link,
			Source:      source,
			Summary:     item.Description,
			PublishedAt: published,
			FetchedAt:   now,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"articles": len(articles),
	}).Debug("Fetched RSS headlines")

	return articles, nil
}

// parsePubDate handles the date formats seen in Google News feeds. Items
// with unparseable dates get the zero time and fall outside any window.
func parsePubDate(value string) time.Time {
	layouts := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}
