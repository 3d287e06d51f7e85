package social

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourusername/stockcast/internal/marketdata"
	"github.com/yourusername/stockcast/internal/models"
)

func newTestHTTPClient() *marketdata.RateLimitedHTTPClient {
	return marketdata.NewRateLimitedHTTPClient(marketdata.HTTPClientConfig{
		Timeout:           5 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      10 * time.Millisecond,
		RateLimit:         100,
		CircuitBreakerMax: 5,
	}, nil)
}

// TestScoreTextPositive tests polarity for bullish text
func TestScoreTextPositive(t *testing.T) {
	score := ScoreText("Very bullish on this stock, strong growth and a rally coming")

	if score.Polarity <= 0 {
		t.Errorf("expected positive polarity, got %f", score.Polarity)
	}
	if score.Subjectivity <= 0 {
		t.Errorf("expected non-zero subjectivity, got %f", score.Subjectivity)
	}
}

// TestScoreTextNegative tests polarity for bearish text
func TestScoreTextNegative(t *testing.T) {
	score := ScoreText("Terrible earnings miss, expecting a crash and more losses")

	if score.Polarity >= 0 {
		t.Errorf("expected negative polarity, got %f", score.Polarity)
	}
}

// TestScoreTextNeutral tests neutral and empty inputs
func TestScoreTextNeutral(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"no lexicon hits", "The meeting is scheduled for Tuesday at noon"},
		{"punctuation only", "!!! ... ???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreText(tt.text)
			if score.Polarity != 0 {
				t.Errorf("expected zero polarity, got %f", score.Polarity)
			}
		})
	}
}

// TestScoreTextBounds tests that scores stay within their ranges
func TestScoreTextBounds(t *testing.T) {
	score := ScoreText("bullish bullish bullish moon moon surge soar rally gains winning")

	if score.Polarity > 1 || score.Polarity < -1 {
		t.Errorf("polarity out of range: %f", score.Polarity)
	}
	if score.Subjectivity > 1 || score.Subjectivity < 0 {
		t.Errorf("subjectivity out of range: %f", score.Subjectivity)
	}
}

// TestSummarize tests aggregate computation over posts and comments
func TestSummarize(t *testing.T) {
	posts := []*models.SocialPost{
		{
			Title:     "Post one",
			Sentiment: models.SentimentScore{Polarity: 0.5, Subjectivity: 0.4},
			Comments: []models.SocialComment{
				{Text: "agree", Sentiment: models.SentimentScore{Polarity: 0.6, Subjectivity: 0.2}},
				{Text: "disagree", Sentiment: models.SentimentScore{Polarity: -0.2, Subjectivity: 0.6}},
			},
		},
		{
			Title:     "Post two",
			Sentiment: models.SentimentScore{Polarity: -0.1, Subjectivity: 0.2},
		},
	}

	summary := Summarize(posts)

	if summary.PostCount != 2 {
		t.Errorf("expected 2 posts, got %d", summary.PostCount)
	}
	if summary.CommentCount != 2 {
		t.Errorf("expected 2 comments, got %d", summary.CommentCount)
	}

	if diff := summary.AveragePostPolarity - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected average post polarity 0.2, got %f", summary.AveragePostPolarity)
	}
	if diff := summary.AvgCommentPolarity - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("expected average comment polarity 0.2, got %f", summary.AvgCommentPolarity)
	}
}

// TestSummarizeEmpty tests the zero posts case
func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	if summary.PostCount != 0 || summary.CommentCount != 0 {
		t.Errorf("expected empty summary, got %+v", summary)
	}
	if summary.AveragePostPolarity != 0 {
		t.Errorf("expected zero polarity for no posts, got %f", summary.AveragePostPolarity)
	}
}

// TestRedditFetchPosts tests listing parsing
func TestRedditFetchPosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "stockcast-test/1.0" {
			t.Errorf("expected custom user agent, got %s", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": {
				"children": [
					{"data": {"title": "AAPL to the moon", "permalink": "/r/stocks/1", "score": 42, "author": "trader1", "created_utc": 1756300000, "selftext": "bullish"}},
					{"data": {"title": "", "permalink": "/r/stocks/2", "score": 1, "author": "ghost", "created_utc": 1756300001, "selftext": ""}}
				]
			}
		}`))
	}))
	defer server.Close()

	client := NewRedditClient(newTestHTTPClient(), server.URL, "stockcast-test/1.0", nil)

	posts, err := client.FetchPosts(context.Background(), "AAPL", 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(posts) != 1 {
		t.Fatalf("expected 1 post (empty titles dropped), got %d", len(posts))
	}

	if posts[0].Title != "AAPL to the moon" {
		t.Errorf("unexpected title: %s", posts[0].Title)
	}
	if posts[0].Sentiment.Polarity <= 0 {
		t.Errorf("expected positive sentiment for bullish post, got %f", posts[0].Sentiment.Polarity)
	}
}

// TestRedditFetchSocialDataDegrades tests the empty fallback on failure
func TestRedditFetchSocialDataDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewRedditClient(newTestHTTPClient(), server.URL, "stockcast-test/1.0", nil)

	data := client.FetchSocialData(context.Background(), "AAPL", 10)

	if data == nil {
		t.Fatal("expected non-nil social data")
	}
	if len(data.Posts) != 0 {
		t.Errorf("expected no posts in degraded data, got %d", len(data.Posts))
	}
	if data.Summary.PostCount != 0 {
		t.Errorf("expected empty summary, got %+v", data.Summary)
	}
}
