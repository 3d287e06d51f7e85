package llm

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/stockcast/internal/models"
)

// PromptData carries everything the prediction prompt is built from
type PromptData struct {
	Symbol    string
	UserQuery string
	Prices    *models.PriceSeries
	Articles  []models.NewsArticle
	Social    *models.SocialData
	NewsLimit int
	Now       time.Time
}

// BuildPredictionPrompt assembles the analysis prompt from the three data
// steps. The response format block drives the section parser, so its labels
// must stay in sync with the parser's section names.
func BuildPredictionPrompt(data PromptData) string {
	newsLimit := data.NewsLimit
	if newsLimit <= 0 {
		newsLimit = 10
	}
	now := data.Now
	if now.IsZero() {
		now = time.Now()
	}

	var b strings.Builder

	fmt.Fprintf(&b, "You are FinanceGPT, a specialized stock market analysis assistant.\n")
	fmt.Fprintf(&b, "Today is %s.\n\n", now.Format("January 2, 2006"))

	fmt.Fprintf(&b, "TASK: Analyze the provided data for %s and answer the following user query: %q\n\n", data.Symbol, data.UserQuery)

	b.WriteString("I'll provide you with three key sources of information:\n")
	b.WriteString("1. Historical stock data (prices, volumes, trends)\n")
	fmt.Fprintf(&b, "2. Recent news articles relevant to %s\n", data.Symbol)
	b.WriteString("3. Social media sentiment analysis from Reddit discussions\n\n")

	b.WriteString("===== HISTORICAL DATA =====\n")
	b.WriteString(summarizeHistorical(data.Prices))
	b.WriteString("\n\n===== RECENT NEWS =====\n")
	b.WriteString(summarizeNews(data.Articles, newsLimit))
	b.WriteString("\n\n===== SOCIAL MEDIA SENTIMENT =====\n")
	b.WriteString(summarizeSentiment(data.Social))

	b.WriteString("\n\n===== ANALYSIS INSTRUCTIONS =====\n")
	b.WriteString("1. Analyze the historical price data first - identify key trends, patterns, and anomalies\n")
	b.WriteString("2. Cross-reference price movements with news events - look for correlations\n")
	b.WriteString("3. Consider social media sentiment as a measure of market psychology\n")
	b.WriteString("4. Synthesize all three data sources to form a cohesive analysis\n")
	b.WriteString("5. Address the user's specific query directly\n\n")

	b.WriteString("===== REQUIRED RESPONSE FORMAT =====\n")
	b.WriteString("Respond with the following sections:\n")
	b.WriteString("1. SUMMARY: A 2-3 sentence overall assessment\n")
	b.WriteString("2. PRICE ANALYSIS: Key insights from the price data (with specific numbers)\n")
	b.WriteString("3. NEWS IMPACT: How recent news might affect the stock\n")
	b.WriteString("4. SENTIMENT ANALYSIS: What the social media sentiment indicates\n")
	fmt.Fprintf(&b, "5. PREDICTION: Direct answer to the user's query %q, including a specific target price\n", data.UserQuery)
	b.WriteString("6. CONFIDENCE LEVEL: Your confidence in this prediction (Low/Medium/High) with explanation\n")
	b.WriteString("7. RISK FACTORS: At least 2 events or factors that could invalidate your prediction\n\n")

	fmt.Fprintf(&b, "Keep your analysis professional, nuanced and data-driven. Avoid generic advice and be specific to %s.\n", data.Symbol)

	return b.String()
}

// NextDayQuery builds the question used for one-day-ahead backtests
func NextDayQuery(symbol string, predictionDate time.Time) string {
	return fmt.Sprintf("What will be the price of %s tomorrow based on the data from %s?",
		symbol, predictionDate.Format("2006-01-02"))
}

func summarizeHistorical(series *models.PriceSeries) string {
	if series == nil || len(series.Points) == 0 {
		return "No historical price data available"
	}

	first := series.Points[0]
	last := series.Points[len(series.Points)-1]

	change := 0.0
	if first.Close != 0 {
		change = (last.Close - first.Close) / first.Close * 100
	}

	trend := "downward"
	if change > 0 {
		trend = "upward"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "- Latest Price: $%.2f\n", last.Close)
	fmt.Fprintf(&b, "- Price Change: %.2f%%\n", change)
	fmt.Fprintf(&b, "- Overall Trend: %s\n", trend)
	fmt.Fprintf(&b, "- Time Period: %d trading days\n", len(series.Points))

	b.WriteString("- Daily Closes:\n")
	for _, p := range series.Points {
		fmt.Fprintf(&b, "  %s: $%.2f (volume %d)\n", p.Date.Format("2006-01-02"), p.Close, p.Volume)
	}

	return strings.TrimRight(b.String(), "\n")
}

func summarizeNews(articles []models.NewsArticle, limit int) string {
	if len(articles) == 0 {
		return "No recent news articles available"
	}

	if len(articles) > limit {
		articles = articles[:limit]
	}

	var b strings.Builder
	for _, article := range articles {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n", article.PublishedAt.Format("2006-01-02"), article.Title, article.Source)
		if article.Summary != "" {
			fmt.Fprintf(&b, "  %s\n", article.Summary)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func summarizeSentiment(social *models.SocialData) string {
	if social == nil || len(social.Posts) == 0 {
		return "No social media data available"
	}

	var b strings.Builder
	b.WriteString("Overall Sentiment:\n")
	fmt.Fprintf(&b, "- Posts Analyzed: %d\n", social.Summary.PostCount)
	fmt.Fprintf(&b, "- Average Polarity: %.2f\n", social.Summary.AveragePostPolarity)
	fmt.Fprintf(&b, "- Average Subjectivity: %.2f\n", social.Summary.AveragePostSubjectivity)

	top := make([]*models.SocialPost, len(social.Posts))
	copy(top, social.Posts)
	sort.Slice(top, func(i, j int) bool { return top[i].Score > top[j].Score })
	if len(top) > 3 {
		top = top[:3]
	}

	b.WriteString("\nTop Discussions:\n")
	for _, post := range top {
		fmt.Fprintf(&b, "- %s (Score: %d)\n", post.Title, post.Score)
	}

	return strings.TrimRight(b.String(), "\n")
}
