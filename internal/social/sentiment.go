// Package social fetches discussion posts and scores their sentiment.
package social

import (
	"strings"

	"github.com/yourusername/stockcast/internal/models"
)

// Word lists for the lexicon scorer. Weights are in [-1, 1] for polarity;
// any hit also counts toward subjectivity.
var positiveWords = map[string]float64{
	"bullish":    0.8,
	"buy":        0.5,
	"moon":       0.7,
	"gain":       0.6,
	"gains":      0.6,
	"up":         0.3,
	"beat":       0.5,
	"beats":      0.5,
	"strong":     0.5,
	"growth":     0.5,
	"rally":      0.6,
	"upgrade":    0.6,
	"outperform": 0.7,
	"great":      0.6,
	"good":       0.4,
	"profit":     0.5,
	"winning":    0.6,
	"surge":      0.6,
	"soar":       0.7,
	"record":     0.4,
}

var negativeWords = map[string]float64{
	"bearish":      -0.8,
	"sell":         -0.5,
	"crash":        -0.8,
	"loss":         -0.6,
	"losses":       -0.6,
	"down":         -0.3,
	"miss":         -0.5,
	"misses":       -0.5,
	"weak":         -0.5,
	"decline":      -0.5,
	"drop":         -0.5,
	"downgrade":    -0.6,
	"underperform": -0.7,
	"bad":          -0.4,
	"terrible":     -0.7,
	"dump":         -0.6,
	"plunge":       -0.7,
	"tank":         -0.6,
	"fear":         -0.5,
	"risk":         -0.3,
}

// Intensity words raise subjectivity without shifting polarity
var subjectiveWords = map[string]bool{
	"think":      true,
	"feel":       true,
	"believe":    true,
	"probably":   true,
	"definitely": true,
	"maybe":      true,
	"hope":       true,
	"guess":      true,
	"seems":      true,
	"opinion":    true,
}

// ScoreText scores a text with the lexicon. Neutral text scores zero on
// both axes.
func ScoreText(text string) models.SentimentScore {
	if text == "" {
		return models.SentimentScore{}
	}

	words := tokenize(text)
	if len(words) == 0 {
		return models.SentimentScore{}
	}

	var polaritySum float64
	var polarityHits int
	var subjectiveHits int

	for _, word := range words {
		if weight, ok := positiveWords[word]; ok {
			polaritySum += weight
			polarityHits++
			subjectiveHits++
			continue
		}
		if weight, ok := negativeWords[word]; ok {
			polaritySum += weight
			polarityHits++
			subjectiveHits++
			continue
		}
		if subjectiveWords[word] {
			subjectiveHits++
		}
	}

	score := models.SentimentScore{}
	if polarityHits > 0 {
		score.Polarity = clamp(polaritySum/float64(polarityHits), -1, 1)
	}
	score.Subjectivity = clamp(float64(subjectiveHits)/float64(len(words))*4, 0, 1)
	return score
}

// Summarize computes aggregate sentiment across posts and their comments
func Summarize(posts []*models.SocialPost) models.SentimentSummary {
	summary := models.SentimentSummary{PostCount: len(posts)}
	if len(posts) == 0 {
		return summary
	}

	var postPolarity, postSubjectivity float64
	var commentPolarity, commentSubjectivity float64

	for _, post := range posts {
		postPolarity += post.Sentiment.Polarity
		postSubjectivity += post.Sentiment.Subjectivity
		for _, comment := range post.Comments {
			summary.CommentCount++
			commentPolarity += comment.Sentiment.Polarity
			commentSubjectivity += comment.Sentiment.Subjectivity
		}
	}

	summary.AveragePostPolarity = postPolarity / float64(len(posts))
	summary.AveragePostSubjectivity = postSubjectivity / float64(len(posts))
	if summary.CommentCount > 0 {
		summary.AvgCommentPolarity = commentPolarity / float64(summary.CommentCount)
		summary.AvgCommentSubjectivity = commentSubjectivity / float64(summary.CommentCount)
	}

	return summary
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ' ' || r == '\'' {
			return r
		}
		return ' '
	}, text)

	fields := strings.Fields(strings.ToLower(cleaned))
	return fields
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
