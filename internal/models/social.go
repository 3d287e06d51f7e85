package models

// SentimentScore holds polarity (-1..1) and subjectivity (0..1) for one text
type SentimentScore struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// SocialComment is a single comment attached to a post
type SocialComment struct {
	Text      string         `json:"text"`
	Score     int            `json:"score"`
	Sentiment SentimentScore `json:"sentiment"`
}

// SocialPost represents one discussion post about a symbol
type SocialPost struct {
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	Score     int             `json:"score"`
	Author    string          `json:"author"`
	CreatedAt int64           `json:"created_utc"`
	Body      string          `json:"body"`
	Sentiment SentimentScore  `json:"sentiment"`
	Comments  []SocialComment `json:"comments"`
}

// SentimentSummary aggregates sentiment across posts and their comments
type SentimentSummary struct {
	PostCount               int     `json:"post_count"`
	CommentCount            int     `json:"comment_count"`
	AveragePostPolarity     float64 `json:"average_post_polarity"`
	AveragePostSubjectivity float64 `json:"average_post_subjectivity"`
	AvgCommentPolarity      float64 `json:"average_comment_polarity"`
	AvgCommentSubjectivity  float64 `json:"average_comment_subjectivity"`
}

// SocialData bundles the posts and their aggregate summary
type SocialData struct {
	Posts   []*SocialPost    `json:"posts"`
	Summary SentimentSummary `json:"sentiment_summary"`
}

// EmptySocialData returns the degraded state used when no social source is
// available; callers treat it as success with nothing to report.
func EmptySocialData() *SocialData {
	return &SocialData{Posts: []*SocialPost{}}
}
