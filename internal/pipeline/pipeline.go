package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/llm"
	"github.com/yourusername/stockcast/internal/logger"
	"github.com/yourusername/stockcast/internal/metrics"
	"github.com/yourusername/stockcast/internal/models"
	"github.com/yourusername/stockcast/internal/parser"
)

// ErrMissingStep is returned when the result step runs before its inputs
var ErrMissingStep = errors.New("analysis data not found or expired, rerun earlier steps")

type contextKey int

const userContextKey contextKey = iota

// WithUser tags the context with the caller identity. Cached step data is
// partitioned by that identity so concurrent callers never see each other's
// intermediate results.
func WithUser(ctx context.Context, user string) context.Context {
	if user == "" {
		return ctx
	}
	return context.WithValue(ctx, userContextKey, user)
}

// UserFrom returns the caller identity carried by the context, or the
// anonymous partition when none was set.
func UserFrom(ctx context.Context) string {
	if user, ok := ctx.Value(userContextKey).(string); ok && user != "" {
		return user
	}
	return anonymousUser
}

// PriceSource fetches daily price history
type PriceSource interface {
	FetchWindow(ctx context.Context, symbol string, start, end time.Time) (*models.PriceSeries, error)
}

// NewsSource fetches recent articles for a symbol
type NewsSource interface {
	FetchRecent(ctx context.Context, symbol string, asOf time.Time) ([]models.NewsArticle, error)
}

// SocialSource fetches discussion sentiment, degrading to empty data
type SocialSource interface {
	FetchSocialData(ctx context.Context, symbol string, limit int) *models.SocialData
}

// Generator produces prediction text from a prompt
type Generator interface {
	GeneratePrediction(ctx context.Context, prompt string) (string, error)
}

// Config holds pipeline tuning knobs
type Config struct {
	TrainingWindowDays int
	NewsLimit          int
	SocialLimit        int
	CacheTTL           time.Duration
}

// Service runs the four-step prediction flow
type Service struct {
	prices    PriceSource
	news      NewsSource
	social    SocialSource
	generator Generator
	cache     *StepCache
	cfg       Config
	log       *logger.PipelineLogger
}

// NewService creates a prediction pipeline service
func NewService(prices PriceSource, newsSource NewsSource, social SocialSource, generator Generator, cfg Config, baseLogger *logrus.Logger) *Service {
	if cfg.TrainingWindowDays <= 0 {
		cfg.TrainingWindowDays = 21
	}
	if cfg.NewsLimit <= 0 {
		cfg.NewsLimit = 10
	}
	if cfg.SocialLimit <= 0 {
		cfg.SocialLimit = 10
	}
	if baseLogger == nil {
		baseLogger = logrus.New()
	}
	return &Service{
		prices:    prices,
		news:      newsSource,
		social:    social,
		generator: generator,
		cache:     NewStepCache(cfg.CacheTTL, 1000),
		cfg:       cfg,
		log:       logger.NewPipelineLogger(baseLogger),
	}
}

// Cache exposes the step cache for stats and invalidation
func (s *Service) Cache() *StepCache {
	return s.cache
}

// FetchHistorical runs step 1: daily prices for the training window ending
// at asOf.
func (s *Service) FetchHistorical(ctx context.Context, symbol string, asOf time.Time) (*models.PriceSeries, error) {
	key := CacheKey{User: UserFrom(ctx), Symbol: symbol, Step: StepHistorical, AsOf: asOf}
	if cached := s.cache.Get(key); cached != nil {
		if series, ok := cached.(*models.PriceSeries); ok {
			s.log.LogStepCompleted(symbol, StepHistorical, len(series.Points), true, 0)
			metrics.RecordPipelineStep(StepHistorical, "cached", 0)
			return series, nil
		}
	}

	start := time.Now()
	windowStart := asOf.AddDate(0, 0, -s.cfg.TrainingWindowDays)

	series, err := s.prices.FetchWindow(ctx, symbol, windowStart, asOf)
	duration := time.Since(start)
	if err != nil {
		s.log.LogStepFailed(symbol, StepHistorical, err)
		metrics.RecordPipelineStep(StepHistorical, "failure", duration.Seconds())
		return nil, fmt.Errorf("historical step: %w", err)
	}

	s.cache.Set(key, series)
	s.log.LogStepCompleted(symbol, StepHistorical, len(series.Points), false, float64(duration.Milliseconds()))
	metrics.RecordPipelineStep(StepHistorical, "success", duration.Seconds())
	return series, nil
}

// FetchNews runs step 2: recent articles for the symbol
func (s *Service) FetchNews(ctx context.Context, symbol string, asOf time.Time) ([]models.NewsArticle, error) {
	key := CacheKey{User: UserFrom(ctx), Symbol: symbol, Step: StepNews, AsOf: asOf}
	if cached := s.cache.Get(key); cached != nil {
		if articles, ok := cached.([]models.NewsArticle); ok {
			s.log.LogStepCompleted(symbol, StepNews, len(articles), true, 0)
			metrics.RecordPipelineStep(StepNews, "cached", 0)
			return articles, nil
		}
	}

	start := time.Now()

	articles, err := s.news.FetchRecent(ctx, symbol, asOf)
	duration := time.Since(start)
	if err != nil {
		s.log.LogStepFailed(symbol, StepNews, err)
		metrics.RecordPipelineStep(StepNews, "failure", duration.Seconds())
		return nil, fmt.Errorf("news step: %w", err)
	}

	s.cache.Set(key, articles)
	s.log.LogStepCompleted(symbol, StepNews, len(articles), false, float64(duration.Milliseconds()))
	metrics.RecordPipelineStep(StepNews, "success", duration.Seconds())
	return articles, nil
}

// FetchSocial runs step 3: discussion sentiment. Failures degrade to empty
// data inside the source, so this step never errors.
func (s *Service) FetchSocial(ctx context.Context, symbol string, asOf time.Time) *models.SocialData {
	key := CacheKey{User: UserFrom(ctx), Symbol: symbol, Step: StepSocial, AsOf: asOf}
	if cached := s.cache.Get(key); cached != nil {
		if data, ok := cached.(*models.SocialData); ok {
			s.log.LogStepCompleted(symbol, StepSocial, len(data.Posts), true, 0)
			metrics.RecordPipelineStep(StepSocial, "cached", 0)
			return data
		}
	}

	start := time.Now()

	data := s.social.FetchSocialData(ctx, symbol, s.cfg.SocialLimit)
	duration := time.Since(start)

	s.cache.Set(key, data)
	s.log.LogStepCompleted(symbol, StepSocial, len(data.Posts), false, float64(duration.Milliseconds()))
	metrics.RecordPipelineStep(StepSocial, "success", duration.Seconds())
	return data
}

// GenerateResult runs step 4: build the prompt from the cached steps and
// call the model. All three earlier steps must be cached for this symbol
// and date, mirroring the step-by-step API flow.
func (s *Service) GenerateResult(ctx context.Context, symbol, userQuery string, asOf time.Time) (*models.PredictionResult, error) {
	user := UserFrom(ctx)
	series, ok := s.cache.Get(CacheKey{User: user, Symbol: symbol, Step: StepHistorical, AsOf: asOf}).(*models.PriceSeries)
	if !ok || series == nil {
		return nil, fmt.Errorf("%w: missing historical data", ErrMissingStep)
	}
	articles, ok := s.cache.Get(CacheKey{User: user, Symbol: symbol, Step: StepNews, AsOf: asOf}).([]models.NewsArticle)
	if !ok {
		return nil, fmt.Errorf("%w: missing news data", ErrMissingStep)
	}
	social, ok := s.cache.Get(CacheKey{User: user, Symbol: symbol, Step: StepSocial, AsOf: asOf}).(*models.SocialData)
	if !ok || social == nil {
		return nil, fmt.Errorf("%w: missing social data", ErrMissingStep)
	}

	return s.generate(ctx, symbol, userQuery, asOf, series, articles, social)
}

// Predict runs all four steps in order and returns the parsed result
func (s *Service) Predict(ctx context.Context, symbol, userQuery string, asOf time.Time) (*models.PredictionResult, error) {
	series, err := s.FetchHistorical(ctx, symbol, asOf)
	if err != nil {
		return nil, err
	}

	articles, err := s.FetchNews(ctx, symbol, asOf)
	if err != nil {
		return nil, err
	}

	social := s.FetchSocial(ctx, symbol, asOf)

	return s.generate(ctx, symbol, userQuery, asOf, series, articles, social)
}

func (s *Service) generate(ctx context.Context, symbol, userQuery string, asOf time.Time, series *models.PriceSeries, articles []models.NewsArticle, social *models.SocialData) (*models.PredictionResult, error) {
	start := time.Now()

	prompt := llm.BuildPredictionPrompt(llm.PromptData{
		Symbol:    symbol,
		UserQuery: userQuery,
		Prices:    series,
		Articles:  articles,
		Social:    social,
		NewsLimit: s.cfg.NewsLimit,
		Now:       asOf,
	})

	response, err := s.generator.GeneratePrediction(ctx, prompt)
	duration := time.Since(start)
	if err != nil {
		s.log.LogStepFailed(symbol, StepResult, err)
		metrics.RecordPipelineStep(StepResult, "failure", duration.Seconds())
		return nil, fmt.Errorf("result step: %w", err)
	}

	result := parser.Parse(symbol, userQuery, response, time.Now().UTC())

	targetPrice := ""
	if result.HasTargetPrice() {
		targetPrice = result.TargetPrice.String()
	}
	s.log.LogPredictionGenerated(symbol, len(prompt), len(response), targetPrice, float64(duration.Milliseconds()))
	metrics.RecordPipelineStep(StepResult, "success", duration.Seconds())
	metrics.RecordPredictionGenerated()

	// A completed flow clears the caller's cached steps so the next run
	// starts fresh
	s.cache.Invalidate(UserFrom(ctx), symbol)

	return result, nil
}
