// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/stockcast/internal/backtest"
	"github.com/yourusername/stockcast/internal/config"
	"github.com/yourusername/stockcast/internal/database"
	"github.com/yourusername/stockcast/internal/llm"
	"github.com/yourusername/stockcast/internal/logger"
	"github.com/yourusername/stockcast/internal/marketdata"
	"github.com/yourusername/stockcast/internal/metrics"
	"github.com/yourusername/stockcast/internal/models"
	"github.com/yourusername/stockcast/internal/news"
	"github.com/yourusername/stockcast/internal/pipeline"
	"github.com/yourusername/stockcast/internal/repository"
	"github.com/yourusername/stockcast/internal/social"
)

func main() {
	var (
		configPath  = flag.String("config", "config/config.yaml", "Path to config file")
		symbols     = flag.String("symbols", "", "Comma-separated symbols to test (overrides config)")
		outputDir   = flag.String("output-dir", "", "Directory for result and report files (overrides config)")
		resultsFile = flag.String("results-file", "", "Existing results JSON to regenerate a report from")
		reportOnly  = flag.Bool("report-only", false, "Only generate a report from an existing results file")
	)
	flag.Parse()

	appLog := logrus.New()
	appLog.SetFormatter(&logrus.JSONFormatter{})

	if *reportOnly {
		dir := *outputDir
		if dir == "" {
			dir = backtest.DefaultOutputDir
		}
		runReportOnly(*resultsFile, dir, appLog)
		return
	}

	ctx := context.Background()
	cfg := loadConfigWithSecrets(*configPath, appLog)
	appLog = logger.NewLogger(cfg.App.LogLevel)

	btConfig, err := backtest.FromConfig(cfg)
	if err != nil {
		appLog.Fatalf("Invalid backtest config: %v", err)
	}
	if *symbols != "" {
		btConfig.Symbols = splitSymbols(*symbols)
	}
	if *outputDir != "" {
		btConfig.OutputDir = *outputDir
	}

	metrics.InitRegistry()

	var repos *repository.Repositories
	if cfg.Backtest.PersistToDatabase {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			appLog.WithError(err).Warn("Failed to connect to database, continuing without persistence")
		} else {
			defer db.Close()
			repos, err = repository.NewRepositories(db)
			if err != nil {
				appLog.WithError(err).Warn("Failed to build repositories, continuing without persistence")
			}
		}
	}

	var priceStore marketdata.PriceStore
	if repos != nil {
		priceStore = repos.Price
	}

	pipe, prices, err := buildPipeline(ctx, cfg, priceStore, appLog)
	if err != nil {
		appLog.Fatalf("Failed to build prediction pipeline: %v", err)
	}

	engine := backtest.NewEngine(pipe, prices, btConfig, appLog)
	result, err := engine.Run(ctx)
	if err != nil {
		appLog.Fatalf("Backtest failed: %v", err)
	}

	snapshotPath, err := backtest.SaveSnapshot(result.Snapshot, btConfig.OutputDir, result.RunTime)
	if err != nil {
		appLog.Fatalf("Failed to save results: %v", err)
	}
	appLog.WithField("path", snapshotPath).Info("Backtest results saved")

	report := backtest.GenerateReport(result.Snapshot, result.RunTime)
	reportPath, err := backtest.SaveReport(report, btConfig.OutputDir, result.RunTime)
	if err != nil {
		appLog.Fatalf("Failed to save report: %v", err)
	}
	appLog.WithField("path", reportPath).Info("Backtest report saved")

	fmt.Print(report)

	if repos != nil {
		persistRun(ctx, repos, result, appLog)
	}
}

func runReportOnly(resultsFile, outputDir string, appLog *logrus.Logger) {
	if resultsFile == "" {
		appLog.Fatal("--results-file is required with --report-only")
	}

	snapshot, err := backtest.LoadSnapshot(resultsFile)
	if err != nil {
		appLog.Fatalf("Failed to load results: %v", err)
	}

	now := time.Now()
	report := backtest.GenerateReport(snapshot, now)
	reportPath, err := backtest.SaveReport(report, outputDir, now)
	if err != nil {
		appLog.Fatalf("Failed to save report: %v", err)
	}
	appLog.WithField("path", reportPath).Info("Backtest report saved")

	fmt.Print(report)
}

func loadConfigWithSecrets(path string, appLog *logrus.Logger) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		appLog.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			appLog.Fatal("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			appLog.Fatalf("Failed to load secrets: %v", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		appLog.Fatalf("Invalid configuration: %v", err)
	}
	return cfg
}

func buildPipeline(ctx context.Context, cfg *config.Config, store marketdata.PriceStore, appLog *logrus.Logger) (*pipeline.Service, backtest.PriceSource, error) {
	httpCfg := marketdata.DefaultHTTPClientConfig()
	if cfg.MarketData.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.MarketData.TimeoutSeconds) * time.Second
	}
	if cfg.MarketData.RetryAttempts > 0 {
		httpCfg.MaxRetries = cfg.MarketData.RetryAttempts
	}
	if cfg.MarketData.RateLimit > 0 {
		httpCfg.RateLimit = cfg.MarketData.RateLimit
	}
	httpClient := marketdata.NewRateLimitedHTTPClient(httpCfg, appLog)

	var prices marketdata.PriceSource = marketdata.NewAlphaVantageClient(httpClient, cfg.MarketData.BaseURL, cfg.MarketData.APIKey, appLog)
	if store != nil {
		prices = marketdata.NewStoredSource(prices, store, appLog)
	}

	var newsSources []news.Source
	if cfg.News.FinnhubAPIKey != "" {
		newsSources = append(newsSources, news.NewFinnhubClient(httpClient, cfg.News.FinnhubBaseURL, cfg.News.FinnhubAPIKey, appLog))
	}
	newsSources = append(newsSources, news.NewGoogleNewsClient(httpClient, cfg.News.GoogleRSSURL, appLog))
	newsService := news.NewService(newsSources, cfg.News.MaxArticles, cfg.News.RetentionDays, appLog)

	reddit := social.NewRedditClient(httpClient, cfg.Social.BaseURL, cfg.Social.UserAgent, appLog)

	generator, err := llm.NewClient(ctx, cfg.LLM.APIKey,
		llm.WithModel(cfg.LLM.Model),
		llm.WithMaxOutputTokens(cfg.LLM.MaxOutputTokens),
		llm.WithLogger(appLog),
	)
	if err != nil {
		return nil, nil, err
	}

	pipe := pipeline.NewService(prices, newsService, reddit, generator, pipeline.Config{
		TrainingWindowDays: cfg.Backtest.TrainingWindowDays,
		NewsLimit:          cfg.Pipeline.NewsLimit,
		SocialLimit:        cfg.Pipeline.SocialLimit,
		CacheTTL:           time.Duration(cfg.Pipeline.CacheTTLSeconds) * time.Second,
	}, appLog)

	return pipe, prices, nil
}

func persistRun(ctx context.Context, repos *repository.Repositories, result *backtest.RunResult, appLog *logrus.Logger) {
	raw, err := json.Marshal(result.Snapshot)
	if err != nil {
		appLog.WithError(err).Error("Failed to marshal snapshot")
		return
	}

	summary := backtest.Summarize(result.Snapshot.Metrics())
	avgError := 0.0
	if summary.AvgPercentageError != nil {
		avgError = summary.AvgPercentageError.InexactFloat64()
	}

	run := &models.BacktestRun{
		ID:                uuid.New(),
		RunDate:           result.RunTime,
		TrainStart:        result.Windows.TrainStart,
		TrainEnd:          result.Windows.TrainEnd,
		TestDate:          result.Windows.TestDate,
		Symbols:           result.Snapshot.Symbols(),
		SuccessCount:      summary.SuccessfulCount,
		DirectionAccuracy: summary.DirectionAccuracy(),
		AvgPctError:       avgError,
		Snapshot:          raw,
		CreatedAt:         time.Now().UTC(),
	}
	if err := repos.BacktestRun.Create(ctx, run); err != nil {
		appLog.WithError(err).Error("Failed to persist backtest run")
		return
	}
	appLog.WithField("run_id", run.ID).Info("Backtest run persisted")
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			symbols = append(symbols, strings.ToUpper(trimmed))
		}
	}
	return symbols
}
