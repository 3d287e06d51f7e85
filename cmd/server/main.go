// Package main provides the entry point for the Stockcast API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/stockcast/internal/api"
	"github.com/yourusername/stockcast/internal/backtest"
	"github.com/yourusername/stockcast/internal/config"
	"github.com/yourusername/stockcast/internal/database"
	"github.com/yourusername/stockcast/internal/llm"
	"github.com/yourusername/stockcast/internal/logger"
	"github.com/yourusername/stockcast/internal/marketdata"
	"github.com/yourusername/stockcast/internal/metrics"
	"github.com/yourusername/stockcast/internal/news"
	"github.com/yourusername/stockcast/internal/pipeline"
	"github.com/yourusername/stockcast/internal/quotes"
	"github.com/yourusername/stockcast/internal/repository"
	"github.com/yourusername/stockcast/internal/scheduler"
	"github.com/yourusername/stockcast/internal/social"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "stockcast-server",
	Short: "Serve the stock prediction and backtesting API",
	Long:  `Runs the HTTP API for stepwise predictions, backtests, live quotes and scheduled news ingestion.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stockcast-server %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(loaded, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(loaded); err != nil {
		return err
	}

	cfg = loaded
	appLog = logger.NewLogger(cfg.App.LogLevel)
	return nil
}

func runServer() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Stockcast server starting")

	metrics.InitRegistry()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	pipe, prices, newsService, err := buildPipeline(ctx, repos.Price)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to build prediction pipeline")
	}

	var stream *quotes.StreamClient
	if cfg.Server.QuoteStreamURL != "" {
		stream = quotes.NewStreamClient(cfg.Server.QuoteStreamURL, cfg.MarketData.APIKey, appLog)
		if err := stream.ConnectWithRetry(ctx); err != nil {
			appLog.WithError(err).Warn("Quote stream unavailable, continuing without live quotes")
			stream = nil
		} else {
			defer stream.Close()
		}
	}

	sched := scheduler.NewScheduler(newsService, repos.News, appLog)
	if cfg.Scheduler.NewsRefreshCron != "" {
		symbols := cfg.Scheduler.Symbols
		if len(symbols) == 0 {
			symbols = cfg.Backtest.Symbols
		}
		if err := sched.ScheduleNewsRefresh(cfg.Scheduler.NewsRefreshCron, symbols, cfg.News.RetentionDays); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule news refresh")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				appLog.WithError(err).Error("Failed to stop scheduler")
			}
		}()
	}

	btConfig, err := backtest.FromConfig(cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Invalid backtest config")
	}
	runnerFactory := func(symbols []string) api.BacktestRunner {
		runCfg := btConfig
		if len(symbols) > 0 {
			runCfg.Symbols = symbols
		}
		return backtest.NewEngine(pipe, prices, runCfg, appLog)
	}

	var quoteProvider api.QuoteProvider
	if stream != nil {
		quoteProvider = stream
	}

	var runs repository.BacktestRunRepository
	if cfg.Backtest.PersistToDatabase {
		runs = repos.BacktestRun
	}

	server := api.NewServer(cfg, api.Handlers{
		Predict:  api.NewPredictHandler(pipe),
		Backtest: api.NewBacktestHandler(runnerFactory, btConfig.OutputDir, runs, appLog),
		Quote:    api.NewQuoteHandler(quoteProvider),
	}, db, appLog)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig.String()).Info("Shutdown signal received")
	case err := <-errCh:
		if err != nil {
			appLog.WithError(err).Error("HTTP server failed")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Graceful shutdown failed")
	}
}

func buildPipeline(ctx context.Context, store marketdata.PriceStore) (*pipeline.Service, backtest.PriceSource, *news.Service, error) {
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
		return nil, nil, nil, err
	}

	pipe := pipeline.NewService(prices, newsService, reddit, generator, pipeline.Config{
		TrainingWindowDays: cfg.Backtest.TrainingWindowDays,
		NewsLimit:          cfg.Pipeline.NewsLimit,
		SocialLimit:        cfg.Pipeline.SocialLimit,
		CacheTTL:           time.Duration(cfg.Pipeline.CacheTTLSeconds) * time.Second,
	}, appLog)

	return pipe, prices, newsService, nil
}
