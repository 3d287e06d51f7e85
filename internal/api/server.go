package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stockcast/internal/config"
	"github.com/yourusername/stockcast/internal/database"
	"github.com/yourusername/stockcast/internal/metrics"
)

// Server hosts the HTTP API
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	server *http.Server
	log    *logrus.Logger
}

// Handlers bundles the route handlers mounted on the server. Nil handlers
// disable their routes.
type Handlers struct {
	Predict  *PredictHandler
	Backtest *BacktestHandler
	Quote    *QuoteHandler
}

// NewServer builds the HTTP server with all routes and middleware
func NewServer(cfg *config.Config, handlers Handlers, db *database.DB, log *logrus.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(ErrorHandler(log))

	router.GET("/health", func(c *gin.Context) {
		status := gin.H{"status": "ok"}
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	})

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		if handlers.Predict != nil {
			v1.POST("/predict", handlers.Predict.Predict)
			v1.POST("/predict/historical", handlers.Predict.FetchHistorical)
			v1.POST("/predict/news", handlers.Predict.FetchNews)
			v1.POST("/predict/social", handlers.Predict.FetchSocial)
			v1.POST("/predict/result", handlers.Predict.GenerateResult)
		}
		if handlers.Backtest != nil {
			v1.POST("/backtest", handlers.Backtest.Run)
			v1.GET("/backtest/latest", handlers.Backtest.Latest)
			v1.GET("/backtest/:id/report", handlers.Backtest.Report)
		}
		if handlers.Quote != nil {
			v1.GET("/quote/:symbol", handlers.Quote.Get)
		}
	}

	corsOptions := cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", userHeader},
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsOptions.AllowedOrigins = cfg.Server.AllowedOrigins
	} else {
		corsOptions.AllowedOrigins = []string{"*"}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      cors.New(corsOptions).Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{cfg: cfg, router: router, server: srv, log: log}
}

// Router exposes the underlying gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server until it is shut down
func (s *Server) Start() error {
	s.log.WithField("addr", s.server.Addr).Info("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}
