// Package api exposes the recommendation and feedback engines over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/Priyansh0418/Haski-sub005/internal/config"
	"github.com/Priyansh0418/Haski-sub005/internal/domain"
	"github.com/Priyansh0418/Haski-sub005/internal/engine"
	"github.com/Priyansh0418/Haski-sub005/internal/feedback"
	"github.com/Priyansh0418/Haski-sub005/internal/middleware"
)

// Server represents the HTTP server.
type Server struct {
	cfg        *config.Config
	logger     *logrus.Logger
	engine     *engine.Engine
	bundles    domain.RecommendationStore
	aggregator *feedback.Aggregator
	insight    *feedback.InsightEngine
	router     *gin.Engine
	server     *http.Server
}

// NewServer creates a new HTTP server instance.
func NewServer(
	cfg *config.Config,
	logger *logrus.Logger,
	eng *engine.Engine,
	bundles domain.RecommendationStore,
	aggregator *feedback.Aggregator,
	insight *feedback.InsightEngine,
) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(middleware.AccessLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(corsMiddleware())
	router.Use(rateLimitMiddleware(cfg.RateLimit))

	server := &Server{
		cfg:        cfg,
		logger:     logger,
		engine:     eng,
		bundles:    bundles,
		aggregator: aggregator,
		insight:    insight,
		router:     router,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         s.cfg.Address(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	s.logger.WithField("addr", s.server.Addr).Info("HTTP server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/recommendations", s.handleGenerateRecommendation)
		v1.GET("/recommendations/:id", s.handleGetRecommendation)
		v1.GET("/recommendations/:id/stats", s.handleRecommendationStats)
		v1.GET("/analyses/:id/recommendations", s.handleAnalysisRecommendations)
		v1.GET("/analyses/:id/applications", s.handleRuleApplications)
		v1.POST("/rules/reload", s.handleReloadRules)
		v1.POST("/feedback", s.handleSubmitFeedback)
		v1.GET("/users/:id/summary", s.handleUserSummary)
	}
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"version":   "1.0.0",
	})
}

// corsMiddleware adds CORS headers to responses.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// rateLimitMiddleware throttles all requests through a shared token bucket.
func rateLimitMiddleware(cfg config.RateLimitConfig) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// generateRequestID generates a simple request ID.
func generateRequestID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
