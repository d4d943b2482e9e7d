package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// handleGenerateRecommendation matches an analysis snapshot against the
// active rule set and returns the assembled bundle.
func (s *Server) handleGenerateRecommendation(c *gin.Context) {
	var snapshot domain.AnalysisSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if snapshot.AnalysisID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "analysis_id is required"})
		return
	}
	if snapshot.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	bundle, err := s.engine.GenerateRecommendation(c.Request.Context(), &snapshot)
	if err != nil {
		s.logger.WithError(err).WithField("analysis_id", snapshot.AnalysisID).
			Error("Failed to generate recommendation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate recommendation"})
		return
	}

	c.JSON(http.StatusCreated, bundle)
}

// handleGetRecommendation returns a previously generated bundle by id.
func (s *Server) handleGetRecommendation(c *gin.Context) {
	bundle, err := s.bundles.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "recommendation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recommendation"})
		return
	}

	c.JSON(http.StatusOK, bundle)
}

// handleAnalysisRecommendations returns every bundle generated for an
// analysis, oldest first.
func (s *Server) handleAnalysisRecommendations(c *gin.Context) {
	bundles, err := s.bundles.GetByAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load recommendations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis_id":     c.Param("id"),
		"recommendations": bundles,
	})
}

// handleRuleApplications returns the audit trail for an analysis.
func (s *Server) handleRuleApplications(c *gin.Context) {
	apps, err := s.engine.RuleApplications(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rule applications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analysis_id":  c.Param("id"),
		"applications": apps,
	})
}

// handleReloadRules swaps in the rule file configured for the service. A
// rule set that fails validation leaves the active set untouched and reports
// every reason at once.
func (s *Server) handleReloadRules(c *gin.Context) {
	count, version, err := s.engine.ReloadRules(s.cfg.Rules.Path)
	if err != nil {
		var schemaErr *domain.RuleSchemaError
		if errors.As(err, &schemaErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "rule validation failed",
				"reasons": schemaErr.Reasons,
			})
			return
		}
		s.logger.WithError(err).Error("Failed to reload rules")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload rules"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"rules_loaded": count,
		"version":      version,
	})
}

// handleSubmitFeedback validates and stores a feedback entry and returns the
// qualitative insight derived from it.
func (s *Server) handleSubmitFeedback(c *gin.Context) {
	var entry domain.FeedbackEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if err := s.aggregator.Record(c.Request.Context(), &entry); err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": verr.Error(),
				"field": verr.Field,
			})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "recommendation not found"})
		case errors.Is(err, domain.ErrNotOwned):
			c.JSON(http.StatusForbidden, gin.H{"error": "recommendation belongs to another user"})
		default:
			s.logger.WithError(err).Error("Failed to record feedback")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record feedback"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"feedback_id": entry.ID,
		"insight":     s.insight.Analyze(&entry),
	})
}

// handleRecommendationStats returns the aggregated feedback statistics for a
// recommendation.
func (s *Server) handleRecommendationStats(c *gin.Context) {
	stats, err := s.aggregator.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleUserSummary returns a user's cross-recommendation feedback summary.
func (s *Server) handleUserSummary(c *gin.Context) {
	summary, err := s.aggregator.UserSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute summary"})
		return
	}

	c.JSON(http.StatusOK, summary)
}
