package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priyansh0418/Haski-sub005/internal/audit"
	"github.com/Priyansh0418/Haski-sub005/internal/config"
	"github.com/Priyansh0418/Haski-sub005/internal/domain"
	"github.com/Priyansh0418/Haski-sub005/internal/engine"
	"github.com/Priyansh0418/Haski-sub005/internal/feedback"
	"github.com/Priyansh0418/Haski-sub005/internal/repository"
	"github.com/Priyansh0418/Haski-sub005/internal/rules"
)

const testRules = `
rules:
  - id: r001
    name: Oily skin cleanser
    category: skincare
    conditions:
      - attribute: skin_type
        operator: equals
        value: oily
    priority: 10
    action:
      kind: routine_step
      step_no: 1
      text: Gentle cleanser
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	rulePath := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rulePath, []byte(testRules), 0o644))

	ruleStore := rules.NewStore(logger)
	_, _, err := ruleStore.Reload(rulePath)
	require.NoError(t, err)

	bundles := repository.NewMemoryRecommendationStore()
	eng := engine.NewEngine(ruleStore, audit.NewMemoryLog(), bundles, logger)

	feedbackStore, err := feedback.NewSQLiteStore(filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { feedbackStore.Close() })

	aggregator, err := feedback.NewAggregator(feedbackStore, bundles, logger)
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 8080
	cfg.Logging.Level = "info"
	cfg.Rules.Path = rulePath
	cfg.RateLimit.RequestsPerSecond = 1000
	cfg.RateLimit.Burst = 1000

	return NewServer(cfg, logger, eng, bundles, aggregator, feedback.NewInsightEngine())
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func generateBundle(t *testing.T, s *Server) *domain.RecommendationBundle {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/v1/recommendations", map[string]interface{}{
		"analysis_id": "analysis-1",
		"user_id":     "user-1",
		"skin_type":   "oily",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var bundle domain.RecommendationBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bundle))
	return &bundle
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestGenerateRecommendation(t *testing.T) {
	s := newTestServer(t)

	bundle := generateBundle(t, s)
	assert.NotEmpty(t, bundle.ID)
	assert.Equal(t, []string{"r001"}, bundle.AppliedRuleIDs)
	require.Len(t, bundle.Routines, 1)
	assert.Equal(t, "Gentle cleanser", bundle.Routines[0].Text)
}

func TestGenerateRecommendation_MissingAnalysisID(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/recommendations", map[string]interface{}{
		"user_id":   "user-1",
		"skin_type": "oily",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "analysis_id")
}

func TestGetRecommendation(t *testing.T) {
	s := newTestServer(t)
	bundle := generateBundle(t, s)

	w := doJSON(t, s, http.MethodGet, "/api/v1/recommendations/"+bundle.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got domain.RecommendationBundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, bundle.ID, got.ID)

	w = doJSON(t, s, http.MethodGet, "/api/v1/recommendations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRuleApplicationsEndpoint(t *testing.T) {
	s := newTestServer(t)
	generateBundle(t, s)

	w := doJSON(t, s, http.MethodGet, "/api/v1/analyses/analysis-1/applications", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		AnalysisID   string                    `json:"analysis_id"`
		Applications []*domain.RuleApplication `json:"applications"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Applications, 1)
	assert.Equal(t, "r001", resp.Applications[0].RuleID)
	assert.Equal(t, []string{"skin_type == oily"}, resp.Applications[0].MatchedPredicates)
}

func TestReloadRules_InvalidFileKeepsActiveSet(t *testing.T) {
	s := newTestServer(t)

	// Corrupt the configured rule file: a rule without an id.
	bad := `
rules:
  - name: No id here
    category: skincare
    conditions:
      - attribute: skin_type
        operator: equals
        value: oily
    priority: 1
    action:
      kind: routine_step
      text: Something
`
	require.NoError(t, os.WriteFile(s.cfg.Rules.Path, []byte(bad), 0o644))

	w := doJSON(t, s, http.MethodPost, "/api/v1/rules/reload", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "missing an id")

	// The previous set still serves matches.
	bundle := generateBundle(t, s)
	assert.Equal(t, []string{"r001"}, bundle.AppliedRuleIDs)
}

func TestSubmitFeedbackAndStats(t *testing.T) {
	s := newTestServer(t)
	bundle := generateBundle(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/v1/feedback", map[string]interface{}{
		"recommendation_id": bundle.ID,
		"user_id":           "user-1",
		"helpful_rating":    5,
		"would_recommend":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		FeedbackID string               `json:"feedback_id"`
		Insight    domain.InsightResult `json:"insight"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.FeedbackID)
	assert.Equal(t, domain.SatisfactionHigh, resp.Insight.SatisfactionLevel)

	w = doJSON(t, s, http.MethodGet, "/api/v1/recommendations/"+bundle.ID+"/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var stats domain.FeedbackStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalFeedbacks)
	require.NotNil(t, stats.AvgHelpfulRating)
	assert.InDelta(t, 5.0, *stats.AvgHelpfulRating, 0.0001)
}

func TestSubmitFeedback_Errors(t *testing.T) {
	s := newTestServer(t)
	bundle := generateBundle(t, s)

	// Out-of-range rating.
	w := doJSON(t, s, http.MethodPost, "/api/v1/feedback", map[string]interface{}{
		"recommendation_id": bundle.ID,
		"user_id":           "user-1",
		"helpful_rating":    6,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "helpful_rating")

	// Unknown recommendation.
	w = doJSON(t, s, http.MethodPost, "/api/v1/feedback", map[string]interface{}{
		"recommendation_id": "missing",
		"user_id":           "user-1",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Someone else's recommendation.
	w = doJSON(t, s, http.MethodPost, "/api/v1/feedback", map[string]interface{}{
		"recommendation_id": bundle.ID,
		"user_id":           "user-2",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserSummaryEndpoint(t *testing.T) {
	s := newTestServer(t)
	bundle := generateBundle(t, s)

	w := doJSON(t, s, http.MethodPost, "/api/v1/feedback", map[string]interface{}{
		"recommendation_id": bundle.ID,
		"user_id":           "user-1",
		"helpful_rating":    4,
		"would_recommend":   true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/users/user-1/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var summary domain.UserFeedbackSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalFeedbacks)
	require.NotNil(t, summary.WouldRecommendRate)
	assert.InDelta(t, 1.0, *summary.WouldRecommendRate, 0.0001)
}

func TestRateLimitExceeded(t *testing.T) {
	s := newTestServer(t)
	s.cfg.RateLimit.RequestsPerSecond = 0.001
	s.cfg.RateLimit.Burst = 1

	// Rebuild the router so the tightened limit takes effect.
	limited := NewServer(s.cfg, s.logger, s.engine, s.bundles, s.aggregator, s.insight)

	first := doJSON(t, limited, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, first.Code)

	second := doJSON(t, limited, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
