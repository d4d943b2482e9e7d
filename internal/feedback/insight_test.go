package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

func TestInsight_SatisfactionBuckets(t *testing.T) {
	engine := NewInsightEngine()

	tests := []struct {
		name   string
		rating *int
		want   domain.SatisfactionLevel
	}{
		{name: "five is high", rating: intPtr(5), want: domain.SatisfactionHigh},
		{name: "four is high", rating: intPtr(4), want: domain.SatisfactionHigh},
		{name: "three is medium", rating: intPtr(3), want: domain.SatisfactionMedium},
		{name: "two is low", rating: intPtr(2), want: domain.SatisfactionLow},
		{name: "one is low", rating: intPtr(1), want: domain.SatisfactionLow},
		{name: "absent is not applicable", rating: nil, want: domain.SatisfactionNotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Analyze(&domain.FeedbackEntry{HelpfulRating: tt.rating})
			assert.Equal(t, tt.want, result.SatisfactionLevel)
		})
	}
}

func TestInsight_AdherenceBuckets(t *testing.T) {
	engine := NewInsightEngine()

	tests := []struct {
		name       string
		completion *int
		want       domain.AdherenceLevel
	}{
		{name: "80 is excellent", completion: intPtr(80), want: domain.AdherenceExcellent},
		{name: "100 is excellent", completion: intPtr(100), want: domain.AdherenceExcellent},
		{name: "60 is good", completion: intPtr(60), want: domain.AdherenceGood},
		{name: "40 is fair", completion: intPtr(40), want: domain.AdherenceFair},
		{name: "39 is poor", completion: intPtr(39), want: domain.AdherencePoor},
		{name: "0 is poor", completion: intPtr(0), want: domain.AdherencePoor},
		{name: "absent is not applicable", completion: nil, want: domain.AdherenceNotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Analyze(&domain.FeedbackEntry{RoutineCompletionPct: tt.completion})
			assert.Equal(t, tt.want, result.RoutineAdherence)
		})
	}
}

func TestInsight_QualityBuckets(t *testing.T) {
	engine := NewInsightEngine()

	tests := []struct {
		name         string
		satisfaction *int
		want         domain.QualityAssessment
	}{
		{name: "four is high quality", satisfaction: intPtr(4), want: domain.QualityHigh},
		{name: "three is acceptable", satisfaction: intPtr(3), want: domain.QualityAcceptable},
		{name: "two needs improvement", satisfaction: intPtr(2), want: domain.QualityNeedsImprovement},
		{name: "absent is not applicable", satisfaction: nil, want: domain.QualityNotApplicable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Analyze(&domain.FeedbackEntry{ProductSatisfaction: tt.satisfaction})
			assert.Equal(t, tt.want, result.ProductQuality)
		})
	}
}

func TestInsight_AdverseReactionEscalates(t *testing.T) {
	engine := NewInsightEngine()

	result := engine.Analyze(&domain.FeedbackEntry{
		HelpfulRating:    intPtr(1),
		AdverseReactions: "severe irritation",
		WouldRecommend:   boolPtr(false),
	})

	require.Len(t, result.Escalations, 1)
	esc := result.Escalations[0]
	assert.Equal(t, domain.EscalationHigh, esc.Severity)
	assert.Contains(t, esc.Message, "severe irritation")
	assert.Equal(t, domain.ActionFlagManualReview, esc.Action)

	assert.Equal(t, domain.SatisfactionLow, result.SatisfactionLevel)
	assert.Contains(t, result.Improvements, "Review recommendation relevance for this user profile")
	assert.Contains(t, result.Improvements, "Review flagged products for adverse reactions")
	assert.Contains(t, result.Improvements, "Investigate why the user would not recommend this plan")
}

func TestInsight_LowAdherenceSuggestsSimplifying(t *testing.T) {
	engine := NewInsightEngine()

	for _, completion := range []int{30, 50} {
		result := engine.Analyze(&domain.FeedbackEntry{RoutineCompletionPct: intPtr(completion)})
		assert.Contains(t, result.Improvements, "Consider simplifying the routine to improve completion")
	}

	result := engine.Analyze(&domain.FeedbackEntry{RoutineCompletionPct: intPtr(90)})
	assert.NotContains(t, result.Improvements, "Consider simplifying the routine to improve completion")
}

func TestInsight_PositiveEntryHasNoEscalations(t *testing.T) {
	engine := NewInsightEngine()

	result := engine.Analyze(&domain.FeedbackEntry{
		HelpfulRating:        intPtr(5),
		ProductSatisfaction:  intPtr(5),
		RoutineCompletionPct: intPtr(95),
		WouldRecommend:       boolPtr(true),
	})

	assert.Empty(t, result.Escalations)
	assert.Empty(t, result.Improvements)
}
