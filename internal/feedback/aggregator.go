package feedback

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// statsCacheSize bounds the per-recommendation stats cache.
const statsCacheSize = 1024

// Aggregator validates incoming feedback against its recommendation bundle,
// persists it, and serves derived statistics. Stats are cached per
// recommendation and invalidated whenever new feedback for it is recorded.
type Aggregator struct {
	store   Store
	bundles domain.RecommendationStore
	cache   *lru.Cache[string, *domain.FeedbackStats]
	logger  *logrus.Logger
}

// NewAggregator creates a feedback aggregator over the given stores.
func NewAggregator(store Store, bundles domain.RecommendationStore, logger *logrus.Logger) (*Aggregator, error) {
	cache, err := lru.New[string, *domain.FeedbackStats](statsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating stats cache: %w", err)
	}
	return &Aggregator{
		store:   store,
		bundles: bundles,
		cache:   cache,
		logger:  logger,
	}, nil
}

// Record validates and persists one feedback entry. Validation is
// fail-closed: an invalid entry is rejected whole and never reaches storage
// or statistics. The referenced recommendation must exist and belong to the
// submitting user.
func (a *Aggregator) Record(ctx context.Context, entry *domain.FeedbackEntry) error {
	if err := validateEntry(entry); err != nil {
		return err
	}

	bundle, err := a.bundles.Get(ctx, entry.RecommendationID)
	if err != nil {
		if err == domain.ErrNotFound {
			return domain.ErrNotFound
		}
		return fmt.Errorf("looking up recommendation %s: %w", entry.RecommendationID, err)
	}
	if bundle.UserID != entry.UserID {
		return domain.ErrNotOwned
	}

	if err := a.store.Save(ctx, entry); err != nil {
		return fmt.Errorf("saving feedback: %w", err)
	}

	a.cache.Remove(entry.RecommendationID)

	a.logger.WithFields(logrus.Fields{
		"feedback_id":       entry.ID,
		"recommendation_id": entry.RecommendationID,
		"user_id":           entry.UserID,
	}).Info("Feedback recorded")

	return nil
}

func validateEntry(entry *domain.FeedbackEntry) error {
	if entry.RecommendationID == "" {
		return domain.NewValidationError("recommendation_id", "is required", "")
	}
	if entry.UserID == "" {
		return domain.NewValidationError("user_id", "is required", "")
	}
	if entry.HelpfulRating != nil && (*entry.HelpfulRating < 1 || *entry.HelpfulRating > 5) {
		return domain.NewValidationError("helpful_rating", "must be between 1 and 5", *entry.HelpfulRating)
	}
	if entry.ProductSatisfaction != nil && (*entry.ProductSatisfaction < 1 || *entry.ProductSatisfaction > 5) {
		return domain.NewValidationError("product_satisfaction", "must be between 1 and 5", *entry.ProductSatisfaction)
	}
	if entry.RoutineCompletionPct != nil && (*entry.RoutineCompletionPct < 0 || *entry.RoutineCompletionPct > 100) {
		return domain.NewValidationError("routine_completion_pct", "must be between 0 and 100", *entry.RoutineCompletionPct)
	}
	if !entry.Timeframe.IsValid() {
		return domain.NewValidationError("timeframe", "is not a recognized timeframe", string(entry.Timeframe))
	}
	for product, rating := range entry.ProductRatings {
		if rating < 1 || rating > 5 {
			return domain.NewValidationError("product_ratings", fmt.Sprintf("rating for %q must be between 1 and 5", product), rating)
		}
	}
	return nil
}

// Stats computes the aggregate statistics for one recommendation. Averages
// cover only entries where the field is present; a recommendation without
// feedback yields a zeroed stats object, never an error.
func (a *Aggregator) Stats(ctx context.Context, recommendationID string) (*domain.FeedbackStats, error) {
	if cached, ok := a.cache.Get(recommendationID); ok {
		return cached, nil
	}

	entries, err := a.store.ListByRecommendation(ctx, recommendationID)
	if err != nil {
		return nil, fmt.Errorf("listing feedback for %s: %w", recommendationID, err)
	}

	stats := &domain.FeedbackStats{
		RecommendationID:    recommendationID,
		TotalFeedbacks:      len(entries),
		RatingsDistribution: make(map[int]int),
	}

	var (
		helpfulSum, helpfulN           int
		satisfactionSum, satisfactionN int
		completionSum, completionN     int
	)
	for _, entry := range entries {
		if entry.HelpfulRating != nil {
			r := *entry.HelpfulRating
			helpfulSum += r
			helpfulN++
			stats.RatingsDistribution[r]++
			if r >= 4 {
				stats.HelpfulFeedbacks++
			} else if r <= 2 {
				stats.NotHelpfulFeedbacks++
			}
		}
		if entry.ProductSatisfaction != nil {
			satisfactionSum += *entry.ProductSatisfaction
			satisfactionN++
		}
		if entry.RoutineCompletionPct != nil {
			completionSum += *entry.RoutineCompletionPct
			completionN++
		}
		if entry.WouldRecommend != nil {
			if *entry.WouldRecommend {
				stats.WouldRecommendCount++
			} else {
				stats.WouldNotRecommendCount++
			}
		}
		if entry.AdverseReactions != "" {
			stats.AdverseReactionCount++
		}
	}

	stats.AvgHelpfulRating = average(helpfulSum, helpfulN)
	stats.AvgProductSatisfaction = average(satisfactionSum, satisfactionN)
	stats.AvgRoutineCompletion = average(completionSum, completionN)

	a.cache.Add(recommendationID, stats)
	return stats, nil
}

// UserSummary aggregates all feedback a user has submitted across their
// recommendations.
func (a *Aggregator) UserSummary(ctx context.Context, userID string) (*domain.UserFeedbackSummary, error) {
	entries, err := a.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing feedback for user %s: %w", userID, err)
	}

	summary := &domain.UserFeedbackSummary{
		UserID:         userID,
		TotalFeedbacks: len(entries),
	}

	var (
		helpfulSum, helpfulN           int
		satisfactionSum, satisfactionN int
		completionSum, completionN     int
	)
	for _, entry := range entries {
		if entry.HelpfulRating != nil {
			helpfulSum += *entry.HelpfulRating
			helpfulN++
		}
		if entry.ProductSatisfaction != nil {
			satisfactionSum += *entry.ProductSatisfaction
			satisfactionN++
		}
		if entry.RoutineCompletionPct != nil {
			completionSum += *entry.RoutineCompletionPct
			completionN++
		}
		if entry.WouldRecommend != nil {
			if *entry.WouldRecommend {
				summary.WouldRecommendCount++
			} else {
				summary.WouldNotRecommendCount++
			}
		}
		if entry.AdverseReactions != "" {
			summary.AdverseReactionCount++
		}
	}

	summary.AvgHelpfulRating = average(helpfulSum, helpfulN)
	summary.AvgProductSatisfaction = average(satisfactionSum, satisfactionN)
	summary.AvgRoutineCompletion = average(completionSum, completionN)

	// Rate stays unset when nobody answered the question; zero respondents
	// is not a 0% rate.
	if answered := summary.WouldRecommendCount + summary.WouldNotRecommendCount; answered > 0 {
		rate := float64(summary.WouldRecommendCount) / float64(answered)
		summary.WouldRecommendRate = &rate
	}

	return summary, nil
}

func average(sum, n int) *float64 {
	if n == 0 {
		return nil
	}
	avg := float64(sum) / float64(n)
	return &avg
}
