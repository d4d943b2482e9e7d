// Package repository persists recommendation bundles.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// RecommendationRepository stores recommendation bundles in PostgreSQL. The
// structured slices are stored as JSONB so a bundle round-trips without a
// child table per collection.
type RecommendationRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewRecommendationRepository creates a new recommendation repository.
func NewRecommendationRepository(db *pgxpool.Pool, logger *logrus.Logger) *RecommendationRepository {
	return &RecommendationRepository{
		db:  db,
		log: logger,
	}
}

// Save inserts a bundle. Bundles are write-once; there is no update path.
func (r *RecommendationRepository) Save(ctx context.Context, bundle *domain.RecommendationBundle) error {
	routines, products, diet, escalations, appliedIDs, err := encodeBundle(bundle)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO recommendations (
			id, analysis_id, user_id, routines, products, diet,
			escalations, applied_rule_ids, ruleset_version, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		)`

	_, err = r.db.Exec(ctx, query,
		bundle.ID,
		bundle.AnalysisID,
		bundle.UserID,
		routines,
		products,
		diet,
		escalations,
		appliedIDs,
		bundle.RuleSetVersion,
		bundle.CreatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"bundle_id":   bundle.ID,
			"analysis_id": bundle.AnalysisID,
			"error":       err,
		}).Error("Failed to save recommendation bundle")
		return fmt.Errorf("saving recommendation bundle: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"bundle_id":   bundle.ID,
		"analysis_id": bundle.AnalysisID,
		"rules":       len(bundle.AppliedRuleIDs),
	}).Info("Recommendation bundle saved")

	return nil
}

// Get retrieves a bundle by its ID.
func (r *RecommendationRepository) Get(ctx context.Context, id string) (*domain.RecommendationBundle, error) {
	query := `
		SELECT id, analysis_id, user_id, routines, products, diet,
			   escalations, applied_rule_ids, ruleset_version, created_at
		FROM recommendations
		WHERE id = $1`

	bundle, err := scanBundle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("getting recommendation bundle: %w", err)
	}
	return bundle, nil
}

// GetByAnalysis retrieves every bundle generated for an analysis, oldest
// first.
func (r *RecommendationRepository) GetByAnalysis(ctx context.Context, analysisID string) ([]*domain.RecommendationBundle, error) {
	query := `
		SELECT id, analysis_id, user_id, routines, products, diet,
			   escalations, applied_rule_ids, ruleset_version, created_at
		FROM recommendations
		WHERE analysis_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, analysisID)
	if err != nil {
		return nil, fmt.Errorf("querying recommendation bundles: %w", err)
	}
	defer rows.Close()

	var bundles []*domain.RecommendationBundle
	for rows.Next() {
		bundle, err := scanBundle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recommendation bundle: %w", err)
		}
		bundles = append(bundles, bundle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recommendation bundles: %w", err)
	}

	return bundles, nil
}

func encodeBundle(bundle *domain.RecommendationBundle) (routines, products, diet, escalations, appliedIDs []byte, err error) {
	if routines, err = json.Marshal(bundle.Routines); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encoding routines: %w", err)
	}
	if products, err = json.Marshal(bundle.Products); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encoding products: %w", err)
	}
	if diet, err = json.Marshal(bundle.Diet); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encoding diet: %w", err)
	}
	if escalations, err = json.Marshal(bundle.Escalations); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encoding escalations: %w", err)
	}
	if appliedIDs, err = json.Marshal(bundle.AppliedRuleIDs); err != nil {
		return nil, nil, nil, nil, nil, fmt.Errorf("encoding applied rule ids: %w", err)
	}
	return routines, products, diet, escalations, appliedIDs, nil
}

func scanBundle(row pgx.Row) (*domain.RecommendationBundle, error) {
	var (
		bundle                                           domain.RecommendationBundle
		routines, products, diet, escalations, appliedID []byte
	)

	err := row.Scan(
		&bundle.ID,
		&bundle.AnalysisID,
		&bundle.UserID,
		&routines,
		&products,
		&diet,
		&escalations,
		&appliedID,
		&bundle.RuleSetVersion,
		&bundle.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(routines, &bundle.Routines); err != nil {
		return nil, fmt.Errorf("decoding routines: %w", err)
	}
	if err := json.Unmarshal(products, &bundle.Products); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}
	if err := json.Unmarshal(diet, &bundle.Diet); err != nil {
		return nil, fmt.Errorf("decoding diet: %w", err)
	}
	if err := json.Unmarshal(escalations, &bundle.Escalations); err != nil {
		return nil, fmt.Errorf("decoding escalations: %w", err)
	}
	if err := json.Unmarshal(appliedID, &bundle.AppliedRuleIDs); err != nil {
		return nil, fmt.Errorf("decoding applied rule ids: %w", err)
	}

	return &bundle, nil
}
