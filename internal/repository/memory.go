package repository

import (
	"context"
	"sync"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// MemoryRecommendationStore keeps recommendation bundles in process memory.
// Suitable for tests and single-node deployments without Postgres.
type MemoryRecommendationStore struct {
	mu         sync.RWMutex
	byID       map[string]*domain.RecommendationBundle
	byAnalysis map[string][]*domain.RecommendationBundle
}

// NewMemoryRecommendationStore creates an empty in-memory store.
func NewMemoryRecommendationStore() *MemoryRecommendationStore {
	return &MemoryRecommendationStore{
		byID:       make(map[string]*domain.RecommendationBundle),
		byAnalysis: make(map[string][]*domain.RecommendationBundle),
	}
}

// Save stores a bundle, overwriting any previous bundle with the same ID.
func (s *MemoryRecommendationStore) Save(ctx context.Context, bundle *domain.RecommendationBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byID[bundle.ID] = bundle
	s.byAnalysis[bundle.AnalysisID] = append(s.byAnalysis[bundle.AnalysisID], bundle)
	return nil
}

// Get returns the bundle with the given ID or domain.ErrNotFound.
func (s *MemoryRecommendationStore) Get(ctx context.Context, id string) (*domain.RecommendationBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bundle, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return bundle, nil
}

// GetByAnalysis returns all bundles generated for an analysis, oldest first.
func (s *MemoryRecommendationStore) GetByAnalysis(ctx context.Context, analysisID string) ([]*domain.RecommendationBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.byAnalysis[analysisID]
	out := make([]*domain.RecommendationBundle, len(stored))
	copy(out, stored)
	return out, nil
}
