package database

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/visiona/review-classifier/internal/domain"
)

// MemoryReviewRepository keeps reviews in process memory. It is used when
// no database is configured and in tests.
type MemoryReviewRepository struct {
	mu      sync.RWMutex
	reviews map[string]domain.Review
}

// NewMemoryReviewRepository creates an empty repository.
func NewMemoryReviewRepository() *MemoryReviewRepository {
	return &MemoryReviewRepository{reviews: make(map[string]domain.Review)}
}

func (m *MemoryReviewRepository) Create(_ context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.reviews[review.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateReview, review.ID)
	}
	m.reviews[review.ID] = *review
	return nil
}

func (m *MemoryReviewRepository) GetByID(_ context.Context, id string) (*domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	review, ok := m.reviews[id]
	if !ok {
		return nil, domain.ErrReviewNotFound
	}
	return &review, nil
}

func (m *MemoryReviewRepository) Update(_ context.Context, review *domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.reviews[review.ID]
	if !ok {
		return domain.ErrReviewNotFound
	}
	stored.Rating = review.Rating
	stored.Comment = review.Comment
	stored.AIFeedback = review.AIFeedback
	stored.UpdatedAt = review.UpdatedAt
	m.reviews[review.ID] = stored
	return nil
}

func (m *MemoryReviewRepository) ListSuspicious(_ context.Context, limit, offset int) ([]*domain.Review, error) {
	flagged := m.flagged()
	if offset >= len(flagged) {
		return []*domain.Review{}, nil
	}
	end := min(offset+limit, len(flagged))
	return flagged[offset:end], nil
}

func (m *MemoryReviewRepository) CountSuspicious(_ context.Context) (int, error) {
	return len(m.flagged()), nil
}

func (m *MemoryReviewRepository) Ping(context.Context) error { return nil }

// flagged returns copies of the suspicious reviews, newest first.
func (m *MemoryReviewRepository) flagged() []*domain.Review {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*domain.Review, 0, len(m.reviews))
	for _, r := range m.reviews {
		if r.IsFlagged() {
			review := r
			out = append(out, &review)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
