// Package service implements review submission and moderation on top of the
// classifier, the review store and the moderation event stream.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/classifier"
	"github.com/visiona/review-classifier/internal/domain"
	"github.com/visiona/review-classifier/internal/events"
)

const (
	DefaultQueueLimit = 50
	MaxQueueLimit     = 200
)

// ReviewStore persists reviews.
type ReviewStore interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	ListSuspicious(ctx context.Context, limit, offset int) ([]*domain.Review, error)
	CountSuspicious(ctx context.Context) (int, error)
}

// Evaluator produces a verdict outcome for a review.
type Evaluator interface {
	Evaluate(ctx context.Context, in domain.ReviewInput) classifier.Outcome
}

// EventPublisher publishes moderation events.
type EventPublisher interface {
	Publish(ctx context.Context, event events.ReviewEvent) error
}

// SubmitRequest is a new or resubmitted review.
type SubmitRequest struct {
	ArchitectID string
	ClientID    string
	Rating      int
	Comment     string
}

func (r SubmitRequest) input() domain.ReviewInput {
	return domain.ReviewInput{Rating: r.Rating, Comment: r.Comment}
}

// Queue is one page of the moderation queue.
type Queue struct {
	Reviews []*domain.Review
	Total   int
	Limit   int
	Offset  int
}

// ReviewService coordinates classification with storage and events.
type ReviewService struct {
	store     ReviewStore
	evaluator Evaluator
	publisher EventPublisher
	logger    infralogger.Logger
	now       func() time.Time
}

// NewReviewService creates a service. publisher may be nil.
func NewReviewService(store ReviewStore, evaluator Evaluator, publisher EventPublisher, log infralogger.Logger) *ReviewService {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &ReviewService{
		store:     store,
		evaluator: evaluator,
		publisher: publisher,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Classify evaluates in without storing anything.
func (s *ReviewService) Classify(ctx context.Context, in domain.ReviewInput) classifier.Outcome {
	return s.evaluator.Evaluate(ctx, in)
}

// Submit validates, classifies and stores a new review.
func (s *ReviewService) Submit(ctx context.Context, req SubmitRequest) (*domain.Review, error) {
	if err := req.input().Validate(); err != nil {
		return nil, err
	}

	out := s.evaluator.Evaluate(ctx, req.input())
	now := s.now()
	review := &domain.Review{
		ID:          uuid.New().String(),
		ArchitectID: req.ArchitectID,
		ClientID:    req.ClientID,
		Rating:      req.Rating,
		Comment:     req.Comment,
		AIFeedback:  out.Verdict.String(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("store review: %w", err)
	}

	s.log(ctx).Info("Review submitted",
		infralogger.String("review_id", review.ID),
		infralogger.String("label", string(out.Verdict.Label)),
		infralogger.String("source", string(out.Source)),
	)
	s.notify(ctx, review)
	return review, nil
}

// Resubmit replaces the rating and comment of an existing review and
// recomputes its verdict.
func (s *ReviewService) Resubmit(ctx context.Context, id string, req SubmitRequest) (*domain.Review, error) {
	if err := req.input().Validate(); err != nil {
		return nil, err
	}

	review, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	out := s.evaluator.Evaluate(ctx, req.input())
	review.Rating = req.Rating
	review.Comment = req.Comment
	review.AIFeedback = out.Verdict.String()
	review.UpdatedAt = s.now()

	if updateErr := s.store.Update(ctx, review); updateErr != nil {
		return nil, fmt.Errorf("update review: %w", updateErr)
	}

	s.log(ctx).Info("Review resubmitted",
		infralogger.String("review_id", review.ID),
		infralogger.String("label", string(out.Verdict.Label)),
		infralogger.String("source", string(out.Source)),
	)
	s.notify(ctx, review)
	return review, nil
}

// Get returns a stored review.
func (s *ReviewService) Get(ctx context.Context, id string) (*domain.Review, error) {
	return s.store.GetByID(ctx, id)
}

// ModerationQueue lists flagged reviews, newest first. limit is clamped to
// [1, MaxQueueLimit] with DefaultQueueLimit for non-positive values.
func (s *ReviewService) ModerationQueue(ctx context.Context, limit, offset int) (*Queue, error) {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	limit = min(limit, MaxQueueLimit)
	offset = max(offset, 0)

	reviews, err := s.store.ListSuspicious(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list moderation queue: %w", err)
	}
	total, err := s.store.CountSuspicious(ctx)
	if err != nil {
		return nil, fmt.Errorf("count moderation queue: %w", err)
	}

	return &Queue{Reviews: reviews, Total: total, Limit: limit, Offset: offset}, nil
}

// notify publishes review.flagged for suspicious reviews. Failures are logged only.
func (s *ReviewService) notify(ctx context.Context, review *domain.Review) {
	if s.publisher == nil || !review.IsFlagged() {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewReviewFlagged(review)); err != nil {
		s.log(ctx).Error("Failed to publish review event",
			infralogger.String("review_id", review.ID),
			infralogger.Error(err),
		)
	}
}

func (s *ReviewService) log(ctx context.Context) infralogger.Logger {
	return infralogger.FromContextOr(ctx, s.logger)
}
