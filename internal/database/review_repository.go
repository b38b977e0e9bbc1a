package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/visiona/review-classifier/internal/domain"
)

// ErrDuplicateReview is returned when a review id already exists.
var ErrDuplicateReview = errors.New("review already exists")

const uniqueViolation = "23505"

const reviewColumns = `id, architect_id, client_id, rating, comment, ai_feedback, created_at, updated_at`

// ReviewRepository persists reviews in the reviews table.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a repository over db.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts review. ID and timestamps must already be set.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES (:id, :architect_id, :client_id, :rating, :comment, :ai_feedback, :created_at, :updated_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrDuplicateReview, review.ID)
		}
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

// GetByID returns domain.ErrReviewNotFound when no row matches.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	var review domain.Review
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// Update rewrites the mutable fields of review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	query := `
		UPDATE reviews
		SET rating = $2, comment = $3, ai_feedback = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		review.ID, review.Rating, review.Comment, review.AIFeedback, review.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrReviewNotFound
	}
	return nil
}

// ListSuspicious returns flagged reviews, newest first.
func (r *ReviewRepository) ListSuspicious(ctx context.Context, limit, offset int) ([]*domain.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE ai_feedback LIKE 'suspicious:%'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	reviews := make([]*domain.Review, 0, limit)
	if err := r.db.SelectContext(ctx, &reviews, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list suspicious reviews: %w", err)
	}
	return reviews, nil
}

// CountSuspicious returns the number of flagged reviews.
func (r *ReviewRepository) CountSuspicious(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM reviews WHERE ai_feedback LIKE 'suspicious:%'`

	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count suspicious reviews: %w", err)
	}
	return count, nil
}

// Ping checks connectivity.
func (r *ReviewRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
