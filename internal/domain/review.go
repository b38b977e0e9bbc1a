// Package domain holds the review and verdict types shared across the service.
package domain

import (
	"errors"
	"strings"
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrReviewNotFound   = errors.New("review not found")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrEmptyComment     = errors.New("comment must not be empty")
	ErrMalformedVerdict = errors.New("malformed verdict")
)

// ReviewInput is what the classifier looks at. Any rating and any comment,
// including the empty string, is accepted.
type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Validate applies the submission rules. The classifier itself never calls it.
func (in ReviewInput) Validate() error {
	if in.Rating < MinRating || in.Rating > MaxRating {
		return ErrInvalidRating
	}
	if strings.TrimSpace(in.Comment) == "" {
		return ErrEmptyComment
	}
	return nil
}

// Review is a persisted client review of an architect.
type Review struct {
	ID          string    `db:"id"           json:"id"`
	ArchitectID string    `db:"architect_id" json:"architect_id"`
	ClientID    string    `db:"client_id"    json:"client_id"`
	Rating      int       `db:"rating"       json:"rating"`
	Comment     string    `db:"comment"      json:"comment"`
	AIFeedback  string    `db:"ai_feedback"  json:"ai_feedback"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}

// Input returns the classifier input for r.
func (r *Review) Input() ReviewInput {
	return ReviewInput{Rating: r.Rating, Comment: r.Comment}
}

// IsFlagged reports whether the stored annotation is suspicious.
func (r *Review) IsFlagged() bool {
	return strings.HasPrefix(r.AIFeedback, SuspiciousPrefix)
}
