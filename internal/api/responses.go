package api

import (
	"time"

	"github.com/visiona/review-classifier/internal/classifier"
	"github.com/visiona/review-classifier/internal/domain"
	"github.com/visiona/review-classifier/internal/service"
)

// ClassifyRequest is the body of POST /api/v1/classify.
type ClassifyRequest struct {
	Rating  int    `binding:"required,min=1,max=5" json:"rating"`
	Comment string `binding:"required"             json:"comment"`
}

// ClassifyResponse carries a verdict in wire form and its parts.
type ClassifyResponse struct {
	Verdict string `json:"verdict"`
	Label   string `json:"label"`
	Reason  string `json:"reason"`
	Source  string `json:"source"`
}

// ReviewRequest is the body of POST /api/v1/reviews and PUT /api/v1/reviews/:id.
type ReviewRequest struct {
	ArchitectID string `json:"architect_id"`
	ClientID    string `json:"client_id"`
	Rating      int    `binding:"required,min=1,max=5" json:"rating"`
	Comment     string `binding:"required"             json:"comment"`
}

// ReviewResponse is a stored review.
type ReviewResponse struct {
	ID          string    `json:"id"`
	ArchitectID string    `json:"architect_id"`
	ClientID    string    `json:"client_id"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	AIFeedback  string    `json:"ai_feedback"`
	Flagged     bool      `json:"flagged"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QueueResponse is one page of the moderation queue.
type QueueResponse struct {
	Reviews []ReviewResponse `json:"reviews"`
	Total   int              `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

// ErrorResponse is returned for every non-2xx status.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (r ReviewRequest) submit() service.SubmitRequest {
	return service.SubmitRequest{
		ArchitectID: r.ArchitectID,
		ClientID:    r.ClientID,
		Rating:      r.Rating,
		Comment:     r.Comment,
	}
}

func toClassifyResponse(out classifier.Outcome) ClassifyResponse {
	return ClassifyResponse{
		Verdict: out.Verdict.String(),
		Label:   string(out.Verdict.Label),
		Reason:  out.Verdict.Reason,
		Source:  string(out.Source),
	}
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		ArchitectID: r.ArchitectID,
		ClientID:    r.ClientID,
		Rating:      r.Rating,
		Comment:     r.Comment,
		AIFeedback:  r.AIFeedback,
		Flagged:     r.IsFlagged(),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func toQueueResponse(q *service.Queue) QueueResponse {
	reviews := make([]ReviewResponse, len(q.Reviews))
	for i, r := range q.Reviews {
		reviews[i] = toReviewResponse(r)
	}
	return QueueResponse{Reviews: reviews, Total: q.Total, Limit: q.Limit, Offset: q.Offset}
}
