// Package api exposes the review classifier over HTTP.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/domain"
	"github.com/visiona/review-classifier/internal/service"
)

// Handler handles HTTP requests for the review classifier API.
type Handler struct {
	reviews *service.ReviewService
	logger  infralogger.Logger
}

// NewHandler creates a new API handler.
func NewHandler(reviews *service.ReviewService, log infralogger.Logger) *Handler {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Handler{reviews: reviews, logger: log}
}

// Classify handles POST /api/v1/classify. Nothing is stored.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	in := domain.ReviewInput{Rating: req.Rating, Comment: req.Comment}
	if err := in.Validate(); err != nil {
		h.badRequest(c, err)
		return
	}

	out := h.reviews.Classify(c.Request.Context(), in)
	c.JSON(http.StatusOK, toClassifyResponse(out))
}

// CreateReview handles POST /api/v1/reviews.
func (h *Handler) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	review, err := h.reviews.Submit(c.Request.Context(), req.submit())
	if err != nil {
		h.respondError(c, err, "Failed to submit review")
		return
	}

	c.JSON(http.StatusCreated, toReviewResponse(review))
}

// GetReview handles GET /api/v1/reviews/:id.
func (h *Handler) GetReview(c *gin.Context) {
	review, err := h.reviews.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Failed to load review")
		return
	}

	c.JSON(http.StatusOK, toReviewResponse(review))
}

// UpdateReview handles PUT /api/v1/reviews/:id.
func (h *Handler) UpdateReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	review, err := h.reviews.Resubmit(c.Request.Context(), c.Param("id"), req.submit())
	if err != nil {
		h.respondError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, toReviewResponse(review))
}

// ModerationQueue handles GET /api/v1/moderation/queue.
func (h *Handler) ModerationQueue(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		h.badRequest(c, err)
		return
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		h.badRequest(c, err)
		return
	}

	queue, err := h.reviews.ModerationQueue(c.Request.Context(), limit, offset)
	if err != nil {
		h.respondError(c, err, "Failed to load moderation queue")
		return
	}

	c.JSON(http.StatusOK, toQueueResponse(queue))
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.log(c).Debug("Invalid request", infralogger.Error(err))
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: err.Error()})
}

// respondError maps service errors to status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func (h *Handler) respondError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Review not found"})
	case errors.Is(err, domain.ErrInvalidRating), errors.Is(err, domain.ErrEmptyComment):
		h.badRequest(c, err)
	default:
		_ = c.Error(err)
		h.log(c).Error(msg, infralogger.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: msg})
	}
}

func (h *Handler) log(c *gin.Context) infralogger.Logger {
	return infralogger.FromContextOr(c.Request.Context(), h.logger)
}

// queryInt returns 0 when key is absent.
func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return n, nil
}
