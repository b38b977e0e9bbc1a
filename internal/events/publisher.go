// Package events publishes moderation events to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/domain"
	"github.com/visiona/review-classifier/internal/telemetry"
)

// DefaultStream is the stream moderation tooling reads from.
const DefaultStream = "reviews:moderation"

// EventType names a moderation event.
type EventType string

// ReviewFlagged is published when a review is stored with a suspicious verdict.
const ReviewFlagged EventType = "review.flagged"

// publishTimeout bounds a single XADD.
const publishTimeout = 2 * time.Second

// ReviewEvent is the JSON payload stored under the "event" stream field.
type ReviewEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	EventType  EventType `json:"event_type"`
	ReviewID   string    `json:"review_id"`
	Rating     int       `json:"rating"`
	AIFeedback string    `json:"ai_feedback"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReviewFlagged builds a review.flagged event for review.
func NewReviewFlagged(review *domain.Review) ReviewEvent {
	return ReviewEvent{
		EventType:  ReviewFlagged,
		ReviewID:   review.ID,
		Rating:     review.Rating,
		AIFeedback: review.AIFeedback,
	}
}

// Publisher appends events to a Redis stream. A nil *Publisher is valid and
// publishes nothing.
type Publisher struct {
	client    *redis.Client
	stream    string
	log       infralogger.Logger
	telemetry *telemetry.Provider
}

// NewPublisher returns nil when client is nil. tp may be nil.
func NewPublisher(client *redis.Client, stream string, log infralogger.Logger, tp *telemetry.Provider) *Publisher {
	if client == nil {
		return nil
	}
	if stream == "" {
		stream = DefaultStream
	}
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Publisher{client: client, stream: stream, log: log, telemetry: tp}
}

// Publish fills in the event id and timestamp when missing and appends the event.
func (p *Publisher) Publish(ctx context.Context, event ReviewEvent) error {
	if p == nil {
		return nil
	}

	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_type": string(event.EventType),
			"event":      string(payload),
		},
	})
	publishErr := result.Err()
	if p.telemetry != nil {
		p.telemetry.RecordEventPublish(ctx, publishErr == nil)
	}
	if publishErr != nil {
		return fmt.Errorf("publish to stream %s: %w", p.stream, publishErr)
	}

	p.log.Info("Published review event",
		infralogger.String("event_type", string(event.EventType)),
		infralogger.String("review_id", event.ReviewID),
		infralogger.String("stream_id", result.Val()),
	)
	return nil
}
