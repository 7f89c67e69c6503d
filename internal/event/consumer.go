package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/internal/service"
	apperrors "github.com/utafrali/ReviewSentiment/pkg/errors"
	pkgkafka "github.com/utafrali/ReviewSentiment/pkg/kafka"
	"github.com/utafrali/ReviewSentiment/pkg/logger"
)

// ReviewSubmitter classifies and stores a review.
type ReviewSubmitter interface {
	Submit(ctx context.Context, input service.SubmitReviewInput) (*domain.Review, error)
}

// ReviewSubmittedData is the payload of a review.submitted event.
type ReviewSubmittedData struct {
	CustomerName string `json:"customer_name"`
	ReviewText   string `json:"review_text"`
}

// ConsumerHandler turns review.submitted events into stored reviews.
type ConsumerHandler struct {
	reviews ReviewSubmitter
	logger  *slog.Logger
}

// NewConsumerHandler creates a new event consumer handler.
func NewConsumerHandler(reviews ReviewSubmitter, logger *slog.Logger) *ConsumerHandler {
	return &ConsumerHandler{
		reviews: reviews,
		logger:  logger,
	}
}

// Handle processes one event. Undecodable or invalid submissions are marked
// permanent so the consumer dead-letters them without retrying.
func (h *ConsumerHandler) Handle(ctx context.Context, event *pkgkafka.Event) error {
	if event.EventType != TopicReviewSubmitted {
		h.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}

	ctx = logger.WithEventID(ctx, event.EventID)
	if event.CorrelationID != "" {
		ctx = logger.WithCorrelationID(ctx, event.CorrelationID)
	}

	var data ReviewSubmittedData
	if err := event.UnmarshalData(&data); err != nil {
		return fmt.Errorf("decode review.submitted payload: %w: %w", pkgkafka.ErrPermanent, err)
	}

	review, err := h.reviews.Submit(ctx, service.SubmitReviewInput{
		CustomerName: data.CustomerName,
		ReviewText:   data.ReviewText,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			return fmt.Errorf("reject review.submitted event: %w: %w", pkgkafka.ErrPermanent, err)
		}
		return fmt.Errorf("submit review from event: %w", err)
	}

	logger.WithContext(ctx, h.logger).InfoContext(ctx, "review submitted from event",
		slog.Int64("review_id", review.ID),
		slog.String("sentiment", string(review.Sentiment)),
	)
	return nil
}

// ConsumerGroupID is the default consumer group of the service.
const ConsumerGroupID = "review-sentiment"

// NewSubmittedConsumer creates the consumer for review.submitted. Duplicate
// event ids are skipped using store, and exhausted messages go to dlq.
func NewSubmittedConsumer(
	brokers []string,
	groupID string,
	handler *ConsumerHandler,
	store pkgkafka.IdempotencyStore,
	dlq pkgkafka.DeadLetterPublisher,
	metrics *pkgkafka.Metrics,
	logger *slog.Logger,
) *pkgkafka.Consumer {
	if groupID == "" {
		groupID = ConsumerGroupID
	}
	cfg := pkgkafka.ConsumerConfig{
		Brokers:      brokers,
		GroupID:      groupID,
		Topic:        TopicReviewSubmitted,
		MinBytes:     1,
		MaxBytes:     10e6,
		RetryBackoff: 500 * time.Millisecond,
	}
	return pkgkafka.NewConsumer(cfg, pkgkafka.IdempotentHandler(store, handler.Handle, logger), dlq, metrics, logger)
}
