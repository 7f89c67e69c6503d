package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	pkgkafka "github.com/utafrali/ReviewSentiment/pkg/kafka"
	"github.com/utafrali/ReviewSentiment/pkg/logger"
)

// Topics owned by the review sentiment service.
var (
	TopicReviewClassified = pkgkafka.Topic("review", "classified")
	TopicReviewSubmitted  = pkgkafka.Topic("review", "submitted")
)

// SourceReviewService identifies events originating from this service.
const SourceReviewService = "review-sentiment"

// ReviewClassifiedData is the payload for a review.classified event.
type ReviewClassifiedData struct {
	ReviewID        int64     `json:"review_id"`
	CustomerName    string    `json:"customer_name"`
	Sentiment       string    `json:"sentiment"`
	ConfidenceScore *string   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at"`
}

// Publisher sends an event to a topic. *pkgkafka.Producer implements it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes review domain events. A Producer without a publisher
// drops every event.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer. kafka may be nil when messaging
// is disabled.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishReviewClassified publishes a review.classified event.
func (p *Producer) PublishReviewClassified(ctx context.Context, review *domain.Review) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := ReviewClassifiedData{
		ReviewID:        review.ID,
		CustomerName:    review.CustomerName,
		Sentiment:       string(review.Sentiment),
		ConfidenceScore: review.ConfidenceScore,
		CreatedAt:       review.CreatedAt,
	}

	event, err := pkgkafka.NewEvent(TopicReviewClassified, strconv.FormatInt(review.ID, 10), SourceReviewService, data)
	if err != nil {
		return fmt.Errorf("create review.classified event: %w", err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, TopicReviewClassified, event); err != nil {
		return fmt.Errorf("publish review.classified event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.classified event",
		slog.Int64("review_id", review.ID),
	)

	return nil
}
