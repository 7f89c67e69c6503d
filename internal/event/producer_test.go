package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	pkgkafka "github.com/utafrali/ReviewSentiment/pkg/kafka"
	"github.com/utafrali/ReviewSentiment/pkg/logger"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, topic string, event *pkgkafka.Event) error {
	return m.Called(ctx, topic, event).Error(0)
}

func testReview() *domain.Review {
	conf := "0.77"
	return &domain.Review{
		ID:              31,
		CustomerName:    "Carla",
		ReviewText:      "Good value.",
		Sentiment:       domain.SentimentPositive,
		ConfidenceScore: &conf,
		CreatedAt:       time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "sentiment.review.classified", TopicReviewClassified)
	assert.Equal(t, "sentiment.review.submitted", TopicReviewSubmitted)
}

func TestPublishReviewClassified(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, logger.Discard())
	ctx := logger.WithCorrelationID(context.Background(), "corr-9")

	var sent *pkgkafka.Event
	pub.On("Publish", ctx, TopicReviewClassified, mock.AnythingOfType("*kafka.Event")).
		Run(func(args mock.Arguments) { sent = args.Get(2).(*pkgkafka.Event) }).
		Return(nil).Once()

	require.NoError(t, p.PublishReviewClassified(ctx, testReview()))
	pub.AssertExpectations(t)

	require.NotNil(t, sent)
	assert.Equal(t, TopicReviewClassified, sent.EventType)
	assert.Equal(t, "31", sent.AggregateID)
	assert.Equal(t, SourceReviewService, sent.Source)
	assert.Equal(t, "corr-9", sent.CorrelationID)

	var data ReviewClassifiedData
	require.NoError(t, sent.UnmarshalData(&data))
	assert.Equal(t, int64(31), data.ReviewID)
	assert.Equal(t, "positive", data.Sentiment)
	require.NotNil(t, data.ConfidenceScore)
	assert.Equal(t, "0.77", *data.ConfidenceScore)
}

func TestPublishReviewClassified_Error(t *testing.T) {
	pub := new(mockPublisher)
	p := NewProducer(pub, logger.Discard())
	pub.On("Publish", mock.Anything, TopicReviewClassified, mock.Anything).Return(errors.New("no leader"))

	err := p.PublishReviewClassified(context.Background(), testReview())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish review.classified event")
}

func TestPublishReviewClassified_Disabled(t *testing.T) {
	p := NewProducer(nil, logger.Discard())
	assert.NoError(t, p.PublishReviewClassified(context.Background(), testReview()))

	var nilProducer *Producer
	assert.NoError(t, nilProducer.PublishReviewClassified(context.Background(), testReview()))
}
