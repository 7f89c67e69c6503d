package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/internal/repository"
	apperrors "github.com/utafrali/ReviewSentiment/pkg/errors"
)

// storeTimeout bounds the insert and publish that follow classification.
const storeTimeout = 5 * time.Second

// Classifier labels review text. Implementations never fail; they fall back
// to domain.FallbackClassification instead.
type Classifier interface {
	Classify(ctx context.Context, text string) domain.Classification
}

// EventPublisher announces stored reviews.
type EventPublisher interface {
	PublishReviewClassified(ctx context.Context, review *domain.Review) error
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	repo       repository.ReviewRepository
	cache      repository.ReviewCache
	classifier Classifier
	publisher  EventPublisher
	logger     *slog.Logger
}

// NewReviewService creates a new review service. cache and publisher may be
// nil.
func NewReviewService(
	repo repository.ReviewRepository,
	cache repository.ReviewCache,
	classifier Classifier,
	publisher EventPublisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:       repo,
		cache:      cache,
		classifier: classifier,
		publisher:  publisher,
		logger:     logger,
	}
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	CustomerName string
	ReviewText   string
	// CreatedAt backdates the review. Zero or nil means now.
	CreatedAt *time.Time
}

// Submit classifies the review text once, stores the result and returns the
// stored review.
func (s *ReviewService) Submit(ctx context.Context, input SubmitReviewInput) (*domain.Review, error) {
	name := strings.TrimSpace(input.CustomerName)
	text := strings.TrimSpace(input.ReviewText)

	if name == "" {
		return nil, apperrors.InvalidInput("customer_name is required")
	}
	if utf8.RuneCountInString(name) > domain.MaxCustomerNameLength {
		return nil, apperrors.InvalidInput(fmt.Sprintf("customer_name must be at most %d characters", domain.MaxCustomerNameLength))
	}
	if strings.ContainsRune(name, 0) {
		return nil, apperrors.InvalidInput("customer_name must not contain NUL characters")
	}
	if text == "" {
		return nil, apperrors.InvalidInput("review_text is required")
	}
	if strings.ContainsRune(text, 0) {
		return nil, apperrors.InvalidInput("review_text must not contain NUL characters")
	}

	result := s.classifier.Classify(ctx, text)

	// The classifier may have used up the caller's deadline; the fallback
	// result must still be stored.
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
	defer cancel()

	createdAt := time.Now().UTC()
	if input.CreatedAt != nil && !input.CreatedAt.IsZero() {
		createdAt = input.CreatedAt.UTC()
	}

	confidence := result.Confidence
	review := &domain.Review{
		CustomerName:    name,
		ReviewText:      text,
		Sentiment:       result.Sentiment,
		ConfidenceScore: &confidence,
		CreatedAt:       createdAt,
	}

	if err := s.repo.Create(storeCtx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.logger.InfoContext(ctx, "review classified",
		slog.Int64("review_id", review.ID),
		slog.String("sentiment", string(review.Sentiment)),
		slog.String("confidence", confidence),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishReviewClassified(storeCtx, review); err != nil {
			s.logger.WarnContext(ctx, "failed to publish review.classified event",
				slog.Int64("review_id", review.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return review, nil
}

// GetReview retrieves a review by its ID, reading through the cache when one
// is configured.
func (s *ReviewService) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "review cache read failed",
				slog.Int64("review_id", id),
				slog.String("error", err.Error()),
			)
		} else if cached != nil {
			return cached, nil
		}
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get review by id: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, review); err != nil {
			s.logger.WarnContext(ctx, "review cache write failed",
				slog.Int64("review_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return review, nil
}

// ListReviews returns a page of reviews in creation order. skip and limit are
// validated by the caller.
func (s *ReviewService) ListReviews(ctx context.Context, skip, limit int) ([]domain.Review, error) {
	reviews, err := s.repo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}

// Clear deletes every review and empties the cache. It returns the number of
// deleted reviews.
func (s *ReviewService) Clear(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear reviews: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Flush(ctx); err != nil {
			return n, fmt.Errorf("flush review cache: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "reviews cleared", slog.Int64("deleted", n))
	return n, nil
}

// Stats summarises all stored reviews.
func (s *ReviewService) Stats(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	return stats, nil
}
