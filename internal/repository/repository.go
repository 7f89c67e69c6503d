package repository

import (
	"context"
	"time"

	"github.com/utafrali/ReviewSentiment/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	// Create inserts review and fills in its ID and CreatedAt.
	Create(ctx context.Context, review *domain.Review) error

	// GetByID returns the review or an apperrors.NotFound error.
	GetByID(ctx context.Context, id int64) (*domain.Review, error)

	// List returns reviews ordered by id.
	List(ctx context.Context, skip, limit int) ([]domain.Review, error)

	// CountBySentiment counts reviews with from <= created_at < to.
	CountBySentiment(ctx context.Context, from, to time.Time) (domain.SentimentCounts, error)

	// Stats summarises the whole table.
	Stats(ctx context.Context) (*domain.Stats, error)

	// DeleteAll removes every review and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)
}

// ReviewCache holds immutable reviews by id.
type ReviewCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, id int64) (*domain.Review, error)
	Set(ctx context.Context, review *domain.Review) error
	Flush(ctx context.Context) error
}
