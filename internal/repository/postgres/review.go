package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/ReviewSentiment/internal/domain"
	"github.com/utafrali/ReviewSentiment/pkg/database"
	apperrors "github.com/utafrali/ReviewSentiment/pkg/errors"
)

const reviewColumns = `id, customer_name, review_text, sentiment, confidence_score, created_at`

const (
	insertReviewSQL = `
		INSERT INTO reviews (customer_name, review_text, sentiment, confidence_score, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	getReviewSQL = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	listReviewsSQL = `SELECT ` + reviewColumns + ` FROM reviews ORDER BY id ASC LIMIT $1 OFFSET $2`

	countBySentimentSQL = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE sentiment = 'positive'),
		       COUNT(*) FILTER (WHERE sentiment = 'negative'),
		       COUNT(*) FILTER (WHERE sentiment = 'neutral')
		FROM reviews
		WHERE created_at >= $1 AND created_at < $2`

	statsSQL = `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE sentiment = 'positive'),
		       COUNT(*) FILTER (WHERE sentiment = 'negative'),
		       COUNT(*) FILTER (WHERE sentiment = 'neutral'),
		       MIN(created_at),
		       MAX(created_at)
		FROM reviews`

	deleteAllReviewsSQL = `DELETE FROM reviews`
)

// ReviewRepository implements repository.ReviewRepository on PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts review in its own transaction and sets the generated id
// and stored timestamp on it.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateReview", insertReviewSQL)
	defer func() { end(err) }()

	err = database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, insertReviewSQL,
			review.CustomerName,
			review.ReviewText,
			string(review.Sentiment),
			review.ConfidenceScore,
			review.CreatedAt,
		).Scan(&review.ID, &review.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetByID retrieves a review by id.
func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (_ *domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "GetReview", getReviewSQL)
	defer func() { end(err) }()

	review, err := scanReview(r.db.QueryRow(ctx, getReviewSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review %d: %w", id, err)
	}
	return review, nil
}

// List returns a page of reviews in creation order.
func (r *ReviewRepository) List(ctx context.Context, skip, limit int) (_ []domain.Review, err error) {
	ctx, end := database.TraceQuery(ctx, "ListReviews", listReviewsSQL)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listReviewsSQL, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0, limit)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, *review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return reviews, nil
}

// CountBySentiment counts reviews per label in the half-open window
// [from, to) with a single statement, so the parts always add up to the total.
func (r *ReviewRepository) CountBySentiment(ctx context.Context, from, to time.Time) (_ domain.SentimentCounts, err error) {
	ctx, end := database.TraceQuery(ctx, "CountReviewsBySentiment", countBySentimentSQL)
	defer func() { end(err) }()

	var c domain.SentimentCounts
	err = r.db.QueryRow(ctx, countBySentimentSQL, from, to).Scan(&c.Total, &c.Positive, &c.Negative, &c.Neutral)
	if err != nil {
		return domain.SentimentCounts{}, fmt.Errorf("count reviews by sentiment: %w", err)
	}
	return c, nil
}

// Stats returns per-label counts and the first and last review timestamps.
func (r *ReviewRepository) Stats(ctx context.Context) (_ *domain.Stats, err error) {
	ctx, end := database.TraceQuery(ctx, "ReviewStats", statsSQL)
	defer func() { end(err) }()

	var s domain.Stats
	err = r.db.QueryRow(ctx, statsSQL).Scan(
		&s.Counts.Total,
		&s.Counts.Positive,
		&s.Counts.Negative,
		&s.Counts.Neutral,
		&s.First,
		&s.Last,
	)
	if err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	return &s, nil
}

// DeleteAll removes every review.
func (r *ReviewRepository) DeleteAll(ctx context.Context) (_ int64, err error) {
	ctx, end := database.TraceQuery(ctx, "DeleteAllReviews", deleteAllReviewsSQL)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, deleteAllReviewsSQL)
	if err != nil {
		return 0, fmt.Errorf("delete reviews: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanReview(row pgx.Row) (*domain.Review, error) {
	var (
		review    domain.Review
		sentiment string
	)
	if err := row.Scan(
		&review.ID,
		&review.CustomerName,
		&review.ReviewText,
		&sentiment,
		&review.ConfidenceScore,
		&review.CreatedAt,
	); err != nil {
		return nil, err
	}
	review.Sentiment = domain.Sentiment(sentiment)
	return &review, nil
}
