package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/ReviewSentiment/internal/domain"
)

const keyPrefix = "sentiment:review:"

// ReviewCache implements repository.ReviewCache using Redis. Reviews never
// change after creation, so entries are only ever added or flushed.
type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReviewCache creates a new Redis-backed review cache.
func NewReviewCache(client *redis.Client, ttl time.Duration) *ReviewCache {
	return &ReviewCache{client: client, ttl: ttl}
}

func key(id int64) string {
	return keyPrefix + strconv.FormatInt(id, 10)
}

// Get returns the cached review, or nil without error on a miss.
func (c *ReviewCache) Get(ctx context.Context, id int64) (*domain.Review, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get review: %w", err)
	}

	var review domain.Review
	if err := json.Unmarshal(data, &review); err != nil {
		return nil, fmt.Errorf("unmarshal review: %w", err)
	}
	return &review, nil
}

// Set stores review with the configured TTL.
func (c *ReviewCache) Set(ctx context.Context, review *domain.Review) error {
	data, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	if err := c.client.Set(ctx, key(review.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set review: %w", err)
	}
	return nil
}

// Flush removes every cached review.
func (c *ReviewCache) Flush(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del reviews: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan reviews: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del reviews: %w", err)
		}
	}
	return nil
}
