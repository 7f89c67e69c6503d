package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/ReviewSentiment/internal/domain"
)

func setupTestRedis(t *testing.T) (*ReviewCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewReviewCache(client, 10*time.Minute), mr
}

func sampleReview(id int64) *domain.Review {
	conf := "0.88"
	return &domain.Review{
		ID:              id,
		CustomerName:    "Joao Pereira",
		ReviewText:      "Delivery was late but the product is fine.",
		Sentiment:       domain.SentimentNeutral,
		ConfidenceScore: &conf,
		CreatedAt:       time.Now().UTC().Truncate(time.Millisecond),
	}
}

func TestReviewCache_SetThenGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	rv := sampleReview(12)

	require.NoError(t, cache.Set(ctx, rv))
	assert.True(t, mr.Exists("sentiment:review:12"))
	assert.Equal(t, 10*time.Minute, mr.TTL("sentiment:review:12"))

	got, err := cache.Get(ctx, 12)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rv.ID, got.ID)
	assert.Equal(t, rv.Sentiment, got.Sentiment)
	require.NotNil(t, got.ConfidenceScore)
	assert.Equal(t, "0.88", *got.ConfidenceScore)
	assert.True(t, rv.CreatedAt.Equal(got.CreatedAt))
}

func TestReviewCache_Get_Miss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	got, err := cache.Get(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReviewCache_Get_Expired(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, sampleReview(1)))

	mr.FastForward(11 * time.Minute)

	got, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReviewCache_Get_CorruptPayload(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("sentiment:review:3", "{not json"))

	_, err := cache.Get(context.Background(), 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal review")
}

func TestReviewCache_Get_ConnectionError(t *testing.T) {
	cache, mr := setupTestRedis(t)
	mr.Close()

	_, err := cache.Get(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis get review")
}

func TestReviewCache_Flush(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	for i := int64(1); i <= 250; i++ {
		require.NoError(t, cache.Set(ctx, sampleReview(i)))
	}
	// Keys outside the prefix survive.
	require.NoError(t, mr.Set("sentiment:event:abc", "1"))

	require.NoError(t, cache.Flush(ctx))

	for i := int64(1); i <= 250; i++ {
		assert.False(t, mr.Exists(fmt.Sprintf("sentiment:review:%d", i)))
	}
	assert.True(t, mr.Exists("sentiment:event:abc"))
}

func TestReviewCache_Flush_Empty(t *testing.T) {
	cache, _ := setupTestRedis(t)
	require.NoError(t, cache.Flush(context.Background()))
}

func TestReviewCache_StoresJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)
	require.NoError(t, cache.Set(context.Background(), sampleReview(5)))

	raw, err := mr.Get("sentiment:review:5")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "neutral", decoded["sentiment"])
	assert.Equal(t, "0.88", decoded["confidence_score"])
}
