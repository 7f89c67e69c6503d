package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/utafrali/ReviewSentiment/pkg/logger"
)

type failingStore struct{}

func (failingStore) Contains(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func (failingStore) Add(context.Context, string) error {
	return errors.New("store down")
}

func TestMemoryIdempotencyStore_AddAndContains(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	ctx := context.Background()

	ok, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Add(ctx, "evt-1"))

	ok, err = store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryIdempotencyStore_Expiry(t *testing.T) {
	store := NewMemoryIdempotencyStore(20 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, "evt-1"))

	time.Sleep(40 * time.Millisecond)

	ok, err := store.Contains(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryIdempotencyStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryIdempotencyStore(time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("evt-%d", i)
			_ = store.Add(ctx, id)
			_, _ = store.Contains(ctx, id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, store.Len())
}

func TestRedisIdempotencyStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisIdempotencyStore(client, time.Minute)
	ctx := context.Background()

	ok, err := store.Contains(ctx, "evt-9")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Add(ctx, "evt-9"))
	assert.True(t, mr.Exists("sentiment:event:evt-9"))

	ok, err = store.Contains(ctx, "evt-9")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.Contains(ctx, "evt-9")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisIdempotencyStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	_, err := NewRedisIdempotencyStore(client, time.Minute).Contains(context.Background(), "x")
	assert.Error(t, err)
}

func TestIdempotentHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate is skipped", func(t *testing.T) {
		calls := 0
		h := IdempotentHandler(NewMemoryIdempotencyStore(time.Hour), func(context.Context, *Event) error {
			calls++
			return nil
		}, logger.Discard())

		event := &Event{EventID: "e1", EventType: "review.submitted"}
		require.NoError(t, h(ctx, event))
		require.NoError(t, h(ctx, event))
		assert.Equal(t, 1, calls)
	})

	t.Run("empty event id passes through", func(t *testing.T) {
		calls := 0
		h := IdempotentHandler(NewMemoryIdempotencyStore(time.Hour), func(context.Context, *Event) error {
			calls++
			return nil
		}, logger.Discard())

		require.NoError(t, h(ctx, &Event{EventType: "x"}))
		require.NoError(t, h(ctx, &Event{EventType: "x"}))
		assert.Equal(t, 2, calls)
	})

	t.Run("handler error does not mark processed", func(t *testing.T) {
		store := NewMemoryIdempotencyStore(time.Hour)
		boom := errors.New("boom")
		h := IdempotentHandler(store, func(context.Context, *Event) error { return boom }, logger.Discard())

		assert.ErrorIs(t, h(ctx, &Event{EventID: "e2"}), boom)
		ok, _ := store.Contains(ctx, "e2")
		assert.False(t, ok)
	})

	t.Run("store failure processes anyway", func(t *testing.T) {
		calls := 0
		h := IdempotentHandler(failingStore{}, func(context.Context, *Event) error {
			calls++
			return nil
		}, logger.Discard())

		require.NoError(t, h(ctx, &Event{EventID: "e3"}))
		assert.Equal(t, 1, calls)
	})
}
