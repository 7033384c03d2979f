package articles

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), server
}

func TestRecordViewAccumulates(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	articleID := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, cache.RecordView(ctx, articleID))
	}

	counts, err := cache.DrainViews(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), counts[articleID])
}

func TestDrainViewsClearsCounters(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	first, second := uuid.New(), uuid.New()
	require.NoError(t, cache.RecordView(ctx, first))
	require.NoError(t, cache.RecordView(ctx, second))
	require.NoError(t, cache.RecordView(ctx, second))

	counts, err := cache.DrainViews(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	require.Equal(t, int64(1), counts[first])
	require.Equal(t, int64(2), counts[second])

	counts, err = cache.DrainViews(ctx)
	require.NoError(t, err)
	require.Empty(t, counts, "drain must clear the hash")
}

func TestDrainViewsSkipsMalformedEntries(t *testing.T) {
	cache, server := newTestCache(t)
	ctx := context.Background()

	articleID := uuid.New()
	server.HSet(viewCountKey, articleID.String(), "5")
	server.HSet(viewCountKey, "not-a-uuid", "9")
	server.HSet(viewCountKey, uuid.NewString(), "not-a-number")

	counts, err := cache.DrainViews(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	require.Equal(t, int64(5), counts[articleID])
}

func TestFetchLatestCachesLoaderResult(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	want := []Article{{ID: uuid.New(), Title: "First"}}
	loads := 0
	loader := func(context.Context) ([]Article, error) {
		loads++
		return want, nil
	}

	got, err := cache.FetchLatest(ctx, loader)
	require.NoError(t, err)
	require.Equal(t, want[0].ID, got[0].ID)

	got, err = cache.FetchLatest(ctx, loader)
	require.NoError(t, err)
	require.Equal(t, want[0].ID, got[0].ID)
	require.Equal(t, 1, loads, "second fetch must come from the cache")
}

func TestInvalidateForcesReload(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) ([]Article, error) {
		loads++
		return []Article{{ID: uuid.New()}}, nil
	}

	_, err := cache.FetchLatest(ctx, loader)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.FetchLatest(ctx, loader)
	require.NoError(t, err)
	require.Equal(t, 2, loads)
}

func TestFetchLatestPropagatesLoaderError(t *testing.T) {
	cache, _ := newTestCache(t)
	loaderErr := errors.New("db down")

	_, err := cache.FetchLatest(context.Background(), func(context.Context) ([]Article, error) {
		return nil, loaderErr
	})
	require.ErrorIs(t, err, loaderErr)
}

func TestNilCacheDegradesToPassThrough(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.RecordView(ctx, uuid.New()))

	counts, err := cache.DrainViews(ctx)
	require.NoError(t, err)
	require.Empty(t, counts)

	loads := 0
	_, err = cache.FetchLatest(ctx, func(context.Context) ([]Article, error) {
		loads++
		return nil, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, loads)
	require.NoError(t, cache.Invalidate(ctx))
}
