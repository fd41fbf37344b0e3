package stats

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"churnguard/internal/domain/entity"
)

func testRecorder(t *testing.T) *RedisRecorder {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	recorder := NewRedisRecorder(client)
	require.NoError(t, recorder.Reset(context.Background()))

	return recorder
}

func TestRedisRecorder(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	recorder := testRecorder(t)

	rq.NoError(recorder.Record(ctx, entity.TierHigh))
	rq.NoError(recorder.Record(ctx, entity.TierHigh))
	rq.NoError(recorder.Record(ctx, entity.TierLow))

	counts, err := recorder.Snapshot(ctx)
	rq.NoError(err)

	rq.Equal(int64(2), counts[entity.TierHigh])
	rq.Equal(int64(1), counts[entity.TierLow])
	rq.Equal(int64(0), counts[entity.TierCritical])
	rq.Len(counts, len(entity.AllTiers()))
}
