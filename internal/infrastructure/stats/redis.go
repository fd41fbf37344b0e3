package stats

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/pkg/errcodes"
)

const counterKey = "churnguard:tier_counts"

// RedisRecorder keeps running per-tier prediction counters in a Redis hash,
// so the numbers survive restarts and aggregate across replicas.
type RedisRecorder struct {
	client *redis.Client
}

func NewRedisRecorder(client *redis.Client) *RedisRecorder {
	return &RedisRecorder{client: client}
}

// Record increments the counter of the tier.
func (r *RedisRecorder) Record(ctx context.Context, tier entity.RiskTier) error {
	if err := r.client.HIncrBy(ctx, counterKey, tier.String(), 1).Err(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to increment tier counter")
	}
	return nil
}

// Snapshot returns the counters for all tiers; tiers never seen read as zero.
func (r *RedisRecorder) Snapshot(ctx context.Context) (map[entity.RiskTier]int64, error) {
	raw, err := r.client.HGetAll(ctx, counterKey).Result()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to read tier counters")
	}

	counts := make(map[entity.RiskTier]int64, len(entity.AllTiers()))
	for _, tier := range entity.AllTiers() {
		value, ok := raw[tier.String()]
		if !ok {
			counts[tier] = 0
			continue
		}

		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "corrupt tier counter "+tier.String())
		}
		counts[tier] = count
	}

	return counts, nil
}

// Reset drops all counters.
func (r *RedisRecorder) Reset(ctx context.Context) error {
	if err := r.client.Del(ctx, counterKey).Err(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to reset tier counters")
	}
	return nil
}
