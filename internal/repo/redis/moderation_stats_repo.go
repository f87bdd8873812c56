package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
)

const (
	moderationStatsKey        = "moderation:stats"
	defaultModerationStatsTTL = 30 * time.Second
)

// ModerationStatsRepo caches the moderation dashboard aggregates. Cache
// problems are swallowed: the store remains the source of truth and a miss
// just means one extra count query.
type ModerationStatsRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewModerationStatsRepo(client *goredis.Client, ttl time.Duration) *ModerationStatsRepo {
	if ttl <= 0 {
		ttl = defaultModerationStatsTTL
	}
	return &ModerationStatsRepo{client: client, ttl: ttl}
}

func (r *ModerationStatsRepo) Get(ctx context.Context) (modsvc.Stats, bool) {
	if r.client == nil {
		return modsvc.Stats{}, false
	}

	raw, err := r.client.Get(ctx, moderationStatsKey).Bytes()
	if err != nil {
		// goredis.Nil and transport errors alike count as a miss
		return modsvc.Stats{}, false
	}

	var stats modsvc.Stats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return modsvc.Stats{}, false
	}

	return stats, true
}

func (r *ModerationStatsRepo) Set(ctx context.Context, stats modsvc.Stats) {
	if r.client == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}

	_ = r.client.Set(ctx, moderationStatsKey, raw, r.ttl).Err()
}

func (r *ModerationStatsRepo) Invalidate(ctx context.Context) {
	if r.client == nil {
		return
	}
	_ = r.client.Del(ctx, moderationStatsKey).Err()
}
