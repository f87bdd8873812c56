package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *ModerationStatsRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewModerationStatsRepo(client, time.Minute)
}

func TestModerationStatsRoundTrip(t *testing.T) {
	_, repo := newTestClient(t)
	ctx := context.Background()

	if _, ok := repo.Get(ctx); ok {
		t.Fatal("expected cache miss on empty redis")
	}

	stats := modsvc.Stats{Total: 10, Approved: 7, Rejected: 1, Reviewing: 2, AutoApproved: 6}
	repo.Set(ctx, stats)

	cached, ok := repo.Get(ctx)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if cached != stats {
		t.Fatalf("unexpected cached stats: got %+v want %+v", cached, stats)
	}
}

func TestModerationStatsInvalidate(t *testing.T) {
	_, repo := newTestClient(t)
	ctx := context.Background()

	repo.Set(ctx, modsvc.Stats{Total: 3})
	repo.Invalidate(ctx)

	if _, ok := repo.Get(ctx); ok {
		t.Fatal("expected cache miss after invalidation")
	}
}

func TestModerationStatsExpiry(t *testing.T) {
	mr, repo := newTestClient(t)
	ctx := context.Background()

	repo.Set(ctx, modsvc.Stats{Total: 5})
	mr.FastForward(2 * time.Minute)

	if _, ok := repo.Get(ctx); ok {
		t.Fatal("expected cache miss after ttl expiry")
	}
}

func TestModerationStatsNilClient(t *testing.T) {
	repo := NewModerationStatsRepo(nil, time.Minute)
	ctx := context.Background()

	repo.Set(ctx, modsvc.Stats{Total: 1})
	repo.Invalidate(ctx)
	if _, ok := repo.Get(ctx); ok {
		t.Fatal("nil client must behave as a permanent miss")
	}
}
