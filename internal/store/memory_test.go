package store

import (
	"context"
	"testing"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

func TestInMemoryRouteStore(t *testing.T) {
	now := time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC)
	store := NewInMemoryRouteStore(core.ClockFunc(func() time.Time { return now }))
	ctx := context.Background()

	plans := []core.RoutePlan{
		{ID: "live-1", Capability: "cache.redis", ExpiresAt: now.Add(time.Minute)},
		{ID: "dead-1", Capability: "cache.redis", ExpiresAt: now.Add(-time.Minute)},
		{ID: "dead-2", Capability: "queue.kafka", ExpiresAt: now}, // expiry is not active
		{ID: "live-2", Capability: "database.postgres", ExpiresAt: now.Add(time.Hour)},
	}
	for _, plan := range plans {
		if err := store.Save(ctx, plan); err != nil {
			t.Fatalf("Save(%s) error = %v", plan.ID, err)
		}
	}

	active, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() error = %v", err)
	}
	if len(active) != 2 || active[0].ID != "live-1" || active[1].ID != "live-2" {
		t.Errorf("ListActive() = %+v", active)
	}

	deleted, err := store.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("DeleteExpired() = %d, want 2", deleted)
	}

	// second sweep finds nothing
	deleted, err = store.DeleteExpired(ctx)
	if err != nil || deleted != 0 {
		t.Errorf("second DeleteExpired() = %d, %v", deleted, err)
	}

	active, _ = store.ListActive(ctx)
	if len(active) != 2 {
		t.Errorf("sweep dropped live plans: %+v", active)
	}
}
