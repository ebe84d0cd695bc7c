package store

import (
	"context"
	"sync"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

var _ core.RouteStore = (*InMemoryRouteStore)(nil)

// InMemoryRouteStore keeps issued route plans in memory. Plans are compared
// against the injected clock, so tests can pin time.
type InMemoryRouteStore struct {
	mu    sync.RWMutex
	plans []core.RoutePlan
	clock core.Clock
}

func NewInMemoryRouteStore(clock core.Clock) *InMemoryRouteStore {
	if clock == nil {
		clock = core.SystemClock{}
	}
	return &InMemoryRouteStore{
		plans: make([]core.RoutePlan, 0),
		clock: clock,
	}
}

func (s *InMemoryRouteStore) Save(_ context.Context, plan core.RoutePlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.plans = append(s.plans, plan)
	return nil
}

func (s *InMemoryRouteStore) ListActive(_ context.Context) ([]core.RoutePlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	activePlans := make([]core.RoutePlan, 0)
	now := s.clock.Now()

	for _, p := range s.plans {
		if p.ExpiresAt.After(now) {
			activePlans = append(activePlans, p)
		}
	}

	return activePlans, nil
}

func (s *InMemoryRouteStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	var active []core.RoutePlan
	var deletedCount int64

	for _, p := range s.plans {
		if p.ExpiresAt.After(now) {
			active = append(active, p)
		} else {
			deletedCount++
		}
	}

	s.plans = active
	return deletedCount, nil
}
