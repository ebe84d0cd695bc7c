package policy

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// Manager holds the active policy bundle behind an atomic pointer so
// resolutions read it lock-free while background sync swaps it whole.
// A resolution that already loaded a bundle keeps using that snapshot; the
// swap only affects subsequent calls.
type Manager struct {
	current atomic.Pointer[core.PolicyBundle]
	mu      sync.Mutex
}

func NewManager(initial *core.PolicyBundle) (*Manager, error) {
	if initial == nil {
		return nil, fmt.Errorf("initial policy bundle required")
	}
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{}
	m.current.Store(initial)
	return m, nil
}

// Bundle returns the active bundle snapshot.
func (m *Manager) Bundle() *core.PolicyBundle {
	return m.current.Load()
}

// Update validates and atomically installs a new bundle. On validation
// failure the previous bundle stays active.
func (m *Manager) Update(bundle *core.PolicyBundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if bundle == nil {
		return fmt.Errorf("policy bundle must not be nil")
	}
	if err := bundle.Validate(); err != nil {
		return fmt.Errorf("rejecting policy bundle update: %w", err)
	}
	if bundle.Hash == "" {
		hash, err := ComputeHash(bundle)
		if err != nil {
			return err
		}
		bundle.Hash = hash
	}

	m.current.Store(bundle)
	return nil
}
