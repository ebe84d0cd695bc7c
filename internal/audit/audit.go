// Package audit persists the resolution audit trail.
package audit

import (
	"fmt"

	"github.com/OmniNode-ai/omniroute/internal/config"
	"github.com/OmniNode-ai/omniroute/internal/core"
)

// Build constructs the configured auditor. Auditing disabled yields the noop
// auditor so callers never branch on nil.
func Build(cfg config.AuditConfig) (core.Auditor, error) {
	if !cfg.Enabled {
		return NewNoopAuditor(), nil
	}
	switch cfg.Type {
	case "", "file":
		auditor, err := NewFileAuditor(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("building file auditor: %w", err)
		}
		return auditor, nil
	case "memory":
		return NewInMemoryAuditor(), nil
	default:
		return nil, fmt.Errorf("unknown audit type %q", cfg.Type)
	}
}
