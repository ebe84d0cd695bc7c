package core

import (
	"fmt"
	"path"
)

// MatchCapability reports whether the glob pattern matches the capability
// name. Matching uses path.Match semantics over the raw string, so '.' is an
// ordinary character: "database.*" matches "database.postgres" and
// "database.postgres.replica" but not "database" itself. A malformed pattern
// never matches.
func MatchCapability(pattern, capability string) bool {
	if pattern == capability {
		return true
	}
	ok, err := path.Match(pattern, capability)
	if err != nil {
		return false
	}
	return ok
}

// ValidateCapabilityPattern rejects glob patterns that path.Match cannot
// parse, so bad patterns fail at load time instead of silently never
// matching.
func ValidateCapabilityPattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty capability pattern")
	}
	if _, err := path.Match(pattern, ""); err != nil {
		return fmt.Errorf("invalid capability pattern %q: %w", pattern, err)
	}
	return nil
}
