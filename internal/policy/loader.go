package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

// Parse decodes a policy bundle from YAML, validates it and stamps its
// content hash. Validation failures abort loading; a bundle never degrades
// silently.
func Parse(raw []byte) (*core.PolicyBundle, error) {
	var bundle core.PolicyBundle
	if err := yaml.Unmarshal(raw, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse policy bundle: %w", err)
	}
	if err := bundle.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy bundle: %w", err)
	}

	hash, err := ComputeHash(&bundle)
	if err != nil {
		return nil, err
	}
	bundle.Hash = hash
	return &bundle, nil
}

// Load reads and parses a bundle file.
func Load(path string) (*core.PolicyBundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy bundle %q: %w", path, err)
	}
	return Parse(raw)
}

// ComputeHash returns the content hash of a bundle: hex SHA-256 over the
// canonical JSON of the parsed bundle (hash field excluded), so formatting
// and comment changes in the source file do not change identity.
func ComputeHash(bundle *core.PolicyBundle) (string, error) {
	clone := *bundle
	clone.Hash = ""

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(clone); err != nil {
		return "", fmt.Errorf("failed to hash policy bundle: %w", err)
	}

	sum := sha256.Sum256(buf.Bytes())
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
