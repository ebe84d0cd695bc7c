package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/OmniNode-ai/omniroute/internal/core"
)

type Config struct {
	// Listen is the HTTP listen address. The --addr flag overrides it.
	Listen string `yaml:"listen"`

	// Bundle is the policy bundle file loaded at startup. When a
	// bundle_source of type "file" is configured without its own path,
	// the sync task re-reads this file.
	Bundle string `yaml:"bundle"`

	// Domains is the immutable trust configuration for this deployment.
	Domains []core.TrustDomain `yaml:"domains"`

	Registry RegistryConfig `yaml:"registry"`
	Keys     KeysConfig     `yaml:"keys"`

	AdminAuth AdminAuthConfig `yaml:"admin_auth"`

	// BundleSource, when set, re-fetches the bundle in the background and
	// hot-swaps it on success.
	BundleSource *BundleSource `yaml:"bundle_source,omitempty"`

	Audit  AuditConfig  `yaml:"audit"`
	Routes RoutesConfig `yaml:"routes"`
}

// RegistryConfig selects and configures the candidate source.
type RegistryConfig struct {
	Type   string         `yaml:"type"`    // e.g., "static", "file"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// KeysConfig selects and configures the key provider.
type KeysConfig struct {
	Type   string         `yaml:"type"`    // e.g., "static", "dir"
	Config map[string]any `yaml:",inline"` // Capture remaining fields
}

// AdminAuthConfig guards the /v1/admin and /v1/tasks subtrees.
type AdminAuthConfig struct {
	// Mode is "token" (HMAC session JWTs) or "oidc".
	Mode string `yaml:"mode"`

	// SigningKey is the HMAC key for token mode. An "env:NAME" value is
	// resolved from the environment at load so the key never has to live
	// in the config file.
	SigningKey string `yaml:"signing_key,omitempty"`

	OIDC *OIDCAdminConfig `yaml:"oidc,omitempty"`
}

// OIDCAdminConfig verifies admin bearer tokens against an upstream IdP.
type OIDCAdminConfig struct {
	IssuerURL string `yaml:"issuer_url"`
	ClientID  string `yaml:"client_id"`

	// RolesClaim is the claim holding the caller's roles.
	// Defaults to "roles".
	RolesClaim string `yaml:"roles_claim,omitempty"`
}

type SourceSync struct {
	Interval time.Duration `yaml:"interval"`
}

type GitHubSourceConfig struct {
	// AppID is the GitHub App ID.
	AppID int64 `yaml:"app_id"`

	// InstallationID is the GitHub App installation ID.
	InstallationID int64 `yaml:"installation_id"`

	// ServerURL is the GitHub Enterprise server URL.
	// For GitHub.com, this can be left empty.
	ServerURL string `yaml:"server"`

	// PrivateKey is the GitHub App private key in PEM format.
	PrivateKey string `yaml:"private_key"`

	// PrivateKeyFile is read when PrivateKey is empty.
	PrivateKeyFile string `yaml:"private_key_path"`

	// Owner of the GitHub repository.
	Owner string `yaml:"owner"`

	// Repo is the name of the GitHub repository.
	Repo string `yaml:"repo"`

	// Path is the bundle file path within the repository.
	// For example, "policies/bundle.yaml".
	Path string `yaml:"path"`

	// Ref is the git reference to use (e.g. a branch).
	// For example, "main".
	Ref string `yaml:"ref"`

	// WebhookSecret enables the push webhook endpoint when set. Pushes to
	// Ref trigger an immediate bundle sync instead of waiting for the
	// interval.
	WebhookSecret string `yaml:"webhook_secret"`
}

func (c *GitHubSourceConfig) Validate() error {
	if c.AppID == 0 {
		return fmt.Errorf("app_id is required")
	}
	if c.InstallationID == 0 {
		return fmt.Errorf("installation_id is required")
	}
	if c.PrivateKey == "" && c.PrivateKeyFile == "" {
		return fmt.Errorf("private_key or private_key_path is required")
	}
	if c.Owner == "" {
		return fmt.Errorf("owner is required")
	}
	if c.Repo == "" {
		return fmt.Errorf("repo is required")
	}
	if c.Path == "" {
		return fmt.Errorf("path is required")
	}
	if c.Ref == "" {
		return fmt.Errorf("ref is required")
	}
	return nil
}

// FileSourceConfig re-reads a bundle file from disk.
type FileSourceConfig struct {
	// Path of the bundle file. Falls back to the top-level bundle path.
	Path string `yaml:"path,omitempty"`
}

// BundleSource holds configuration for the bundle source => where to re-fetch
// the policy bundle from.
type BundleSource struct {
	File   *FileSourceConfig   `yaml:"file,omitempty"`
	GitHub *GitHubSourceConfig `yaml:"github,omitempty"`

	Sync SourceSync `yaml:"sync"`
}

func (s *BundleSource) Validate() error {
	switch {
	case s.File != nil && s.GitHub != nil:
		return fmt.Errorf("at most one bundle source may be configured")
	case s.GitHub != nil:
		if err := s.GitHub.Validate(); err != nil {
			return fmt.Errorf("validating GitHub bundle source: %w", err)
		}
	case s.File != nil:
		// path may be empty; the top-level bundle path is the fallback
	default:
		return fmt.Errorf("no valid bundle source configured")
	}
	if s.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	return nil
}

// AuditConfig holds configuration for auditing.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Type    string `yaml:"type"` // e.g., "file", "memory"
}

// RoutesConfig holds configuration for the route-plan store.
type RoutesConfig struct {
	// SweepInterval is how often expired route plans are deleted.
	// Zero disables the sweep task.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// Load reads and parses the configuration file at the given path.
// It returns a Config struct or an error if loading/parsing/validation fails.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Domains) == 0 {
		return fmt.Errorf("at least one trust domain is required")
	}
	// NewDomainSet enforces the per-domain invariants and id uniqueness.
	if _, err := core.NewDomainSet(c.Domains); err != nil {
		return err
	}

	switch c.Registry.Type {
	case "", "static", "file":
	default:
		return fmt.Errorf("unknown registry type %q", c.Registry.Type)
	}

	switch c.Keys.Type {
	case "", "static", "dir":
	default:
		return fmt.Errorf("unknown keys type %q", c.Keys.Type)
	}

	if err := c.AdminAuth.Validate(); err != nil {
		return fmt.Errorf("validating admin_auth: %w", err)
	}

	if c.BundleSource != nil {
		if err := c.BundleSource.Validate(); err != nil {
			return fmt.Errorf("validating bundle source: %w", err)
		}
		if c.BundleSource.File != nil && c.BundleSource.File.Path == "" && c.Bundle == "" {
			return fmt.Errorf("file bundle source requires a bundle path")
		}
	}

	if c.Audit.Enabled {
		switch c.Audit.Type {
		case "", "file", "memory":
		default:
			return fmt.Errorf("unknown audit type %q", c.Audit.Type)
		}
		if (c.Audit.Type == "" || c.Audit.Type == "file") && c.Audit.Path == "" {
			return fmt.Errorf("file audit requires a path")
		}
	}

	if c.Routes.SweepInterval < 0 {
		return fmt.Errorf("routes.sweep_interval must not be negative")
	}

	return nil
}

func (a *AdminAuthConfig) Validate() error {
	switch a.Mode {
	case "", "token":
		// signing key checked at resolve time so `bundle validate` can run
		// without the secret in the environment
	case "oidc":
		if a.OIDC == nil {
			return fmt.Errorf("oidc mode requires an oidc block")
		}
		if a.OIDC.IssuerURL == "" {
			return fmt.Errorf("oidc.issuer_url is required")
		}
		if a.OIDC.ClientID == "" {
			return fmt.Errorf("oidc.client_id is required")
		}
	default:
		return fmt.Errorf("unknown mode %q", a.Mode)
	}
	return nil
}

// ResolveSigningKey returns the HMAC key bytes for token mode, resolving an
// "env:NAME" indirection from the environment.
func (a *AdminAuthConfig) ResolveSigningKey() ([]byte, error) {
	raw := a.SigningKey
	if name, ok := strings.CutPrefix(raw, "env:"); ok {
		raw = os.Getenv(name)
		if raw == "" {
			return nil, fmt.Errorf("environment variable %q is empty", name)
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("admin_auth.signing_key is not configured")
	}
	return []byte(raw), nil
}
