package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OmniNode-ai/omniroute/internal/config"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

const goodBundle = `version: "2026-08-21"
trust_policy:
  default_route_ttl: 5m
  max_route_ttl: 1h
gates:
  - classification: public
    allowed_tiers: [LOCAL_EXACT, LOCAL_COMPATIBLE, ORG, FEDERATED]
`

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	if err := os.WriteFile(path, []byte(goodBundle), 0o600); err != nil {
		t.Fatal(err)
	}

	bundle, err := NewFileFetcher(path).Fetch(context.Background(), testLogger{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if bundle.Version != "2026-08-21" || bundle.Hash == "" {
		t.Errorf("Fetch() = %+v", bundle)
	}

	// invalid bundle must not come back
	if err := os.WriteFile(path, []byte("version: ''\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileFetcher(path).Fetch(context.Background(), testLogger{}); err == nil {
		t.Error("Fetch() returned an invalid bundle")
	}
}

func TestBuild(t *testing.T) {
	sync := config.SourceSync{Interval: time.Minute}

	fetcher, err := Build(&config.BundleSource{File: &config.FileSourceConfig{}, Sync: sync}, "bundle.yaml")
	if err != nil {
		t.Fatalf("Build(file) error = %v", err)
	}
	if _, ok := fetcher.(*FileFetcher); !ok {
		t.Errorf("Build(file) = %T", fetcher)
	}

	if _, err := Build(&config.BundleSource{File: &config.FileSourceConfig{}, Sync: sync}, ""); err == nil {
		t.Error("Build() accepted a file source without any path")
	}

	if _, err := Build(&config.BundleSource{Sync: sync}, ""); err == nil {
		t.Error("Build() accepted an empty source")
	}

	// github config is validated at build
	if _, err := Build(&config.BundleSource{GitHub: &config.GitHubSourceConfig{}, Sync: sync}, ""); err == nil {
		t.Error("Build() accepted an incomplete github source")
	}
}
