package bundle_test

import (
	"testing"

	"github.com/signaldeck/shell-engine/bundle"
)

func TestDefaultConfig(t *testing.T) {
	cfg := bundle.DefaultConfig()
	if cfg.Path != "" {
		t.Errorf("Path = %q, want empty", cfg.Path)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := bundle.DefaultConfig()
	cfg.Merge(&bundle.Config{Path: "/tmp/bundles"})
	if cfg.Path != "/tmp/bundles" {
		t.Errorf("Path = %q, want %q", cfg.Path, "/tmp/bundles")
	}

	cfg.Merge(&bundle.Config{})
	if cfg.Path != "/tmp/bundles" {
		t.Errorf("Path = %q after empty merge, want %q", cfg.Path, "/tmp/bundles")
	}
}

func TestNewStore_DisabledWhenPathEmpty(t *testing.T) {
	cfg := bundle.DefaultConfig()
	store, err := bundle.NewStore(&cfg)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store != nil {
		t.Error("NewStore() with empty path should return nil store")
	}
}

func TestNewStore_Enabled(t *testing.T) {
	cfg := bundle.Config{Path: t.TempDir()}
	store, err := bundle.NewStore(&cfg)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	if store == nil {
		t.Fatal("NewStore() with path should return a store")
	}
}
