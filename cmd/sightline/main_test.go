package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sightlinehq/sightline/internal/config"
)

func TestBuildPipelineClosesStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CachePath = filepath.Join(t.TempDir(), "cache.db")

	p, cleanup, err := buildPipeline(cfg)
	if err != nil {
		t.Fatalf("buildPipeline() error: %v", err)
	}
	if p == nil {
		t.Fatal("buildPipeline() returned nil pipeline")
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup failed to close the store: %v", err)
	}
}

func TestBuildPipelineWithoutStoreHasNoopCleanup(t *testing.T) {
	_, cleanup, err := buildPipeline(config.DefaultConfig())
	if err != nil {
		t.Fatalf("buildPipeline() error: %v", err)
	}
	if err := cleanup(); err != nil {
		t.Errorf("cleanup without a store returned %v", err)
	}
}

func TestClassifyHonorsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("threshold: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	prev := configPath
	configPath = path
	t.Cleanup(func() { configPath = prev })

	cmd := newClassifyCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.RunE(cmd, []string{"A local plumbing service for the neighborhood"}); err != nil {
		t.Fatalf("classify error: %v", err)
	}
	if !strings.Contains(buf.String(), "threshold:  0.50") {
		t.Errorf("classify output ignored configured threshold:\n%s", buf.String())
	}
}
