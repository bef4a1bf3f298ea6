package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawler.PolitenessDelay != time.Second {
		t.Errorf("politeness delay = %v, want 1s", cfg.Crawler.PolitenessDelay)
	}
	if cfg.Crawler.MaxDepthLimit != 10 {
		t.Errorf("max depth limit = %d, want 10", cfg.Crawler.MaxDepthLimit)
	}
	if cfg.Indexer.MinWordLength != 3 {
		t.Errorf("min word length = %d, want 3", cfg.Indexer.MinWordLength)
	}
	if cfg.Querier.MaxTokens != 100 {
		t.Errorf("max tokens = %d, want 100", cfg.Querier.MaxTokens)
	}
	if cfg.Querier.Prompt != "Query? " {
		t.Errorf("prompt = %q", cfg.Querier.Prompt)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tse.yaml")
	data := []byte(`
crawler:
  politenessDelay: 250ms
  internalPrefix: "http://example.test/"
querier:
  maxTokens: 20
redis:
  enabled: true
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TSE_REDIS_ADDR", "cache:6380")
	t.Setenv("TSE_LOGGING_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Crawler.PolitenessDelay != 250*time.Millisecond {
		t.Errorf("politeness delay = %v", cfg.Crawler.PolitenessDelay)
	}
	if cfg.Crawler.InternalPrefix != "http://example.test/" {
		t.Errorf("internal prefix = %q", cfg.Crawler.InternalPrefix)
	}
	if cfg.Querier.MaxTokens != 20 {
		t.Errorf("max tokens = %d", cfg.Querier.MaxTokens)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "cache:6380" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
}

func TestLoadRejectsZeroDelay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tse.yaml")
	if err := os.WriteFile(path, []byte("crawler:\n  politenessDelay: 0s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for zero politeness delay")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
