package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memescout.yaml")
	yaml := `
search:
  terms: ["memes", "dank memes"]
  minFollowers: 1000
  maxPerTerm: 25
  postsPerAccount: 50
pipeline:
  workers: 2
  termCooldownSeconds: 1
storage:
  dbPath: ./test.db
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("X_BEARER_TOKEN", "secret")
	t.Setenv("MEMESCOUT_DB", "/tmp/override.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Search.Terms) != 2 || cfg.Search.MinFollowers != 1000 {
		t.Fatalf("search config: %+v", cfg.Search)
	}
	if cfg.Pipeline.Workers != 2 || cfg.Pipeline.TermCooldownSeconds != 1 {
		t.Fatalf("pipeline config: %+v", cfg.Pipeline)
	}
	if cfg.Credentials.BearerToken != "secret" {
		t.Fatalf("bearer token not resolved from env: %q", cfg.Credentials.BearerToken)
	}
	if cfg.Storage.DBPath != "/tmp/override.db" {
		t.Fatalf("db path env override not applied: %q", cfg.Storage.DBPath)
	}
}

func TestSaveThenLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "memescout.yaml")
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Search.Terms) == 0 || cfg.Search.MinFollowers != 5000 {
		t.Fatalf("defaults did not round-trip: %+v", cfg.Search)
	}
}
