package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config is the application's configuration model: what to search for, how
// hard to push the upstream API, and where results live.
type Config struct {
	Search      SearchConfig      `yaml:"search"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Storage     StorageConfig     `yaml:"storage"`
	Export      ExportConfig      `yaml:"export"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Credentials CredentialsConfig `yaml:"credentials"`
}

type SearchConfig struct {
	Terms           []string `yaml:"terms"`
	MinFollowers    int      `yaml:"minFollowers"`
	MaxPerTerm      int      `yaml:"maxPerTerm"`
	PostsPerAccount int      `yaml:"postsPerAccount"`
}

type PipelineConfig struct {
	// Bounded parallelism across candidates within one search term.
	Workers int `yaml:"workers"`
	// Coarse pause between search terms, on top of request-level pacing.
	TermCooldownSeconds int `yaml:"termCooldownSeconds"`
}

type StorageConfig struct {
	DBPath string `yaml:"dbPath"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type CredentialsConfig struct {
	// X/Twitter API bearer token. If empty, read from env X_BEARER_TOKEN.
	BearerToken string `yaml:"bearerToken"`
}

type envOverlay struct {
	BearerToken string `envconfig:"X_BEARER_TOKEN"`
	DBPath      string `envconfig:"MEMESCOUT_DB"`
	MetricsAddr string `envconfig:"METRICS_ADDR"`
}

// Default returns a sensible default configuration.
func Default() Config {
	return Config{
		Search: SearchConfig{
			Terms:           []string{"memes", "dank memes", "funny memes", "viral memes", "meme creator", "meme artist"},
			MinFollowers:    5000,
			MaxPerTerm:      50,
			PostsPerAccount: 100,
		},
		Pipeline: PipelineConfig{Workers: 4, TermCooldownSeconds: 2},
		Storage:  StorageConfig{DBPath: "./memescout.db"},
		Export:   ExportConfig{Dir: "."},
		Metrics:  MetricsConfig{Addr: ""},
	}
}

// ResolveEnv overlays environment values onto the file config.
func (c *Config) ResolveEnv() error {
	var e envOverlay
	if err := envconfig.Process("", &e); err != nil {
		return err
	}
	if c.Credentials.BearerToken == "" {
		c.Credentials.BearerToken = e.BearerToken
	}
	if e.DBPath != "" {
		c.Storage.DBPath = e.DBPath
	}
	if e.MetricsAddr != "" {
		c.Metrics.Addr = e.MetricsAddr
	}
	return nil
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.ResolveEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes YAML config to path, creating directories as needed.
func Save(path string, cfg Config) error {
	if path == "" {
		return errors.New("empty path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
