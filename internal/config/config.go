// Package config loads sift CLI configuration: defaults, then a TOML file,
// then environment variables (env wins).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Embedding EmbeddingConfig `toml:"embedding"`
	Cache     CacheConfig     `toml:"cache"`
	Chunker   ChunkerConfig   `toml:"chunker"`
	Ranker    RankerConfig    `toml:"ranker"`
	Outline   OutlineConfig   `toml:"outline"`
	Observer  ObserverConfig  `toml:"observer"`
}

type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	Dimensions int    `toml:"dimensions"`
	APIKey     string `toml:"api_key"`
	BatchSize  int    `toml:"batch_size"`
	RPM        int    `toml:"rpm"` // max requests per minute, 0 disables
}

type CacheConfig struct {
	Backend string `toml:"backend"` // "none", "sqlite", "postgres"
	Path    string `toml:"path"`    // sqlite file path
	DSN     string `toml:"dsn"`     // postgres connection string
}

type ChunkerConfig struct {
	WindowWords int `toml:"window_words"`
	StrideWords int `toml:"stride_words"`
	MinWords    int `toml:"min_words"`
	MaxWords    int `toml:"max_words"`
}

type RankerConfig struct {
	TopN          int      `toml:"top_n"`
	BoostKeywords []string `toml:"boost_keywords"`
	BoostCap      float64  `toml:"boost_cap"`
}

type OutlineConfig struct {
	MinChars int `toml:"min_chars"`
	MaxLevel int `toml:"max_level"`
}

type ObserverConfig struct {
	Enabled bool `toml:"enabled"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Model:      "bge-small-en-v1.5",
			Dimensions: 384,
			BatchSize:  32,
		},
		Cache: CacheConfig{
			Backend: "sqlite",
			Path:    "sift-cache.db",
		},
		Chunker: ChunkerConfig{
			WindowWords: 500,
			StrideWords: 400,
			MinWords:    50,
			MaxWords:    800,
		},
		Ranker: RankerConfig{
			TopN:     10,
			BoostCap: 2.5,
		},
		Outline: OutlineConfig{
			MinChars: 1,
			MaxLevel: 3,
		},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = os.Getenv("SIFT_CONFIG")
	}
	if path == "" {
		path = "sift.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	// Env overrides
	if v := os.Getenv("SIFT_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("SIFT_EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}
	if v := os.Getenv("SIFT_CACHE_DSN"); v != "" {
		cfg.Cache.DSN = v
	}
	if os.Getenv("SIFT_OBSERVER_ENABLED") == "true" || os.Getenv("SIFT_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}

	return cfg
}
