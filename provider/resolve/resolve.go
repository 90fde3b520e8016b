// Package resolve creates embedding providers from provider-agnostic
// configuration, so CLIs can switch backends with a config string.
package resolve

import (
	"fmt"

	"github.com/siftlab/sift"
	"github.com/siftlab/sift/provider/ollama"
	"github.com/siftlab/sift/provider/openaicompat"
)

// EmbeddingConfig holds provider-agnostic configuration for creating a
// sift.EmbeddingProvider.
type EmbeddingConfig struct {
	Provider   string // "ollama", "openai", "vllm", "lmstudio"
	APIKey     string
	Model      string
	BaseURL    string // optional for ollama; required for openai-compat
	Dimensions int
}

// EmbeddingProvider creates a sift.EmbeddingProvider from cfg.
func EmbeddingProvider(cfg EmbeddingConfig) (sift.EmbeddingProvider, error) {
	switch cfg.Provider {
	case "ollama":
		var opts []ollama.Option
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithBaseURL(cfg.BaseURL))
		}
		return ollama.New(cfg.Model, cfg.Dimensions, opts...), nil
	case "openai", "vllm", "lmstudio":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			if cfg.Provider != "openai" {
				return nil, fmt.Errorf("resolve: provider %q requires base_url", cfg.Provider)
			}
			baseURL = "https://api.openai.com/v1"
		}
		return openaicompat.NewEmbedding(cfg.APIKey, cfg.Model, baseURL, cfg.Dimensions,
			openaicompat.WithName(cfg.Provider)), nil
	default:
		return nil, fmt.Errorf("resolve: unknown embedding provider %q (want ollama, openai, vllm, or lmstudio)", cfg.Provider)
	}
}
