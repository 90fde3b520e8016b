package sift

import (
	"context"
	"fmt"
	"log/slog"
)

// EmbedCache stores embedding vectors keyed by model and text. Lookups are
// batched: Get returns the vectors it has (nil for misses) plus the indexes
// of the texts it does not.
type EmbedCache interface {
	// Get returns cached vectors aligned with texts (nil where missing) and
	// the indexes of texts that were not found.
	Get(ctx context.Context, model string, texts []string) ([][]float32, []int, error)
	// Put stores vectors for the given texts.
	Put(ctx context.Context, model string, texts []string, vecs [][]float32) error
	// Close releases the underlying store.
	Close() error
}

// CachedProvider wraps an EmbeddingProvider with a persistent cache.
// Texts with cached vectors never reach the network; misses are embedded by
// the inner provider and written back.
type CachedProvider struct {
	inner  EmbeddingProvider
	cache  EmbedCache
	logger *slog.Logger
}

// NewCachedProvider wraps inner with cache.
func NewCachedProvider(inner EmbeddingProvider, cache EmbedCache, logger *slog.Logger) *CachedProvider {
	if logger == nil {
		logger = NopLogger()
	}
	return &CachedProvider{inner: inner, cache: cache, logger: logger}
}

// Name returns the inner provider's name.
func (p *CachedProvider) Name() string { return p.inner.Name() }

// Dimensions returns the inner provider's vector size.
func (p *CachedProvider) Dimensions() int { return p.inner.Dimensions() }

// Model returns the inner provider's model identifier.
func (p *CachedProvider) Model() string { return p.inner.Model() }

// Embed returns vectors for texts, serving hits from the cache and
// embedding only the misses.
func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	// Keyed by the model identifier: vectors from different models are
	// never interchangeable, even on the same backend.
	model := p.inner.Model() + "/" + fmt.Sprint(p.inner.Dimensions())
	vecs, missing, err := p.cache.Get(ctx, model, texts)
	if err != nil {
		// A broken cache degrades to a passthrough, not a failure.
		p.logger.Warn("embed cache get failed, bypassing", "error", err)
		return p.inner.Embed(ctx, texts)
	}
	p.logger.Debug("embed cache lookup", "texts", len(texts), "misses", len(missing))

	if len(missing) == 0 {
		return vecs, nil
	}

	missTexts := make([]string, len(missing))
	for i, idx := range missing {
		missTexts[i] = texts[idx]
	}

	fresh, err := p.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, &ErrEmbed{Provider: p.inner.Name(), Message: fmt.Sprintf("expected %d vectors, got %d", len(missTexts), len(fresh))}
	}

	for i, idx := range missing {
		vecs[idx] = fresh[i]
	}

	if err := p.cache.Put(ctx, model, missTexts, fresh); err != nil {
		p.logger.Warn("embed cache put failed", "error", err)
	}
	return vecs, nil
}
