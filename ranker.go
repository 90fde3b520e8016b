package sift

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
)

// BuildQuery combines a persona role and task description into the query
// text that chunks are ranked against.
func BuildQuery(persona, task string) string {
	persona = strings.TrimSpace(persona)
	task = strings.TrimSpace(task)
	switch {
	case persona == "":
		return task
	case task == "":
		return persona
	default:
		return persona + ". " + task
	}
}

// RankerOption configures a Ranker.
type RankerOption func(*rankerConfig)

type rankerConfig struct {
	topN          int
	batchSize     int
	boostKeywords []string
	boostCap      float64
	logger        *slog.Logger
}

func defaultRankerConfig() rankerConfig {
	return rankerConfig{
		topN:      10,
		batchSize: 32,
		boostCap:  2.5,
		logger:    NopLogger(),
	}
}

// WithTopN sets how many chunks Rank returns. Default is 10.
func WithTopN(n int) RankerOption {
	return func(c *rankerConfig) { c.topN = n }
}

// WithBatchSize sets how many chunk texts are sent to the embedding
// provider per request. Default is 32.
func WithBatchSize(n int) RankerOption {
	return func(c *rankerConfig) { c.batchSize = n }
}

// WithBoostKeywords sets domain keywords. Each keyword found in a chunk's
// text multiplies its score by 1.2. Default is none (no keyword boost).
func WithBoostKeywords(keywords []string) RankerOption {
	return func(c *rankerConfig) {
		c.boostKeywords = make([]string, 0, len(keywords))
		for _, k := range keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				c.boostKeywords = append(c.boostKeywords, k)
			}
		}
	}
}

// WithBoostCap sets the maximum total boost multiplier. Default is 2.5.
func WithBoostCap(cap float64) RankerOption {
	return func(c *rankerConfig) { c.boostCap = cap }
}

// WithRankerLogger sets a structured logger for ranking progress.
func WithRankerLogger(l *slog.Logger) RankerOption {
	return func(c *rankerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Ranker scores chunks by cosine similarity between their embeddings and a
// query embedding, applies configured boosts, and returns the top N.
type Ranker struct {
	provider EmbeddingProvider
	cfg      rankerConfig
}

// NewRanker creates a Ranker backed by the given embedding provider.
func NewRanker(provider EmbeddingProvider, opts ...RankerOption) *Ranker {
	cfg := defaultRankerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Ranker{provider: provider, cfg: cfg}
}

// scheduleRe marks text that discusses day-by-day plans or schedules.
var scheduleRe = regexp.MustCompile(`(?i)\b(?:day\s+\d+|itinerary|schedule)\b`)

// locationIndicators mark text about visiting specific places. Plain
// substring matches, including the prepositions: broad on purpose, the
// boost applies once and the cap bounds it.
var locationIndicators = []string{"in ", "at ", "visit", "see ", "explore", "tour", "trip to"}

// Rank embeds the query and all chunks, scores each chunk, and returns the
// top N by boosted score (descending). Ordering is stable: equal scores keep
// document order. The returned scores are rounded to 4 decimals.
func (r *Ranker) Rank(ctx context.Context, query string, chunks []Chunk) ([]ScoredChunk, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	qvecs, err := r.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qvecs) != 1 {
		return nil, &ErrEmbed{Provider: r.provider.Name(), Message: fmt.Sprintf("expected 1 query vector, got %d", len(qvecs))}
	}
	qvec := qvecs[0]

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vecs := make([][]float32, 0, len(chunks))
	for start := 0; start < len(texts); start += r.cfg.batchSize {
		end := min(start+r.cfg.batchSize, len(texts))
		batch, err := r.provider.Embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed chunks [%d:%d]: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, &ErrEmbed{Provider: r.provider.Name(), Message: fmt.Sprintf("expected %d vectors, got %d", end-start, len(batch))}
		}
		vecs = append(vecs, batch...)
		r.cfg.logger.Debug("ranker: embedded batch", "done", end, "total", len(texts))
	}

	scored := make([]ScoredChunk, len(chunks))
	for i, c := range chunks {
		base := float64(cosineSimilarity(qvec, vecs[i]))
		boost := r.boostFor(c)
		scored[i] = ScoredChunk{
			Chunk:     c,
			Score:     roundScore(base * boost),
			BaseScore: roundScore(base),
			Boost:     math.Round(boost*100) / 100,
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if r.cfg.topN > 0 && len(scored) > r.cfg.topN {
		scored = scored[:r.cfg.topN]
	}
	return scored, nil
}

// boostFor computes the boost multiplier for one chunk, capped at the
// configured maximum.
func (r *Ranker) boostFor(c Chunk) float64 {
	boost := 1.0
	lower := strings.ToLower(c.Text)

	for _, kw := range r.cfg.boostKeywords {
		if strings.Contains(lower, kw) {
			boost *= 1.2
		}
	}
	if scheduleRe.MatchString(c.Text) {
		boost *= 1.3
	}
	for _, ind := range locationIndicators {
		if strings.Contains(lower, ind) {
			boost *= 1.15
			break
		}
	}

	return math.Min(boost, r.cfg.boostCap)
}

// roundScore rounds to 4 decimals for stable JSON output.
func roundScore(s float64) float64 {
	return math.Round(s*10000) / 10000
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return float32(dot / denom)
}
