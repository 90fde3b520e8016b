// Package postgres implements sift.EmbedCache using PostgreSQL, for teams
// that share one embedding cache across machines.
//
// The Cache accepts an externally-owned *pgxpool.Pool via constructor
// injection. The caller creates and closes the pool.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siftlab/sift"
)

// Cache implements sift.EmbedCache backed by PostgreSQL.
type Cache struct {
	pool *pgxpool.Pool
}

var _ sift.EmbedCache = (*Cache)(nil)

// New creates a Cache using an existing pgxpool.Pool.
// The caller owns the pool and is responsible for closing it.
func New(pool *pgxpool.Pool) *Cache {
	return &Cache{pool: pool}
}

// Init creates the embeddings table.
func (c *Cache) Init(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS sift_embeddings (
		model TEXT NOT NULL,
		text_hash TEXT NOT NULL,
		vector JSONB NOT NULL,
		created_at BIGINT NOT NULL,
		PRIMARY KEY (model, text_hash)
	)`)
	if err != nil {
		return fmt.Errorf("create sift_embeddings table: %w", err)
	}
	return nil
}

// Get returns cached vectors aligned with texts and the indexes of misses.
func (c *Cache) Get(ctx context.Context, model string, texts []string) ([][]float32, []int, error) {
	vecs := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vecs, nil, nil
	}

	hashes := make([]string, len(texts))
	byHash := make(map[string][]int, len(texts))
	for i, text := range texts {
		h := textHash(text)
		hashes[i] = h
		byHash[h] = append(byHash[h], i)
	}

	rows, err := c.pool.Query(ctx,
		`SELECT text_hash, vector FROM sift_embeddings WHERE model = $1 AND text_hash = ANY($2)`,
		model, hashes)
	if err != nil {
		return nil, nil, fmt.Errorf("query embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		var raw []byte
		if err := rows.Scan(&hash, &raw); err != nil {
			return nil, nil, fmt.Errorf("scan embedding: %w", err)
		}
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err != nil {
			continue // corrupt row counts as a miss
		}
		for _, idx := range byHash[hash] {
			vecs[idx] = vec
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate embeddings: %w", err)
	}

	var missing []int
	for i, v := range vecs {
		if v == nil {
			missing = append(missing, i)
		}
	}
	return vecs, missing, nil
}

// Put stores vectors for the given texts, replacing existing entries.
func (c *Cache) Put(ctx context.Context, model string, texts []string, vecs [][]float32) error {
	if len(texts) != len(vecs) {
		return fmt.Errorf("put: %d texts but %d vectors", len(texts), len(vecs))
	}

	batch := &pgx.Batch{}
	now := sift.NowUnix()
	for i, text := range texts {
		raw, _ := json.Marshal(vecs[i])
		batch.Queue(`INSERT INTO sift_embeddings (model, text_hash, vector, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (model, text_hash) DO UPDATE SET vector = $3, created_at = $4`,
			model, textHash(text), raw, now)
	}

	br := c.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range texts {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert embedding: %w", err)
		}
	}
	return nil
}

// Close is a no-op; the pool is owned by the caller.
func (c *Cache) Close() error { return nil }

// textHash returns a stable 64-bit FNV-1a key for a text.
func textHash(text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}
