// Package sqlite implements sift.EmbedCache using pure-Go SQLite.
// Zero CGO required. Vectors are stored as JSON text keyed by
// (model, text hash), which keeps a repeated batch run from re-embedding
// unchanged documents.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/siftlab/sift"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// CacheOption configures a SQLite Cache.
type CacheOption func(*Cache)

// WithLogger sets a structured logger for the cache. When set, the cache
// emits debug logs with timing and hit counts. If not set, no logs are
// emitted.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// Cache implements sift.EmbedCache backed by a local SQLite file.
type Cache struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ sift.EmbedCache = (*Cache)(nil)

// New creates a Cache using a local SQLite file at dbPath.
// It opens a single shared connection pool with SetMaxOpenConns(1) so that
// all goroutines serialize through one connection, eliminating SQLITE_BUSY
// errors caused by concurrent writers opening independent connections.
func New(dbPath string, opts ...CacheOption) *Cache {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		// sql.Open only fails when the driver is not registered; with the
		// blank import above that never happens.
		panic(fmt.Sprintf("sqlite: open driver: %v", err))
	}
	db.SetMaxOpenConns(1)
	c := &Cache{db: db, logger: sift.NopLogger()}
	for _, o := range opts {
		o(c)
	}
	c.logger.Debug("sqlite: embed cache opened", "path", dbPath)
	return c
}

// Init creates the embeddings table.
func (c *Cache) Init(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS embeddings (
		model TEXT NOT NULL,
		text_hash TEXT NOT NULL,
		vector TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (model, text_hash)
	)`)
	if err != nil {
		return fmt.Errorf("create embeddings table: %w", err)
	}
	return nil
}

// Get returns cached vectors aligned with texts and the indexes of misses.
func (c *Cache) Get(ctx context.Context, model string, texts []string) ([][]float32, []int, error) {
	start := time.Now()
	vecs := make([][]float32, len(texts))
	var missing []int

	stmt, err := c.db.PrepareContext(ctx,
		`SELECT vector FROM embeddings WHERE model = ? AND text_hash = ?`)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare get: %w", err)
	}
	defer stmt.Close()

	for i, text := range texts {
		var raw string
		err := stmt.QueryRowContext(ctx, model, textHash(text)).Scan(&raw)
		switch {
		case err == sql.ErrNoRows:
			missing = append(missing, i)
			continue
		case err != nil:
			return nil, nil, fmt.Errorf("query embedding: %w", err)
		}
		vec, err := deserializeVector(raw)
		if err != nil {
			// A corrupt row is a miss, not a failure.
			missing = append(missing, i)
			continue
		}
		vecs[i] = vec
	}

	c.logger.Debug("sqlite: embed cache get",
		"texts", len(texts), "misses", len(missing), "duration", time.Since(start))
	return vecs, missing, nil
}

// Put stores vectors for the given texts, replacing existing entries.
func (c *Cache) Put(ctx context.Context, model string, texts []string, vecs [][]float32) error {
	if len(texts) != len(vecs) {
		return fmt.Errorf("put: %d texts but %d vectors", len(texts), len(vecs))
	}
	start := time.Now()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO embeddings (model, text_hash, vector, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare put: %w", err)
	}
	defer stmt.Close()

	now := sift.NowUnix()
	for i, text := range texts {
		if _, err := stmt.ExecContext(ctx, model, textHash(text), serializeVector(vecs[i]), now); err != nil {
			return fmt.Errorf("insert embedding: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}

	c.logger.Debug("sqlite: embed cache put", "texts", len(texts), "duration", time.Since(start))
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// textHash returns a stable 64-bit FNV-1a key for a text.
func textHash(text string) string {
	h := fnv.New64a()
	h.Write([]byte(text))
	return fmt.Sprintf("%016x", h.Sum64())
}

// serializeVector converts []float32 to a JSON array string.
func serializeVector(vec []float32) string {
	data, _ := json.Marshal(vec)
	return string(data)
}

// deserializeVector parses a JSON array string back to []float32.
func deserializeVector(s string) ([]float32, error) {
	var v []float32
	err := json.Unmarshal([]byte(s), &v)
	return v, err
}
