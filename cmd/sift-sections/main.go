// Binary sift-sections ranks document sections against a persona and task.
//
// It reads <data-dir>/input.json (documents, persona, job_to_be_done),
// extracts and chunks the documents under <data-dir>/pdfs/, embeds the
// chunks with the configured sentence-embedding model, and writes the
// top-N ranked sections to <output-dir>/summary.json.
//
// Usage:
//
//	sift-sections [--data-dir data] [--output-dir output] [--top-n 10] [--config sift.toml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siftlab/sift"
	"github.com/siftlab/sift/analyze"
	"github.com/siftlab/sift/ingest"
	"github.com/siftlab/sift/internal/config"
	"github.com/siftlab/sift/observer"
	"github.com/siftlab/sift/provider/resolve"
	"github.com/siftlab/sift/store/postgres"
	"github.com/siftlab/sift/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		dataDir    = flag.String("data-dir", "data", "directory containing input.json and pdfs/")
		outputDir  = flag.String("output-dir", "output", "directory to write summary.json")
		topN       = flag.Int("top-n", 0, "number of top sections to include (0 = config default)")
		configPath = flag.String("config", "", "path to sift.toml (default: $SIFT_CONFIG or ./sift.toml)")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Load(*configPath)
	if *topN <= 0 {
		*topN = cfg.Ranker.TopN
	}

	provider, err := resolve.EmbeddingProvider(resolve.EmbeddingConfig{
		Provider:   cfg.Embedding.Provider,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		BaseURL:    cfg.Embedding.BaseURL,
		Dimensions: cfg.Embedding.Dimensions,
	})
	if err != nil {
		return err
	}
	provider = sift.WithRetry(provider, sift.RetryLogger(logger))
	if cfg.Embedding.RPM > 0 {
		provider = sift.WithRateLimit(provider, sift.RPM(cfg.Embedding.RPM))
	}

	// Optional OTEL instrumentation.
	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			return fmt.Errorf("init observability: %w", err)
		}
		defer func() {
			sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer scancel()
			_ = shutdown(sctx)
		}()
		provider = observer.WrapEmbedding(provider, inst)
	}

	// Optional embedding cache.
	cache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	if cache != nil {
		defer cache.Close()
		provider = sift.NewCachedProvider(provider, cache, logger)
	}

	opts := []analyze.Option{
		analyze.WithLogger(logger),
		analyze.WithPageChunker(ingest.NewSlidingWindowChunker(
			ingest.WithWindowWords(cfg.Chunker.WindowWords),
			ingest.WithStrideWords(cfg.Chunker.StrideWords),
			ingest.WithWordBounds(cfg.Chunker.MinWords, cfg.Chunker.MaxWords),
		)),
		analyze.WithRankerOptions(
			sift.WithTopN(*topN),
			sift.WithBatchSize(cfg.Embedding.BatchSize),
			sift.WithBoostKeywords(cfg.Ranker.BoostKeywords),
			sift.WithBoostCap(cfg.Ranker.BoostCap),
			sift.WithRankerLogger(logger),
		),
	}
	if inst != nil {
		opts = append(opts, analyze.WithInstruments(inst))
	}

	summary, err := analyze.New(provider, opts...).Run(ctx, *dataDir)
	if err != nil {
		return err
	}

	path, err := summary.Write(*outputDir)
	if err != nil {
		return err
	}

	logger.Info("analysis complete",
		"output", path,
		"sections", len(summary.ExtractedSections),
		"seconds", summary.Metadata.ProcessingTimeSeconds)
	return nil
}

// openCache creates the configured embedding cache, or nil for "none".
func openCache(ctx context.Context, cfg config.CacheConfig) (sift.EmbedCache, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "sqlite":
		cache := sqlite.New(cfg.Path)
		if err := cache.Init(ctx); err != nil {
			return nil, fmt.Errorf("init sqlite cache: %w", err)
		}
		return cache, nil
	case "postgres":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("cache backend postgres requires dsn")
		}
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres cache: %w", err)
		}
		cache := postgres.New(pool)
		if err := cache.Init(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("init postgres cache: %w", err)
		}
		return &pooledCache{Cache: cache, pool: pool}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (want none, sqlite, or postgres)", cfg.Backend)
	}
}

// pooledCache ties the pool's lifetime to the cache handle.
type pooledCache struct {
	*postgres.Cache
	pool *pgxpool.Pool
}

func (p *pooledCache) Close() error {
	p.pool.Close()
	return nil
}
