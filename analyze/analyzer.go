// Package analyze runs the end-to-end section-analysis pipeline: it reads a
// job manifest, extracts and chunks the referenced documents in parallel,
// embeds the chunks, ranks them against the persona and task, and produces
// a summary.
package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/siftlab/sift"
	"github.com/siftlab/sift/ingest"
	pdfx "github.com/siftlab/sift/ingest/pdf"
	"github.com/siftlab/sift/observer"
	"go.opentelemetry.io/otel/trace"
)

// maxWorkers caps the per-document worker pool.
const maxWorkers = 4

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithPageChunker sets the chunker for page-oriented (PDF) text.
func WithPageChunker(c ingest.Chunker) Option {
	return func(a *Analyzer) { a.pageChunker = c }
}

// WithProseChunker sets the chunker for prose documents (text, markdown, HTML).
func WithProseChunker(c ingest.Chunker) Option {
	return func(a *Analyzer) { a.proseChunker = c }
}

// WithWorkers sets the document worker pool size. Default min(4, ndocs).
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// WithRankerOptions forwards options to the underlying Ranker.
func WithRankerOptions(opts ...sift.RankerOption) Option {
	return func(a *Analyzer) { a.rankerOpts = opts }
}

// WithLogger sets a structured logger for pipeline progress.
func WithLogger(l *slog.Logger) Option {
	return func(a *Analyzer) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithInstruments enables OTEL instrumentation of the pipeline run.
func WithInstruments(inst *observer.Instruments) Option {
	return func(a *Analyzer) { a.inst = inst }
}

// Analyzer is the section-analysis pipeline.
type Analyzer struct {
	provider     sift.EmbeddingProvider
	registry     *ingest.Registry
	pdf          *pdfx.Extractor
	pageChunker  ingest.Chunker
	proseChunker ingest.Chunker
	rankerOpts   []sift.RankerOption
	workers      int
	logger       *slog.Logger
	inst         *observer.Instruments
}

// New creates an Analyzer backed by the given embedding provider.
func New(provider sift.EmbeddingProvider, opts ...Option) *Analyzer {
	a := &Analyzer{
		provider:     provider,
		registry:     ingest.NewRegistry(),
		pdf:          pdfx.NewExtractor(),
		pageChunker:  ingest.NewSlidingWindowChunker(),
		proseChunker: ingest.NewParagraphChunker(),
		workers:      maxWorkers,
		logger:       sift.NopLogger(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Run executes the pipeline for the manifest in dataDir and returns the
// summary. Unreadable documents are logged and skipped; Run fails only when
// the manifest cannot be read or embedding fails.
func (a *Analyzer) Run(ctx context.Context, dataDir string) (Summary, error) {
	start := time.Now()

	m, err := LoadManifest(dataDir)
	if err != nil {
		return Summary{}, err
	}

	if a.inst != nil {
		var span trace.Span
		ctx, span = a.inst.Tracer.Start(ctx, "analyze.run", trace.WithAttributes(
			observer.AttrAnalyzeDocuments.Int(len(m.Documents)),
		))
		defer span.End()
	}

	chunks := a.collectChunks(ctx, dataDir, m.Documents)
	a.logger.Info("analyze: documents chunked",
		"documents", len(m.Documents), "chunks", len(chunks))

	query := sift.BuildQuery(m.Persona.Role, m.Job.Task)
	ranker := sift.NewRanker(a.provider, a.rankerOpts...)
	ranked, err := ranker.Rank(ctx, query, chunks)
	if err != nil {
		return Summary{}, fmt.Errorf("rank chunks: %w", err)
	}

	inputs := make([]string, len(m.Documents))
	for i, d := range m.Documents {
		inputs[i] = d.Filename
	}

	elapsed := time.Since(start).Seconds()
	meta := Metadata{
		InputDocuments:        inputs,
		Persona:               m.Persona.Role,
		JobToBeDone:           m.Job.Task,
		ProcessingTimestamp:   time.Now().Format("2006-01-02T15:04:05"),
		ModelUsed:             a.provider.Model(),
		ProcessingTimeSeconds: math.Round(elapsed*100) / 100,
		RunID:                 sift.NewID(),
	}

	a.record(ctx, m, chunks, elapsed)
	return buildSummary(m, meta, ranked), nil
}

// record emits pipeline metrics when instrumentation is enabled.
func (a *Analyzer) record(ctx context.Context, m Manifest, chunks []sift.Chunk, elapsed float64) {
	if a.inst == nil {
		return
	}
	a.inst.AnalyzeRuns.Add(ctx, 1)
	a.inst.ChunksRanked.Add(ctx, int64(len(chunks)))
	a.inst.AnalyzeDuration.Record(ctx, elapsed*1000)
}

// indexedChunks pairs a document index with its chunks so parallel workers
// can return results that reassemble in manifest order.
type indexedChunks struct {
	idx    int
	chunks []sift.Chunk
}

// collectChunks extracts and chunks every document using a fixed worker
// pool, preserving manifest order in the combined result.
func (a *Analyzer) collectChunks(ctx context.Context, dataDir string, docs []DocumentRef) []sift.Chunk {
	if len(docs) == 0 {
		return nil
	}

	// Fast path: single document, no goroutine needed.
	if len(docs) == 1 {
		chunks, err := a.processDocument(dataDir, docs[0])
		if err != nil {
			a.logger.Warn("analyze: skipping document", "file", docs[0].Filename, "error", err)
			return nil
		}
		return chunks
	}

	type workItem struct {
		idx int
		doc DocumentRef
	}
	workCh := make(chan workItem, len(docs))
	for i, d := range docs {
		workCh <- workItem{idx: i, doc: d}
	}
	close(workCh)

	resultCh := make(chan indexedChunks, len(docs))

	numWorkers := min(len(docs), a.workers)
	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for range numWorkers {
		go func() {
			defer wg.Done()
			for w := range workCh {
				if ctx.Err() != nil {
					resultCh <- indexedChunks{idx: w.idx}
					continue
				}
				chunks, err := a.processDocument(dataDir, w.doc)
				if err != nil {
					a.logger.Warn("analyze: skipping document", "file", w.doc.Filename, "error", err)
					resultCh <- indexedChunks{idx: w.idx}
					continue
				}
				resultCh <- indexedChunks{idx: w.idx, chunks: chunks}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	perDoc := make([][]sift.Chunk, len(docs))
	for r := range resultCh {
		perDoc[r.idx] = r.chunks
	}

	var all []sift.Chunk
	for _, chunks := range perDoc {
		all = append(all, chunks...)
	}
	return all
}

// processDocument reads, extracts, normalizes, and chunks one document.
// PDF pages chunk independently so every chunk keeps its page number;
// prose documents count as page 1.
func (a *Analyzer) processDocument(dataDir string, doc DocumentRef) ([]sift.Chunk, error) {
	content, err := readDocument(dataDir, doc.Filename)
	if err != nil {
		return nil, err
	}

	ct := ingest.ContentTypeFromExtension(filepath.Ext(doc.Filename))
	title := doc.title()

	if ct == ingest.TypePDF {
		return a.chunkPDF(content, doc.Filename, title)
	}

	text, err := a.registry.For(ct).Extract(content)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", ct, err)
	}

	var chunks []sift.Chunk
	for _, c := range a.proseChunker.Chunk(ingest.Normalize(text)) {
		chunks = append(chunks, sift.Chunk{
			Document:      doc.Filename,
			DocumentTitle: title,
			Page:          1,
			Text:          c,
		})
	}
	return chunks, nil
}

// chunkPDF chunks each PDF page separately.
func (a *Analyzer) chunkPDF(content []byte, filename, title string) ([]sift.Chunk, error) {
	result, err := a.pdf.ExtractWithMeta(content)
	if err != nil {
		return nil, err
	}

	var chunks []sift.Chunk
	for _, pm := range result.Meta {
		if pm.StartByte >= len(result.Text) {
			continue
		}
		end := min(pm.EndByte, len(result.Text))
		pageText := ingest.Normalize(result.Text[pm.StartByte:end])
		for _, c := range a.pageChunker.Chunk(pageText) {
			chunks = append(chunks, sift.Chunk{
				Document:      filename,
				DocumentTitle: title,
				Page:          pm.PageNumber,
				Text:          c,
			})
		}
	}
	return chunks, nil
}

// readDocument loads a manifest document from <dataDir>/pdfs/<name>,
// falling back to <dataDir>/<name> for non-PDF layouts.
func readDocument(dataDir, name string) ([]byte, error) {
	primary := filepath.Join(dataDir, "pdfs", name)
	content, err := os.ReadFile(primary)
	if err == nil {
		return content, nil
	}
	fallback := filepath.Join(dataDir, name)
	if content, err2 := os.ReadFile(fallback); err2 == nil {
		return content, nil
	}
	return nil, fmt.Errorf("read %s: %w", primary, err)
}
