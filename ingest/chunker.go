package ingest

import "strings"

// Chunker splits text into chunks suitable for embedding.
type Chunker interface {
	Chunk(text string) []string
}

// ChunkerOption configures a chunker implementation.
type ChunkerOption func(*chunkerConfig)

type chunkerConfig struct {
	windowWords int
	strideWords int
	minWords    int
	maxWords    int
	maxChars    int
}

func defaultChunkerConfig() chunkerConfig {
	return chunkerConfig{
		windowWords: 500,
		strideWords: 400,
		minWords:    50,
		maxWords:    800,
		maxChars:    2048,
	}
}

// WithWindowWords sets the sliding-window size in words. Default 500.
func WithWindowWords(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.windowWords = n }
}

// WithStrideWords sets how far the window advances per chunk. A stride
// smaller than the window produces overlapping chunks. Default 400.
func WithStrideWords(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.strideWords = n }
}

// WithWordBounds sets the word-count filter: chunks are kept only when
// min < words < max. Defaults 50 and 800.
func WithWordBounds(min, max int) ChunkerOption {
	return func(c *chunkerConfig) {
		c.minWords = min
		c.maxWords = max
	}
}

// WithMaxChars sets the character budget per chunk for the paragraph
// chunker. Default 2048.
func WithMaxChars(n int) ChunkerOption {
	return func(c *chunkerConfig) { c.maxChars = n }
}

// --- SlidingWindowChunker ---

// SlidingWindowChunker splits text into overlapping word windows and drops
// windows outside the configured word bounds. It is the chunker used for
// page-oriented PDF text, where paragraph structure is unreliable.
type SlidingWindowChunker struct {
	window   int
	stride   int
	minWords int
	maxWords int
}

// NewSlidingWindowChunker creates a SlidingWindowChunker.
func NewSlidingWindowChunker(opts ...ChunkerOption) *SlidingWindowChunker {
	cfg := defaultChunkerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.strideWords <= 0 {
		cfg.strideWords = cfg.windowWords
	}
	return &SlidingWindowChunker{
		window:   cfg.windowWords,
		stride:   cfg.strideWords,
		minWords: cfg.minWords,
		maxWords: cfg.maxWords,
	}
}

// Chunk returns overlapping windows of words. Windows whose word count is
// not strictly between the configured bounds are dropped.
func (sw *SlidingWindowChunker) Chunk(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	for start := 0; start < len(words); start += sw.stride {
		end := min(start+sw.window, len(words))
		n := end - start
		if n > sw.minWords && n < sw.maxWords {
			chunks = append(chunks, strings.Join(words[start:end], " "))
		}
		if end == len(words) {
			break
		}
	}
	return chunks
}

// --- ParagraphChunker ---

// ParagraphChunker splits text on paragraph boundaries and packs
// consecutive paragraphs into chunks of at most maxChars. Oversized
// paragraphs fall back to word windows. It suits prose documents
// (markdown, HTML, plain text) where paragraph structure is meaningful.
type ParagraphChunker struct {
	maxChars int
}

// NewParagraphChunker creates a ParagraphChunker.
func NewParagraphChunker(opts ...ChunkerOption) *ParagraphChunker {
	cfg := defaultChunkerConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &ParagraphChunker{maxChars: cfg.maxChars}
}

// Chunk splits text into paragraph-aligned chunks of at most maxChars.
func (pc *ParagraphChunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= pc.maxChars {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) > pc.maxChars {
			flush()
			chunks = append(chunks, splitWords(para, pc.maxChars)...)
			continue
		}
		if current.Len() > 0 && current.Len()+2+len(para) > pc.maxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

// splitWords cuts text into pieces of at most maxChars on word boundaries.
func splitWords(text string, maxChars int) []string {
	words := strings.Fields(text)
	var chunks []string
	var current strings.Builder

	for _, w := range words {
		if current.Len() > 0 && current.Len()+1+len(w) > maxChars {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(w)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
