// Package outline classifies PDF text lines into a heading outline by
// font-size ranking: the largest size becomes H1, the next two H2 and H3,
// and everything smaller is body text. The document title is the first
// H1-sized line on page 1.
package outline

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/siftlab/sift"
	pdfx "github.com/siftlab/sift/ingest/pdf"
)

const (
	// Candidates longer than this are body text regardless of font size.
	maxHeadingRunes = 100
	maxHeadingWords = 12
)

// Option configures an Extractor.
type Option func(*config)

type config struct {
	minChars int
	maxLevel int
}

// WithMinChars drops heading candidates shorter than n runes. Default 1.
func WithMinChars(n int) Option {
	return func(c *config) { c.minChars = n }
}

// WithMaxLevel caps the emitted heading depth, 1 to 3. Default 3.
func WithMaxLevel(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = 1
		}
		if n > 3 {
			n = 3
		}
		c.maxLevel = n
	}
}

// Extractor builds heading outlines from PDF documents.
type Extractor struct {
	cfg config
	pdf *pdfx.Extractor
}

// New creates an outline Extractor.
func New(opts ...Option) *Extractor {
	cfg := config{minChars: 1, maxLevel: 3}
	for _, o := range opts {
		o(&cfg)
	}
	return &Extractor{cfg: cfg, pdf: pdfx.NewExtractor()}
}

// FromFile extracts the outline of the PDF at path.
func (e *Extractor) FromFile(path string) (sift.Outline, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return sift.Outline{}, fmt.Errorf("read %s: %w", path, err)
	}
	return e.FromBytes(content)
}

// FromBytes extracts the outline of a PDF document.
func (e *Extractor) FromBytes(content []byte) (sift.Outline, error) {
	lines, err := e.pdf.Lines(content)
	if err != nil {
		return sift.Outline{}, err
	}
	return e.build(lines), nil
}

// build classifies lines into an outline. Lines must be in reading order.
func (e *Extractor) build(lines []pdfx.Line) sift.Outline {
	levels := levelBySize(lines)
	if len(levels) == 0 {
		return sift.Outline{Headings: []sift.Heading{}}
	}

	maxLevel := fmt.Sprintf("H%d", e.cfg.maxLevel)

	var out sift.Outline
	titleIdx := -1
	for i, ln := range lines {
		if ln.Page > 1 {
			break
		}
		if levels[ln.Size] == sift.LevelH1 && e.isHeading(ln.Text) {
			out.Title = ln.Text
			titleIdx = i
			break
		}
	}

	out.Headings = []sift.Heading{}
	for i, ln := range lines {
		if i == titleIdx {
			continue
		}
		level, ok := levels[ln.Size]
		if !ok || level > maxLevel {
			continue
		}
		if !e.isHeading(ln.Text) {
			continue
		}
		out.Headings = append(out.Headings, sift.Heading{
			Level: level,
			Text:  ln.Text,
			Page:  ln.Page,
		})
	}
	return out
}

// levelBySize maps each distinct rounded font size to a heading level:
// the three largest sizes become H1..H3, smaller sizes are unmapped.
func levelBySize(lines []pdfx.Line) map[float64]string {
	seen := make(map[float64]bool)
	var sizes []float64
	for _, ln := range lines {
		if ln.Size > 0 && !seen[ln.Size] {
			seen[ln.Size] = true
			sizes = append(sizes, ln.Size)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(sizes)))

	levels := make(map[float64]string)
	for i, s := range sizes {
		switch i {
		case 0:
			levels[s] = sift.LevelH1
		case 1:
			levels[s] = sift.LevelH2
		case 2:
			levels[s] = sift.LevelH3
		default:
			return levels
		}
	}
	return levels
}

// isHeading filters out lines that cannot plausibly be headings: too short,
// too long, or clearly running prose.
func (e *Extractor) isHeading(text string) bool {
	if utf8.RuneCountInString(text) < e.cfg.minChars {
		return false
	}
	if utf8.RuneCountInString(text) > maxHeadingRunes {
		return false
	}
	if len(strings.Fields(text)) >= maxHeadingWords {
		return false
	}
	return true
}
