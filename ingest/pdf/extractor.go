// Package pdf provides a PDF text extractor for the ingest pipeline.
//
// It uses ledongthuc/pdf (BSD-3, pure Go, no CGO) for text-layer extraction.
// This is a separate subpackage so that the dependency is only pulled in
// by users who need PDF support.
package pdf

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/siftlab/sift/ingest"
)

// Line is one visual text line with its dominant font size. Size is rounded
// to 2 decimals; lines appear in reading order within their page.
type Line struct {
	Text string
	Size float64
	Page int
}

// Extractor implements ingest.Extractor and ingest.MetadataExtractor for
// PDF documents, and exposes font-size line extraction for outline
// classification.
type Extractor struct{}

// NewExtractor creates a PDF extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract extracts plain text from a PDF document.
func (e *Extractor) Extract(content []byte) (string, error) {
	result, err := e.ExtractWithMeta(content)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// ExtractWithMeta extracts text page-by-page with page number metadata.
func (e *Extractor) ExtractWithMeta(content []byte) (ingest.ExtractResult, error) {
	r, err := open(content)
	if err != nil {
		return ingest.ExtractResult{}, err
	}

	var text strings.Builder
	var meta []ingest.PageMeta
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		// Font maps are shared across pages; resolving each font once
		// avoids re-parsing encodings on every page.
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}

		pageText, err := extractPageText(page, fonts)
		if err != nil {
			continue // skip unreadable pages
		}
		if pageText == "" {
			continue
		}

		if text.Len() > 0 {
			text.WriteString("\n\n")
		}
		start := text.Len()
		text.WriteString(pageText)

		meta = append(meta, ingest.PageMeta{
			PageNumber: i,
			StartByte:  start,
			EndByte:    text.Len(),
		})
	}

	return ingest.ExtractResult{
		Text: strings.TrimSpace(text.String()),
		Meta: meta,
	}, nil
}

// Lines extracts visual text lines with font sizes from every page.
// Unreadable pages are skipped.
func (e *Extractor) Lines(content []byte) ([]Line, error) {
	r, err := open(content)
	if err != nil {
		return nil, err
	}

	var lines []Line
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, pageLines(page, i)...)
	}
	return lines, nil
}

func open(content []byte) (*pdf.Reader, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("empty PDF content")
	}
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return r, nil
}

// extractPageText extracts readable text from a single PDF page.
func extractPageText(page pdf.Page, fonts map[string]*pdf.Font) (text string, err error) {
	defer func() {
		// The content-stream parser panics on malformed streams.
		if r := recover(); r != nil {
			err = fmt.Errorf("parse page content: %v", r)
		}
	}()
	text, err = page.GetPlainText(fonts)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// pageLines assembles the page's text fragments into visual lines using the
// row grouping from the PDF library, joining fragments left to right and
// inserting spaces at horizontal gaps.
func pageLines(page pdf.Page, pageNum int) (lines []Line) {
	defer func() {
		if r := recover(); r != nil {
			lines = nil
		}
	}()

	rows, err := page.GetTextByRow()
	if err != nil {
		return nil
	}

	// Reading order: PDF user space grows upward, so larger Y is higher on
	// the page.
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	for _, row := range rows {
		text, size := joinRow(row.Content)
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		lines = append(lines, Line{Text: text, Size: size, Page: pageNum})
	}
	return lines
}

// joinRow concatenates a row's fragments in X order and returns the row's
// dominant (largest) font size rounded to 2 decimals.
func joinRow(frags []pdf.Text) (string, float64) {
	sort.Slice(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

	var b strings.Builder
	var size float64
	prevEnd := math.Inf(-1)

	for _, f := range frags {
		if f.FontSize > size {
			size = f.FontSize
		}
		// A gap wider than a thin space means the fragments are separate
		// words even though the content stream shows them separately.
		if b.Len() > 0 && f.X-prevEnd > 1 && !strings.HasPrefix(f.S, " ") {
			b.WriteByte(' ')
		}
		b.WriteString(f.S)
		prevEnd = f.X + f.W
	}

	return b.String(), roundSize(size)
}

// roundSize rounds a font size to 2 decimals, matching how distinct sizes
// are bucketed for heading classification.
func roundSize(s float64) float64 {
	return math.Round(s*100) / 100
}
