// Package ingest converts raw document content into normalized, chunked
// plain text ready for embedding.
package ingest

import "strings"

// Extractor converts raw content to plain text.
type Extractor interface {
	Extract(content []byte) (string, error)
}

// ExtractResult holds extracted text and optional per-page metadata.
type ExtractResult struct {
	Text string
	Meta []PageMeta
}

// PageMeta marks the byte range in ExtractResult.Text that belongs to one
// page, so chunkers can carry page numbers through to ranked output.
type PageMeta struct {
	PageNumber int
	StartByte  int
	EndByte    int
}

// MetadataExtractor is an optional capability for extractors that produce
// per-page metadata alongside text. When an Extractor also implements
// MetadataExtractor, callers use ExtractWithMeta instead of Extract.
type MetadataExtractor interface {
	ExtractWithMeta(content []byte) (ExtractResult, error)
}

// ContentType identifies the MIME type of content for extraction.
type ContentType string

const (
	TypePlainText ContentType = "text/plain"
	TypeHTML      ContentType = "text/html"
	TypeMarkdown  ContentType = "text/markdown"
	TypePDF       ContentType = "application/pdf"
)

// ContentTypeFromExtension maps file extensions to content types.
func ContentTypeFromExtension(ext string) ContentType {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "md", "markdown":
		return TypeMarkdown
	case "html", "htm":
		return TypeHTML
	case "pdf":
		return TypePDF
	default:
		return TypePlainText
	}
}

// PlainTextExtractor returns content as-is.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(content []byte) (string, error) {
	return string(content), nil
}

// Registry maps content types to extractors. The zero value is unusable;
// use NewRegistry.
type Registry struct {
	extractors map[ContentType]Extractor
}

// NewRegistry returns a Registry with the built-in text, markdown, and HTML
// extractors registered. PDF lives in the ingest/pdf subpackage so its
// dependency is only pulled in by users who need it.
func NewRegistry() *Registry {
	return &Registry{extractors: map[ContentType]Extractor{
		TypePlainText: PlainTextExtractor{},
		TypeMarkdown:  MarkdownExtractor{},
		TypeHTML:      HTMLExtractor{},
	}}
}

// Register adds or replaces the extractor for a content type.
func (r *Registry) Register(ct ContentType, e Extractor) {
	r.extractors[ct] = e
}

// For returns the extractor for a content type, falling back to plain text.
func (r *Registry) For(ct ContentType) Extractor {
	if e, ok := r.extractors[ct]; ok {
		return e
	}
	return PlainTextExtractor{}
}
