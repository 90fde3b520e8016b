package ingest

import "testing"

func TestContentTypeFromExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want ContentType
	}{
		{".pdf", TypePDF},
		{"pdf", TypePDF},
		{".md", TypeMarkdown},
		{".markdown", TypeMarkdown},
		{".html", TypeHTML},
		{".htm", TypeHTML},
		{".HTML", TypeHTML},
		{".txt", TypePlainText},
		{"", TypePlainText},
		{".docx", TypePlainText},
	}
	for _, tt := range tests {
		if got := ContentTypeFromExtension(tt.ext); got != tt.want {
			t.Errorf("ContentTypeFromExtension(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestPlainTextExtractor(t *testing.T) {
	got, err := PlainTextExtractor{}.Extract([]byte("as is"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "as is" {
		t.Errorf("got %q", got)
	}
}

func TestRegistry_For(t *testing.T) {
	r := NewRegistry()

	if _, ok := r.For(TypeMarkdown).(MarkdownExtractor); !ok {
		t.Errorf("markdown should resolve to MarkdownExtractor, got %T", r.For(TypeMarkdown))
	}
	if _, ok := r.For(TypeHTML).(HTMLExtractor); !ok {
		t.Errorf("html should resolve to HTMLExtractor, got %T", r.For(TypeHTML))
	}
	// Unregistered types fall back to plain text.
	if _, ok := r.For(TypePDF).(PlainTextExtractor); !ok {
		t.Errorf("unregistered type should fall back to plain text, got %T", r.For(TypePDF))
	}
}

type upperExtractor struct{}

func (upperExtractor) Extract(content []byte) (string, error) { return string(content), nil }

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(TypePDF, upperExtractor{})

	if _, ok := r.For(TypePDF).(upperExtractor); !ok {
		t.Errorf("Register should replace the extractor, got %T", r.For(TypePDF))
	}
}
