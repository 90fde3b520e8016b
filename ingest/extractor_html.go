package ingest

import (
	"bytes"
	"net/url"
	"strings"
	"unicode"

	readability "github.com/go-shiori/go-readability"
)

// documentURL anchors relative links for readability; local files have no
// real base URL.
var documentURL = &url.URL{Scheme: "file", Path: "/document.html"}

// HTMLExtractor extracts readable article text from HTML using readability,
// falling back to tag stripping when the page has no extractable article.
type HTMLExtractor struct{}

func (HTMLExtractor) Extract(content []byte) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(content), documentURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return strings.TrimSpace(article.TextContent), nil
	}
	return StripHTML(string(content)), nil
}

// StripHTML removes tags, script and style bodies, and decodes the common
// entities. It is the lossy fallback for HTML that readability rejects.
func StripHTML(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	inTag := false
	skipDepth := 0 // inside <script> or <style>
	lower := strings.ToLower(content)

	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case c == '<':
			inTag = true
			rest := lower[i:]
			switch {
			case strings.HasPrefix(rest, "<script"), strings.HasPrefix(rest, "<style"):
				skipDepth++
			case strings.HasPrefix(rest, "</script"), strings.HasPrefix(rest, "</style"):
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case c == '>':
			inTag = false
			b.WriteByte(' ')
		case !inTag && skipDepth == 0:
			b.WriteByte(c)
		}
	}

	return collapseSpace(decodeEntities(b.String()))
}

var entityReplacer = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&apos;", "'",
)

func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// collapseSpace squeezes whitespace runs to a single space, keeping
// paragraph breaks.
func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
