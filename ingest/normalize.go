package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// zeroWidthChars strips invisible characters that survive PDF text
// extraction and break word splitting.
var zeroWidthChars = strings.NewReplacer(
	"​", "", // zero-width space
	"‌", "", // zero-width non-joiner
	"‍", "", // zero-width joiner
	"⁠", "", // word joiner
	"\uFEFF", "", // BOM
	"­", "", // soft hyphen
)

// Normalize prepares extracted text for chunking and embedding: NFKC
// normalization (fullwidth Latin, ligatures, compatibility forms), zero-width
// character removal, and control-character cleanup. Newlines and tabs are
// preserved so paragraph structure survives.
func Normalize(text string) string {
	text = zeroWidthChars.Replace(text)
	text = norm.NFKC.String(text)

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			if r == '\r' {
				continue
			}
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
