package ingest

import (
	"strings"
	"testing"
)

func TestMarkdownExtractor(t *testing.T) {
	doc := `# Packing Tips

Pack *light* clothing for the **summer** heat.

- sunscreen
- a hat

> Always carry water.

` + "```\nchecklist.sh --verify\n```" + `

See <https://example.com/guide> for more.`

	got, err := MarkdownExtractor{}.Extract([]byte(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, phrase := range []string{
		"Packing Tips",
		"Pack light clothing for the summer heat.",
		"sunscreen",
		"Always carry water.",
		"checklist.sh --verify",
		"https://example.com/guide",
	} {
		if !strings.Contains(got, phrase) {
			t.Errorf("extracted text missing %q:\n%s", phrase, got)
		}
	}
	for _, syntax := range []string{"# ", "*light*", "**summer**", "```", "<https"} {
		if strings.Contains(got, syntax) {
			t.Errorf("markdown syntax %q leaked into extracted text:\n%s", syntax, got)
		}
	}
}

func TestMarkdownExtractor_Empty(t *testing.T) {
	got, err := MarkdownExtractor{}.Extract(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty, got %q", got)
	}
}

func TestCollapseBlankLines(t *testing.T) {
	in := "a\n\n\n\nb\n\n\nc"
	want := "a\n\nb\n\nc"
	if got := collapseBlankLines(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
