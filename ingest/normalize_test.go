package ingest

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain text unchanged", "hello world", "hello world"},
		{"ligature", "ﬁnancial oﬃce", "financial office"},
		{"fullwidth latin", "ＡＢＣ１２３", "ABC123"},
		{"zero-width space", "foo​bar", "foobar"},
		{"soft hyphen", "hy­phen", "hyphen"},
		{"carriage return", "line1\r\nline2", "line1\nline2"},
		{"control char", "a\x07b", "a b"},
		{"tab preserved", "a\tb", "a\tb"},
		{"trimmed", "  padded  ", "padded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
