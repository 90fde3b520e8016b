package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siftlab/sift"
)

// Metadata records how a summary was produced.
type Metadata struct {
	InputDocuments        []string `json:"input_documents"`
	Persona               string   `json:"persona"`
	JobToBeDone           string   `json:"job_to_be_done"`
	ProcessingTimestamp   string   `json:"processing_timestamp"`
	ModelUsed             string   `json:"model_used"`
	ProcessingTimeSeconds float64  `json:"processing_time_seconds"`
	RunID                 string   `json:"run_id"`
}

// ExtractedSection is one ranked section in the summary.
type ExtractedSection struct {
	Document       string  `json:"document"`
	DocumentTitle  string  `json:"document_title"`
	PageNumber     int     `json:"page_number"`
	SectionTitle   string  `json:"section_title"`
	ImportanceRank int     `json:"importance_rank"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Subsection carries the refined text of one ranked section.
type Subsection struct {
	Document       string  `json:"document"`
	DocumentTitle  string  `json:"document_title"`
	RefinedText    string  `json:"refined_text"`
	PageNumber     int     `json:"page_number"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Summary is the output schema written to summary.json.
type Summary struct {
	ChallengeInfo      json.RawMessage    `json:"challenge_info,omitempty"`
	Metadata           Metadata           `json:"metadata"`
	ExtractedSections  []ExtractedSection `json:"extracted_sections"`
	SubsectionAnalysis []Subsection       `json:"subsection_analysis"`
}

// buildSummary assembles the output from ranked chunks.
// Ranks are 1-based in score order.
func buildSummary(m Manifest, meta Metadata, ranked []sift.ScoredChunk) Summary {
	s := Summary{
		ChallengeInfo:      m.ChallengeInfo,
		Metadata:           meta,
		ExtractedSections:  make([]ExtractedSection, 0, len(ranked)),
		SubsectionAnalysis: make([]Subsection, 0, len(ranked)),
	}
	for i, sc := range ranked {
		s.ExtractedSections = append(s.ExtractedSections, ExtractedSection{
			Document:       sc.Document,
			DocumentTitle:  sc.DocumentTitle,
			PageNumber:     sc.Page,
			SectionTitle:   fmt.Sprintf("Page %d", sc.Page),
			ImportanceRank: i + 1,
			RelevanceScore: sc.Score,
		})
		s.SubsectionAnalysis = append(s.SubsectionAnalysis, Subsection{
			Document:       sc.Document,
			DocumentTitle:  sc.DocumentTitle,
			RefinedText:    truncateRunes(sc.Text, 1000),
			PageNumber:     sc.Page,
			RelevanceScore: sc.Score,
		})
	}
	return s
}

// Write serializes the summary to <outputDir>/summary.json, creating the
// directory if needed.
func (s Summary) Write(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(outputDir, "summary.json")
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
