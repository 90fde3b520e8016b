package analyze

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DocumentRef is one input document in the manifest. Title is optional and
// defaults to the filename without extension.
type DocumentRef struct {
	Filename string `json:"filename"`
	Title    string `json:"title,omitempty"`
}

// Persona describes who the analysis is for.
type Persona struct {
	Role string `json:"role"`
}

// Job describes what the persona needs done with the documents.
type Job struct {
	Task string `json:"task"`
}

// Manifest is the input.json schema: the documents to analyze and the
// persona plus task to rank them against. ChallengeInfo is opaque and
// passed through to the summary unchanged.
type Manifest struct {
	ChallengeInfo json.RawMessage `json:"challenge_info,omitempty"`
	Documents     []DocumentRef   `json:"documents"`
	Persona       Persona         `json:"persona"`
	Job           Job             `json:"job_to_be_done"`
}

// LoadManifest reads and parses <dataDir>/input.json.
func LoadManifest(dataDir string) (Manifest, error) {
	path := filepath.Join(dataDir, "input.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// title returns the document's display title.
func (d DocumentRef) title() string {
	if d.Title != "" {
		return d.Title
	}
	return strings.TrimSuffix(d.Filename, filepath.Ext(d.Filename))
}
