// Binary sift-outline extracts a heading outline from a PDF document by
// font-size ranking and writes it as JSON.
//
// Usage:
//
//	sift-outline --input report.pdf [--output outline.json] [--min-chars 3] [--max-level 2]
//
// By default the outline is written next to the input as outline.json.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/siftlab/sift/internal/config"
	"github.com/siftlab/sift/outline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		input      = flag.String("input", "", "path to the input PDF (required)")
		output     = flag.String("output", "", "output JSON path (default: outline.json next to the input)")
		minChars   = flag.Int("min-chars", 0, "minimum heading length in characters (0 = config default)")
		maxLevel   = flag.Int("max-level", 0, "deepest heading level to emit, 1-3 (0 = config default)")
		configPath = flag.String("config", "", "path to sift.toml (default: $SIFT_CONFIG or ./sift.toml)")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		return fmt.Errorf("--input is required")
	}

	cfg := config.Load(*configPath)
	if *minChars <= 0 {
		*minChars = cfg.Outline.MinChars
	}
	if *maxLevel <= 0 {
		*maxLevel = cfg.Outline.MaxLevel
	}

	ext := outline.New(
		outline.WithMinChars(*minChars),
		outline.WithMaxLevel(*maxLevel),
	)
	ol, err := ext.FromFile(*input)
	if err != nil {
		return err
	}

	path := *output
	if path == "" {
		path = filepath.Join(filepath.Dir(*input), "outline.json")
	}

	data, err := json.MarshalIndent(ol, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("outline written to %s (%d headings)\n", path, len(ol.Headings))
	return nil
}
