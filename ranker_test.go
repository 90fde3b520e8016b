package sift

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		persona, task, want string
	}{
		{"Travel Planner", "Plan a 4-day trip", "Travel Planner. Plan a 4-day trip"},
		{"", "Plan a trip", "Plan a trip"},
		{"Travel Planner", "", "Travel Planner"},
		{"  Travel Planner  ", "  Plan a trip  ", "Travel Planner. Plan a trip"},
	}
	for _, tt := range tests {
		if got := BuildQuery(tt.persona, tt.task); got != tt.want {
			t.Errorf("BuildQuery(%q, %q) = %q, want %q", tt.persona, tt.task, got, tt.want)
		}
	}
}

func TestRank_OrdersBySimilarity(t *testing.T) {
	emb := &mapEmbedder{name: "test", dims: 2, vecs: map[string][]float32{
		"query":   {1, 0},
		"near":    {1, 0},
		"diag":    {1, 1},
		"distant": {0, 1},
	}}
	r := NewRanker(emb)

	chunks := []Chunk{
		{Document: "a.pdf", Text: "distant"},
		{Document: "a.pdf", Text: "near"},
		{Document: "b.pdf", Text: "diag"},
	}
	got, err := r.Rank(context.Background(), "query", chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
	if got[0].Text != "near" || got[1].Text != "diag" || got[2].Text != "distant" {
		t.Errorf("wrong order: %q, %q, %q", got[0].Text, got[1].Text, got[2].Text)
	}
	if got[0].Score != 1 {
		t.Errorf("identical vectors should score 1, got %v", got[0].Score)
	}
	if got[2].Score != 0 {
		t.Errorf("orthogonal vectors should score 0, got %v", got[2].Score)
	}
	// cos(45°) rounded to 4 decimals.
	want := math.Round(1/math.Sqrt2*10000) / 10000
	if got[1].Score != want {
		t.Errorf("got %v, want %v", got[1].Score, want)
	}
}

func TestRank_StableOnTies(t *testing.T) {
	emb := &mapEmbedder{name: "test", dims: 2}
	r := NewRanker(emb)

	// All texts embed to the same default vector, so all scores tie.
	chunks := []Chunk{
		{Document: "first", Text: "one"},
		{Document: "second", Text: "two"},
		{Document: "third", Text: "three"},
	}
	got, err := r.Rank(context.Background(), "query", chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if got[i].Document != want {
			t.Errorf("position %d: got %q, want %q", i, got[i].Document, want)
		}
	}
}

func TestRank_TopN(t *testing.T) {
	emb := &mapEmbedder{name: "test", dims: 2}
	r := NewRanker(emb, WithTopN(2))

	chunks := make([]Chunk, 5)
	for i := range chunks {
		chunks[i] = Chunk{Text: fmt.Sprintf("chunk %d", i)}
	}
	got, err := r.Rank(context.Background(), "query", chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}

func TestRank_BatchesChunks(t *testing.T) {
	emb := &mapEmbedder{name: "test", dims: 2}
	r := NewRanker(emb, WithBatchSize(2))

	chunks := make([]Chunk, 5)
	for i := range chunks {
		chunks[i] = Chunk{Text: fmt.Sprintf("chunk %d", i)}
	}
	if _, err := r.Rank(context.Background(), "query", chunks); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1 query call + ceil(5/2) = 3 chunk batches.
	if len(emb.calls) != 4 {
		t.Fatalf("got %d embed calls, want 4", len(emb.calls))
	}
	if len(emb.calls[0]) != 1 || emb.calls[0][0] != "query" {
		t.Errorf("first call should embed only the query, got %v", emb.calls[0])
	}
	for i, want := range []int{2, 2, 1} {
		if len(emb.calls[i+1]) != want {
			t.Errorf("batch %d: got %d texts, want %d", i, len(emb.calls[i+1]), want)
		}
	}
}

func TestRank_EmptyChunks(t *testing.T) {
	emb := &mapEmbedder{name: "test", dims: 2}
	r := NewRanker(emb)

	got, err := r.Rank(context.Background(), "query", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil results, got %v", got)
	}
	if len(emb.calls) != 0 {
		t.Errorf("no chunks should mean no embed calls, got %d", len(emb.calls))
	}
}

func TestBoostFor(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		keywords []string
		cap      float64
		want     float64
	}{
		{"no boost", "ordinary body copy, nothing notable", nil, 2.5, 1.0},
		{"single keyword", "the beach was sunny", []string{"beach"}, 2.5, 1.2},
		{"two keywords", "beach and coastline views", []string{"beach", "coast"}, 2.5, 1.44},
		{"schedule phrase", "Day 3 starts early", nil, 2.5, 1.3},
		{"itinerary word", "the full itinerary, below", nil, 2.5, 1.3},
		{"location preposition", "temples in Kyoto", nil, 2.5, 1.15},
		{"location verb", "see the harbor from the deck", nil, 2.5, 1.15},
		{"location once", "visit the museum then explore the port", nil, 2.5, 1.15},
		{"capped", "Day 1 itinerary: visit the beach bar on the coast", []string{"beach", "coast", "bar"}, 2.5, 2.5},
		{"lower cap", "visit on Day 2", nil, 1.2, 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRanker(&mapEmbedder{dims: 2}, WithBoostKeywords(tt.keywords), WithBoostCap(tt.cap))
			got := r.boostFor(Chunk{Text: tt.text})
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("boostFor(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestRank_BoostReordersResults(t *testing.T) {
	emb := &mapEmbedder{name: "test", dims: 2, vecs: map[string][]float32{
		"query":                     {1, 0},
		"generic background detail": {1, 0.1},
		"visit the old town on Day 2": {1, 0.4},
	}}
	r := NewRanker(emb)

	chunks := []Chunk{
		{Text: "generic background detail"},
		{Text: "visit the old town on Day 2"},
	}
	got, err := r.Rank(context.Background(), "query", chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The boosted chunk wins despite the lower base similarity.
	if got[0].Text != "visit the old town on Day 2" {
		t.Errorf("boosted chunk should rank first, got %q", got[0].Text)
	}
	if got[0].Boost <= 1 {
		t.Errorf("expected boost > 1, got %v", got[0].Boost)
	}
	if got[0].BaseScore >= got[1].BaseScore {
		t.Errorf("base scores should stay unboosted: %v vs %v", got[0].BaseScore, got[1].BaseScore)
	}
}

type failEmbedder struct {
	mapEmbedder
	failAfter int // calls before failing
	calls     int
}

func (f *failEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.calls > f.failAfter {
		return nil, errors.New("backend down")
	}
	return f.mapEmbedder.Embed(ctx, texts)
}

func TestRank_QueryEmbedError(t *testing.T) {
	emb := &failEmbedder{mapEmbedder: mapEmbedder{name: "test", dims: 2}, failAfter: 0}
	r := NewRanker(emb)

	_, err := r.Rank(context.Background(), "query", []Chunk{{Text: "a"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRank_ChunkEmbedError(t *testing.T) {
	emb := &failEmbedder{mapEmbedder: mapEmbedder{name: "test", dims: 2}, failAfter: 1}
	r := NewRanker(emb)

	_, err := r.Rank(context.Background(), "query", []Chunk{{Text: "a"}})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched length", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
