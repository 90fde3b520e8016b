// Package sift extracts structure and meaning from PDF documents.
//
// It provides two batch pipelines built from small, interface-driven parts:
// a heading-outline extractor that classifies text lines into title/H1/H2/H3
// levels by font-size ranking, and a semantic section ranker that chunks
// document text, embeds the chunks with a pretrained sentence-embedding
// model, and ranks them against a persona and task description.
//
// # Quick Start
//
// Rank document chunks against a query:
//
//	provider := ollama.New("bge-small-en-v1.5", 384)
//	ranker := sift.NewRanker(provider, sift.WithTopN(10))
//
//	query := sift.BuildQuery("Travel Planner", "Plan a 4-day trip for college friends")
//	top, err := ranker.Rank(ctx, query, chunks)
//
// Extract a heading outline:
//
//	ext := outline.New(outline.WithMaxLevel(3))
//	ol, err := ext.FromFile("report.pdf")
//
// # Core Interfaces
//
// The root package defines the contracts that all components implement:
//
//   - [EmbeddingProvider]: text-to-vector embedding
//   - [EmbedCache]: persistent embedding cache (sqlite or postgres backends)
//   - [Ranker]: cosine-similarity ranking with configurable boosts
//
// Subpackages supply the concrete pieces: ingest (extraction, chunking,
// normalization), ingest/pdf (PDF text and font spans), outline (heading
// classification), analyze (the end-to-end section-analysis pipeline),
// provider/* (embedding backends), store/* (cache backends), and observer
// (OpenTelemetry instrumentation).
package sift
