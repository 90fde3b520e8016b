package sift

import "context"

// EmbeddingProvider abstracts text embedding.
type EmbeddingProvider interface {
	// Embed returns one embedding vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	// Dimensions returns the embedding vector size.
	Dimensions() int
	// Name returns the backend name ("ollama", "openai").
	Name() string
	// Model returns the embedding model identifier ("bge-small-en-v1.5").
	// Vectors from different models are never interchangeable, so cache
	// keys and output metadata use the model, not the backend name.
	Model() string
}
