// Package openaicompat implements sift.EmbeddingProvider for any
// OpenAI-compatible embeddings API.
//
// Works with OpenAI, vLLM, LM Studio, text-embeddings-inference, LocalAI,
// and any other server that implements the /v1/embeddings endpoint.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/siftlab/sift"
)

// EmbeddingOption configures an Embedding provider.
type EmbeddingOption func(*Embedding)

// WithName overrides the provider name reported in errors and metrics
// (default "openai").
func WithName(name string) EmbeddingOption {
	return func(e *Embedding) {
		if name != "" {
			e.name = name
		}
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) EmbeddingOption {
	return func(e *Embedding) {
		if c != nil {
			e.client = c
		}
	}
}

// Embedding implements sift.EmbeddingProvider for OpenAI-compatible APIs.
type Embedding struct {
	apiKey  string
	model   string
	baseURL string
	dims    int
	name    string
	client  *http.Client
}

var _ sift.EmbeddingProvider = (*Embedding)(nil)

// NewEmbedding creates an OpenAI-compatible embedding provider.
//
// baseURL is the API base (e.g. "https://api.openai.com/v1",
// "http://localhost:8000/v1"). The /embeddings path is appended
// automatically. apiKey may be empty for local servers.
func NewEmbedding(apiKey, model, baseURL string, dims int, opts ...EmbeddingOption) *Embedding {
	e := &Embedding{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		dims:    dims,
		name:    "openai",
		client:  &http.Client{},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Name returns the provider name.
func (e *Embedding) Name() string { return e.name }

// Dimensions returns the configured embedding dimensionality.
func (e *Embedding) Dimensions() int { return e.dims }

// Model returns the embedding model identifier.
func (e *Embedding) Model() string { return e.model }

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed embeds all texts in a single request and returns the vectors in
// input order.
func (e *Embedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embeddingsRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: e.name, Message: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: e.name, Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: e.name, Message: "request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: e.name, Message: "read response: " + err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &sift.ErrHTTP{
			Status:     resp.StatusCode,
			Body:       string(body),
			RetryAfter: sift.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var parsed embeddingsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &sift.ErrEmbed{Provider: e.name, Message: "parse response: " + err.Error()}
	}
	if len(parsed.Data) != len(texts) {
		return nil, &sift.ErrEmbed{Provider: e.name, Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(parsed.Data))}
	}

	// The API may return entries out of order; index is authoritative.
	vecs := make([][]float32, len(texts))
	for _, d := range parsed.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, &sift.ErrEmbed{Provider: e.name, Message: fmt.Sprintf("embedding index %d out of range", d.Index)}
		}
		vecs[d.Index] = d.Embedding
	}
	for i, v := range vecs {
		if v == nil {
			return nil, &sift.ErrEmbed{Provider: e.name, Message: fmt.Sprintf("missing embedding for input %d", i)}
		}
	}

	return vecs, nil
}
