// Package ollama implements sift.EmbeddingProvider against a local
// Ollama-compatible server. It is the default way to run a pretrained
// sentence-embedding model (for example bge-small-en-v1.5) without any
// cloud dependency.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/siftlab/sift"
)

const (
	defaultBaseURL = "http://localhost:11434"
	embedEndpoint  = "/api/embed"
	defaultTimeout = 30 * time.Second
)

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides the server base URL.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		if baseURL != "" {
			p.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client (timeouts, transport).
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// Provider embeds texts via the Ollama embed API.
type Provider struct {
	baseURL string
	model   string
	dims    int
	client  *http.Client
}

var _ sift.EmbeddingProvider = (*Provider)(nil)

// New creates an Ollama embedding provider for the given model.
// dims is the model's embedding dimensionality (384 for bge-small).
func New(model string, dims int, opts ...Option) *Provider {
	p := &Provider{
		baseURL: defaultBaseURL,
		model:   model,
		dims:    dims,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Name returns "ollama".
func (p *Provider) Name() string { return "ollama" }

// Dimensions returns the configured embedding dimensionality.
func (p *Provider) Dimensions() int { return p.dims }

// Model returns the embedding model identifier.
func (p *Provider) Model() string { return p.model }

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error"`
}

// Embed embeds all texts in a single request and returns the vectors in
// input order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if p.model == "" {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: "model is required"}
	}

	payload, err := json.Marshal(embedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: "marshal request: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+embedEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: "create request: " + err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: "request failed: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: "read response: " + err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &sift.ErrHTTP{
			Status:     resp.StatusCode,
			Body:       string(body),
			RetryAfter: sift.ParseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	var parsed embedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: "parse response: " + err.Error()}
	}
	if parsed.Error != "" {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: parsed.Error}
	}
	if len(parsed.Embeddings) != len(texts) {
		return nil, &sift.ErrEmbed{Provider: "ollama", Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(parsed.Embeddings))}
	}

	return parsed.Embeddings, nil
}
