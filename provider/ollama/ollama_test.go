package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/siftlab/sift"
)

func TestProvider_Embed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/embed" {
			t.Errorf("expected path /api/embed, got %s", r.URL.Path)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content-type: %s", r.Header.Get("Content-Type"))
		}

		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "bge-small-en-v1.5" {
			t.Errorf("expected model bge-small-en-v1.5, got %s", req.Model)
		}
		if len(req.Input) != 2 {
			t.Errorf("expected 2 inputs, got %d", len(req.Input))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(embedResponse{
			Embeddings: [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer srv.Close()

	p := New("bge-small-en-v1.5", 2, WithBaseURL(srv.URL))

	vecs, err := p.Embed(context.Background(), []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if vecs[0][0] != 0.1 || vecs[1][1] != 0.4 {
		t.Errorf("unexpected vectors: %v", vecs)
	}
}

func TestProvider_EmbedHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New("bge-small-en-v1.5", 2, WithBaseURL(srv.URL))

	_, err := p.Embed(context.Background(), []string{"a"})
	var he *sift.ErrHTTP
	if !errors.As(err, &he) {
		t.Fatalf("expected *sift.ErrHTTP, got %v", err)
	}
	if he.Status != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", he.Status)
	}
	if he.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", he.RetryAfter)
	}
}

func TestProvider_EmbedAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Error: "model not found"})
	}))
	defer srv.Close()

	p := New("missing-model", 2, WithBaseURL(srv.URL))

	_, err := p.Embed(context.Background(), []string{"a"})
	var ee *sift.ErrEmbed
	if !errors.As(err, &ee) {
		t.Fatalf("expected *sift.ErrEmbed, got %v", err)
	}
}

func TestProvider_EmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{0.1}}})
	}))
	defer srv.Close()

	p := New("bge-small-en-v1.5", 2, WithBaseURL(srv.URL))

	if _, err := p.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error on embedding count mismatch")
	}
}

func TestProvider_EmbedEmptyInput(t *testing.T) {
	p := New("bge-small-en-v1.5", 2)
	vecs, err := p.Embed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vecs != nil {
		t.Errorf("expected nil, got %v", vecs)
	}
}

func TestProvider_RequiresModel(t *testing.T) {
	p := New("", 2)
	if _, err := p.Embed(context.Background(), []string{"a"}); err == nil {
		t.Error("expected error when model is empty")
	}
}

func TestProvider_Identity(t *testing.T) {
	p := New("bge-small-en-v1.5", 384)
	if p.Name() != "ollama" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.Dimensions() != 384 {
		t.Errorf("Dimensions() = %d", p.Dimensions())
	}
	if p.Model() != "bge-small-en-v1.5" {
		t.Errorf("Model() = %q", p.Model())
	}
}
