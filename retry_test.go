package sift

import (
	"context"
	"errors"
	"testing"
	"time"
)

// queueEmbedder returns pre-configured results in call order.
type queueEmbedder struct {
	calls   int
	results []queueResult
}

type queueResult struct {
	vecs [][]float32
	err  error
}

func (q *queueEmbedder) Name() string { return "queue" }

func (q *queueEmbedder) Dimensions() int { return 2 }

func (q *queueEmbedder) Model() string { return "queue-model" }

func (q *queueEmbedder) Embed(_ context.Context, _ []string) ([][]float32, error) {
	i := q.calls
	q.calls++
	if i < len(q.results) {
		return q.results[i].vecs, q.results[i].err
	}
	return nil, nil
}

var _ EmbeddingProvider = (*queueEmbedder)(nil)

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	stub := &queueEmbedder{results: []queueResult{
		{vecs: [][]float32{{1, 0}}},
	}}
	p := WithRetry(stub, RetryBaseDelay(0))

	vecs, err := p.Embed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 1 {
		t.Errorf("got %d vectors, want 1", len(vecs))
	}
	if stub.calls != 1 {
		t.Errorf("got %d calls, want 1", stub.calls)
	}
}

func TestWithRetry_RetriesOn503(t *testing.T) {
	stub := &queueEmbedder{results: []queueResult{
		{err: &ErrHTTP{Status: 503, Body: "unavailable"}},
		{vecs: [][]float32{{1, 0}}},
	}}
	p := WithRetry(stub, RetryBaseDelay(0))

	vecs, err := p.Embed(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vecs) != 1 {
		t.Errorf("got %d vectors, want 1", len(vecs))
	}
	if stub.calls != 2 {
		t.Errorf("got %d calls, want 2", stub.calls)
	}
}

func TestWithRetry_RetriesOn429(t *testing.T) {
	stub := &queueEmbedder{results: []queueResult{
		{err: &ErrHTTP{Status: 429, Body: "slow down"}},
		{err: &ErrHTTP{Status: 429, Body: "slow down"}},
		{vecs: [][]float32{{1, 0}}},
	}}
	p := WithRetry(stub, RetryBaseDelay(0))

	if _, err := p.Embed(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("got %d calls, want 3", stub.calls)
	}
}

func TestWithRetry_NoRetryOnNonTransient(t *testing.T) {
	stub := &queueEmbedder{results: []queueResult{
		{err: &ErrHTTP{Status: 400, Body: "bad request"}},
	}}
	p := WithRetry(stub, RetryBaseDelay(0))

	_, err := p.Embed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error")
	}
	if stub.calls != 1 {
		t.Errorf("non-transient errors should not retry, got %d calls", stub.calls)
	}
}

func TestWithRetry_NoRetryOnEmbedError(t *testing.T) {
	stub := &queueEmbedder{results: []queueResult{
		{err: &ErrEmbed{Provider: "queue", Message: "bad model"}},
	}}
	p := WithRetry(stub, RetryBaseDelay(0))

	_, err := p.Embed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error")
	}
	if stub.calls != 1 {
		t.Errorf("got %d calls, want 1", stub.calls)
	}
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	stub := &queueEmbedder{results: []queueResult{
		{err: &ErrHTTP{Status: 503}},
		{err: &ErrHTTP{Status: 503}},
		{err: &ErrHTTP{Status: 503}},
		{err: &ErrHTTP{Status: 503}},
	}}
	p := WithRetry(stub, RetryBaseDelay(0), RetryMaxAttempts(3))

	_, err := p.Embed(context.Background(), []string{"a"})
	var he *ErrHTTP
	if !errors.As(err, &he) || he.Status != 503 {
		t.Fatalf("expected final 503, got %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("got %d calls, want 3", stub.calls)
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	stub := &queueEmbedder{results: []queueResult{
		{err: &ErrHTTP{Status: 503}},
	}}
	p := WithRetry(stub, RetryBaseDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Embed(ctx, []string{"a"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("got %d calls, want 1", stub.calls)
	}
}

func TestWithRetry_Delegates(t *testing.T) {
	stub := &queueEmbedder{}
	p := WithRetry(stub)
	if p.Name() != "queue" {
		t.Errorf("Name() = %q", p.Name())
	}
	if p.Dimensions() != 2 {
		t.Errorf("Dimensions() = %d", p.Dimensions())
	}
	if p.Model() != "queue-model" {
		t.Errorf("Model() = %q", p.Model())
	}
}

func TestRetryDelay_HonorsRetryAfter(t *testing.T) {
	err := &ErrHTTP{Status: 429, RetryAfter: 5 * time.Second}
	if d := retryDelay(0, 0, err); d != 5*time.Second {
		t.Errorf("got %v, want 5s", d)
	}
	// Backoff exceeds Retry-After: backoff wins.
	err = &ErrHTTP{Status: 429, RetryAfter: time.Millisecond}
	if d := retryDelay(time.Second, 2, err); d < 4*time.Second {
		t.Errorf("got %v, want at least 4s", d)
	}
}
