package sift

import "context"

// mapEmbedder is a deterministic test EmbeddingProvider: each text maps to a
// fixed vector. Unknown texts get a unit vector so cosine math stays defined.
type mapEmbedder struct {
	name  string
	model string
	dims  int
	vecs  map[string][]float32
	calls [][]string // recorded batches, in call order
}

func (m *mapEmbedder) Name() string { return m.name }

func (m *mapEmbedder) Model() string { return m.model }

func (m *mapEmbedder) Dimensions() int { return m.dims }

func (m *mapEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	batch := make([]string, len(texts))
	copy(batch, texts)
	m.calls = append(m.calls, batch)

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := m.vecs[text]; ok {
			out[i] = v
			continue
		}
		v := make([]float32, m.dims)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

var _ EmbeddingProvider = (*mapEmbedder)(nil)
