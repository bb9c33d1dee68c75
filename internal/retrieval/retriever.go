package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// Retriever ranks stored chunks by cosine similarity to the query.
type Retriever struct {
	store    *Store
	embedder Embedder
	topK     int
	logger   *zap.Logger
}

func NewRetriever(store *Store, embedder Embedder, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{store: store, embedder: embedder, topK: topK, logger: logger}
}

// RelevantDocuments returns up to topK passages, best match first. An empty index yields none.
func (r *Retriever) RelevantDocuments(ctx context.Context, query string) ([]string, error) {
	chunks, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		r.logger.Debug("retrieval index is empty")
		return nil, nil
	}

	qv, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	type scored struct {
		content string
		score   float64
	}
	ranked := make([]scored, 0, len(chunks))
	for _, c := range chunks {
		ranked = append(ranked, scored{content: c.Content, score: cosine(qv, c.Embedding)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	n := min(r.topK, len(ranked))
	out := make([]string, n)
	for i := range out {
		out[i] = ranked[i].content
	}
	r.logger.Debug("retrieved documents", zap.Int("candidates", len(chunks)), zap.Int("returned", n))
	return out, nil
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
