package retrieval

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Ingester splits a document, embeds every chunk and stores the result.
type Ingester struct {
	store     *Store
	embedder  Embedder
	chunkSize int
	overlap   int
	logger    *zap.Logger
}

func NewIngester(store *Store, embedder Embedder, chunkSize, overlap int, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{store: store, embedder: embedder, chunkSize: chunkSize, overlap: overlap, logger: logger}
}

// Ingest indexes the text file at path and returns how many chunks were stored.
// Nothing is written if any chunk fails to embed.
func (in *Ingester) Ingest(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	source := filepath.Base(path)
	texts := Split(string(data), in.chunkSize, in.overlap)
	in.logger.Info("ingesting document", zap.String("source", source), zap.Int("chunks", len(texts)))

	chunks := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		vec, err := in.embedder.Embed(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d of %s: %w", i, source, err)
		}
		chunks = append(chunks, Chunk{Source: source, Position: i, Content: text, Embedding: vec})
		if (i+1)%25 == 0 {
			in.logger.Debug("embedding progress", zap.Int("done", i+1), zap.Int("total", len(texts)))
		}
	}

	if err := in.store.Add(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}
