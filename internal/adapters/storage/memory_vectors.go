package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikey/llm-style-responder/internal/core"
	"go.uber.org/zap"
)

type vectorEntry struct {
	doc    core.Document
	vector []float32
}

// MemoryVectorStore is an in-memory implementation of the SimilarityStore interface
type MemoryVectorStore struct {
	embedder core.Embedder
	entries  map[string]*vectorEntry
	order    []string
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewMemoryVectorStore creates a new in-memory vector store
func NewMemoryVectorStore(embedder core.Embedder, logger *zap.Logger) *MemoryVectorStore {
	return &MemoryVectorStore{
		embedder: embedder,
		entries:  make(map[string]*vectorEntry),
		logger:   logger,
	}
}

// Upsert embeds and stores documents, replacing any with the same ID
func (s *MemoryVectorStore) Upsert(ctx context.Context, docs []core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	vectors, err := embedDocuments(func(texts []string) ([][]float32, error) {
		return s.embedder.Embed(ctx, texts)
	}, docs)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, doc := range docs {
		if _, ok := s.entries[doc.ID]; !ok {
			s.order = append(s.order, doc.ID)
		}
		doc.Metadata = copyMetadata(doc.Metadata)
		s.entries[doc.ID] = &vectorEntry{doc: doc, vector: vectors[i]}
	}

	s.logger.Debug("Stored documents in memory", zap.Int("count", len(docs)), zap.Int("total", len(s.order)))
	return nil
}

// Query returns up to k documents ranked by cosine similarity to text
func (s *MemoryVectorStore) Query(ctx context.Context, text string, k int) ([]core.ScoredDocument, error) {
	vectors, err := s.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]core.ScoredDocument, 0, len(s.order))
	for _, id := range s.order {
		entry := s.entries[id]
		doc := entry.doc
		doc.Metadata = copyMetadata(doc.Metadata)
		hits = append(hits, core.ScoredDocument{Document: doc, Score: cosine(vectors[0], entry.vector)})
	}

	return topK(hits, k), nil
}

// Count returns the number of stored documents
func (s *MemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order), nil
}

// Clear removes every stored document
func (s *MemoryVectorStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*vectorEntry)
	s.order = nil
	return nil
}
