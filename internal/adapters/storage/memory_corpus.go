package storage

import (
	"context"
	"sync"

	"github.com/mikey/llm-style-responder/internal/core"
)

// MemoryCorpusRepository keeps the corpus for the life of the process
type MemoryCorpusRepository struct {
	corpus core.Corpus
	mu     sync.RWMutex
}

// NewMemoryCorpusRepository creates a new in-memory corpus repository
func NewMemoryCorpusRepository() *MemoryCorpusRepository {
	return &MemoryCorpusRepository{}
}

func (r *MemoryCorpusRepository) Save(ctx context.Context, corpus core.Corpus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.corpus = corpus.Clone()
	return nil
}

func (r *MemoryCorpusRepository) Load(ctx context.Context) (core.Corpus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.corpus.Clone(), nil
}

func (r *MemoryCorpusRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.corpus = nil
	return nil
}
