package core

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Session holds the corpus of one interactive session together with the
// knowledge store chosen for it. Loading or clearing takes the write lock, so
// it never interleaves with a retrieval in flight.
type Session struct {
	mu     sync.RWMutex
	store  KnowledgeStore
	corpus Corpus
	loaded bool
	logger *zap.Logger
}

// NewSession creates a session bound to a knowledge store
func NewSession(store KnowledgeStore, logger *zap.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger,
	}
}

// Mode returns the retrieval mode of the session's knowledge store
func (s *Session) Mode() string {
	if s.store == nil {
		return ""
	}
	return s.store.Mode()
}

// Load replaces the session corpus and indexes it. A failed index leaves the
// session unloaded and the knowledge store reset, so no retrieval serves a
// partial index.
func (s *Session) Load(ctx context.Context, corpus Corpus) error {
	return s.replace(ctx, corpus, s.indexFn(), true)
}

// Attach replaces the session corpus with one that the knowledge store already
// indexed in an earlier run. A failed attach leaves the session unloaded.
func (s *Session) Attach(ctx context.Context, corpus Corpus) error {
	return s.replace(ctx, corpus, s.attachFn(), false)
}

func (s *Session) indexFn() func(context.Context, Corpus) error {
	if s.store == nil {
		return nil
	}
	return s.store.Index
}

func (s *Session) attachFn() func(context.Context, Corpus) error {
	if s.store == nil {
		return nil
	}
	return s.store.Attach
}

func (s *Session) replace(ctx context.Context, corpus Corpus, fn func(context.Context, Corpus) error, resetOnFailure bool) error {
	if fn == nil {
		return fmt.Errorf("knowledge store: %w", ErrNotConfigured)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := corpus.Clone()
	if err := fn(ctx, snapshot); err != nil {
		s.corpus = nil
		s.loaded = false
		if resetOnFailure {
			if rerr := s.store.Reset(ctx); rerr != nil {
				s.logger.Error("Failed to reset knowledge store after failed load",
					zap.Error(rerr),
					zap.String("mode", s.store.Mode()))
			}
		}
		return err
	}
	s.corpus = snapshot
	s.loaded = true

	s.logger.Info("Session corpus loaded",
		zap.String("mode", s.store.Mode()),
		zap.Int("messages", len(snapshot)))
	return nil
}

// Clear drops the corpus and resets the knowledge store
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset knowledge store: %w", err)
		}
	}
	s.corpus = nil
	s.loaded = false
	s.logger.Info("Session cleared")
	return nil
}

// Loaded reports whether a corpus is bound to the session
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Corpus returns a copy of the session corpus
func (s *Session) Corpus() Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.Clone()
}

// UserIdentity recomputes the corpus owner from the current corpus
func (s *Session) UserIdentity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DetectUser(s.corpus)
}

// Retrieve queries the knowledge store while holding the read lock
func (s *Session) Retrieve(ctx context.Context, sender, text string, k int) ([]RetrievedExample, error) {
	if s.store == nil {
		return nil, fmt.Errorf("knowledge store: %w", ErrNotConfigured)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded {
		return nil, ErrCorpusNotLoaded
	}
	return s.store.Retrieve(ctx, sender, text, k)
}
