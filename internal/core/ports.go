package core

import (
	"context"
)

// CompletionService generates text for a prompt
type CompletionService interface {
	// Complete returns the generated text for the prompt
	Complete(ctx context.Context, prompt string) (string, error)
}

// PromptLimit is implemented by completion services that reject prompts
// longer than a size in bytes
type PromptLimit interface {
	MaxPromptSize() int
}

// Embedder turns texts into vectors for similarity search
type Embedder interface {
	// Embed returns one vector per input text, in input order
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SimilarityStore stores documents and answers similarity queries
type SimilarityStore interface {
	// Upsert inserts or replaces documents by ID
	Upsert(ctx context.Context, docs []Document) error

	// Query returns up to k documents ranked by descending score
	Query(ctx context.Context, text string, k int) ([]ScoredDocument, error)

	// Count returns the number of stored documents
	Count(ctx context.Context) (int, error)

	// Clear removes every stored document
	Clear(ctx context.Context) error
}

// KnowledgeStore retrieves style examples from a corpus
type KnowledgeStore interface {
	// Mode names the retrieval strategy ("indexed" or "direct")
	Mode() string

	// Index makes the corpus retrievable, replacing anything indexed before
	Index(ctx context.Context, corpus Corpus) error

	// Attach binds a corpus that was indexed by an earlier process
	Attach(ctx context.Context, corpus Corpus) error

	// Retrieve returns up to k examples relevant to the sender and text.
	// k <= 0 selects the store default.
	Retrieve(ctx context.Context, sender, text string, k int) ([]RetrievedExample, error)

	// Reset drops everything the store holds
	Reset(ctx context.Context) error
}

// CorpusRepository persists a corpus between invocations
type CorpusRepository interface {
	// Save replaces the stored corpus
	Save(ctx context.Context, corpus Corpus) error

	// Load returns the stored corpus in insertion order
	Load(ctx context.Context) (Corpus, error)

	// Clear removes the stored corpus
	Clear(ctx context.Context) error
}

// FingerprintFilter remembers which content fingerprints were already seen
// within a scope
type FingerprintFilter interface {
	// IsNew returns true the first time a fingerprint is seen in the scope
	IsNew(ctx context.Context, scope, fingerprint string) (bool, error)
}
