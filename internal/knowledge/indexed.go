package knowledge

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/utils"
)

// Defaults for indexed retrieval
const (
	DefaultTopK         = 15
	DefaultBatchSize    = 100
	DefaultPreviewChars = 500
)

// IndexedOptions tunes an IndexedStore
type IndexedOptions struct {
	TopK         int
	BatchSize    int
	PreviewChars int
}

// IndexedStore retrieves examples by similarity search over embedded documents
type IndexedStore struct {
	store  core.SimilarityStore
	text   *utils.TextProcessor
	opts   IndexedOptions
	logger *zap.Logger
}

// NewIndexedStore creates a knowledge store on top of a similarity store
func NewIndexedStore(store core.SimilarityStore, text *utils.TextProcessor, opts IndexedOptions, logger *zap.Logger) *IndexedStore {
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.PreviewChars <= 0 {
		opts.PreviewChars = DefaultPreviewChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if text == nil {
		text = utils.NewTextProcessor(logger)
	}
	return &IndexedStore{
		store:  store,
		text:   text,
		opts:   opts,
		logger: logger,
	}
}

// Mode implements core.KnowledgeStore
func (s *IndexedStore) Mode() string {
	return core.ModeIndexed
}

// Documents renders the indexable messages of a corpus. Messages without a
// body are indexed with an empty body; parse-failure placeholders are left out.
func (s *IndexedStore) Documents(corpus core.Corpus) []core.Document {
	docs := make([]core.Document, 0, len(corpus))
	for i := range corpus {
		msg := &corpus[i]
		if msg.BodyStatus == core.BodyParseFailed {
			continue
		}
		docs = append(docs, BuildDocument(msg, s.text.Preview(msg.Body, s.opts.PreviewChars)))
	}
	return docs
}

// Index replaces the similarity store contents with the corpus
func (s *IndexedStore) Index(ctx context.Context, corpus core.Corpus) error {
	if s.store == nil {
		return fmt.Errorf("similarity store: %w", core.ErrNotConfigured)
	}

	docs := s.Documents(corpus)
	s.logger.Info("Indexing corpus",
		zap.Int("messages", len(corpus)),
		zap.Int("documents", len(docs)),
		zap.Int("batch_size", s.opts.BatchSize))

	if err := s.store.Clear(ctx); err != nil {
		return &core.RetrievalError{Mode: core.ModeIndexed, Err: fmt.Errorf("failed to clear similarity store: %w", err)}
	}

	for start := 0; start < len(docs); start += s.opts.BatchSize {
		end := start + s.opts.BatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := s.store.Upsert(ctx, docs[start:end]); err != nil {
			return &core.RetrievalError{
				Mode: core.ModeIndexed,
				Err:  fmt.Errorf("failed to upsert documents %d-%d: %w", start, end, err),
			}
		}
		s.logger.Debug("Upserted document batch",
			zap.Int("start", start),
			zap.Int("end", end))
	}

	return nil
}

// Attach checks that an earlier run already indexed documents
func (s *IndexedStore) Attach(ctx context.Context, corpus core.Corpus) error {
	if s.store == nil {
		return fmt.Errorf("similarity store: %w", core.ErrNotConfigured)
	}
	n, err := s.store.Count(ctx)
	if err != nil {
		return &core.RetrievalError{Mode: core.ModeIndexed, Err: err}
	}
	if n == 0 {
		return core.ErrNotIndexed
	}
	s.logger.Info("Attached to existing index",
		zap.Int("documents", n),
		zap.Int("messages", len(corpus)))
	return nil
}

// Retrieve queries the similarity store with the incoming text and returns the
// hits ranked by score, best first
func (s *IndexedStore) Retrieve(ctx context.Context, sender, text string, k int) ([]core.RetrievedExample, error) {
	if s.store == nil {
		return nil, fmt.Errorf("similarity store: %w", core.ErrNotConfigured)
	}
	if k <= 0 {
		k = s.opts.TopK
	}

	hits, err := s.store.Query(ctx, queryText(sender, text), k)
	if err != nil {
		return nil, fmt.Errorf("similarity query failed: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	examples := make([]core.RetrievedExample, 0, len(hits))
	for i, hit := range hits {
		examples = append(examples, exampleFromDocument(hit, i+1))
	}

	s.logger.Debug("Retrieved indexed examples",
		zap.String("sender", sender),
		zap.Int("requested", k),
		zap.Int("returned", len(examples)))
	return examples, nil
}

// Reset clears the similarity store
func (s *IndexedStore) Reset(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx)
}

func queryText(sender, text string) string {
	if sender == "" {
		return text
	}
	return "From: " + sender + "\n\n" + text
}
