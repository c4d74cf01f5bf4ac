package knowledge

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/corpus"
)

// DefaultDirectLimit is how many examples direct mode returns by default
const DefaultDirectLimit = 10

// DirectOptions tunes a DirectStore
type DirectOptions struct {
	Limit int
	// Chronological sorts by parsed date instead of by the raw date string
	Chronological bool
}

// DirectStore retrieves examples from the in-memory corpus without embeddings
type DirectStore struct {
	corpus core.Corpus
	opts   DirectOptions
	logger *zap.Logger
}

// NewDirectStore creates a direct-lookup knowledge store
func NewDirectStore(opts DirectOptions, logger *zap.Logger) *DirectStore {
	if opts.Limit <= 0 {
		opts.Limit = DefaultDirectLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectStore{
		opts:   opts,
		logger: logger,
	}
}

// Mode implements core.KnowledgeStore
func (s *DirectStore) Mode() string {
	return core.ModeDirect
}

// Index keeps a reference to the corpus. Callers serialize Index and Retrieve.
func (s *DirectStore) Index(ctx context.Context, c core.Corpus) error {
	s.corpus = c
	s.logger.Debug("Direct store bound to corpus", zap.Int("messages", len(c)))
	return nil
}

// Attach is the same as Index; there is nothing persisted to verify
func (s *DirectStore) Attach(ctx context.Context, c core.Corpus) error {
	return s.Index(ctx, c)
}

// Retrieve implements core.KnowledgeStore. The incoming text is not used.
func (s *DirectStore) Retrieve(ctx context.Context, sender, text string, k int) ([]core.RetrievedExample, error) {
	if k <= 0 {
		k = s.opts.Limit
	}
	var examples []core.RetrievedExample
	if s.opts.Chronological {
		examples = RetrieveDirectChronological(sender, s.corpus, k)
	} else {
		examples = RetrieveDirect(sender, s.corpus, k)
	}
	s.logger.Debug("Retrieved direct examples",
		zap.String("sender", sender),
		zap.Int("returned", len(examples)))
	return examples, nil
}

// Reset drops the corpus reference
func (s *DirectStore) Reset(ctx context.Context) error {
	s.corpus = nil
	return nil
}

// RetrieveDirect selects up to limit messages whose sender contains the given
// sender (case-insensitive), or the whole corpus when none match, newest first
// by the raw date string.
func RetrieveDirect(sender string, c core.Corpus, limit int) []core.RetrievedExample {
	candidates := candidatesFor(sender, c)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].SentAt > candidates[j].SentAt
	})
	return project(candidates, limit)
}

// RetrieveDirectChronological is RetrieveDirect ordered by parsed date.
// Unparsable dates sort after parsable ones, by raw string among themselves.
func RetrieveDirectChronological(sender string, c core.Corpus, limit int) []core.RetrievedExample {
	candidates := candidatesFor(sender, c)
	sort.SliceStable(candidates, func(i, j int) bool {
		ti, iok := corpus.ParseDate(candidates[i].SentAt)
		tj, jok := corpus.ParseDate(candidates[j].SentAt)
		switch {
		case iok && jok:
			return ti.After(tj)
		case iok != jok:
			return iok
		default:
			return candidates[i].SentAt > candidates[j].SentAt
		}
	})
	return project(candidates, limit)
}

func candidatesFor(sender string, c core.Corpus) []*core.NormalizedMessage {
	needle := strings.ToLower(strings.TrimSpace(sender))

	var matched, all []*core.NormalizedMessage
	for i := range c {
		msg := &c[i]
		all = append(all, msg)
		if needle != "" && strings.Contains(strings.ToLower(msg.Sender), needle) {
			matched = append(matched, msg)
		}
	}
	if len(matched) > 0 {
		return matched
	}
	return all
}

func project(msgs []*core.NormalizedMessage, limit int) []core.RetrievedExample {
	if limit < 0 {
		limit = 0
	}
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	out := make([]core.RetrievedExample, 0, len(msgs))
	for i, msg := range msgs {
		out = append(out, core.RetrievedExample{
			Filename: msg.Filename,
			Sender:   msg.Sender,
			Subject:  msg.Subject,
			Date:     msg.SentAt,
			Body:     msg.Body,
			Rank:     i + 1,
		})
	}
	return out
}
