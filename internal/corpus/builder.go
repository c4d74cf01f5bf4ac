package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/mailparse"
)

// DedupPolicy controls what the builder does with repeated fingerprints
type DedupPolicy string

const (
	// DedupOff never consults the fingerprint filter
	DedupOff DedupPolicy = "off"
	// DedupAdvisory keeps duplicates and marks them with DuplicateOf
	DedupAdvisory DedupPolicy = "advisory"
	// DedupEnforce drops duplicates from the corpus
	DedupEnforce DedupPolicy = "enforce"
)

// PriorIngest is recorded in DuplicateOf when the first copy was seen by an
// earlier build sharing the same scope
const PriorIngest = "(previous ingest)"

// ParseDedupPolicy maps a configuration value to a policy
func ParseDedupPolicy(value string) (DedupPolicy, error) {
	switch DedupPolicy(value) {
	case DedupOff, DedupAdvisory, DedupEnforce:
		return DedupPolicy(value), nil
	case "":
		return DedupAdvisory, nil
	default:
		return "", fmt.Errorf("unknown dedup policy: %s", value)
	}
}

// MessageNormalizer converts raw bytes into a normalized record
type MessageNormalizer interface {
	Normalize(raw []byte, filename string) core.NormalizedMessage
}

// Options tunes a Builder
type Options struct {
	// Workers > 1 decodes messages in parallel
	Workers int
	Dedup   DedupPolicy
	// Scope namespaces fingerprints in the filter. Empty means a fresh scope
	// per build.
	Scope string
}

// Failure describes one input that could not be processed
type Failure struct {
	Index    int
	Filename string
	Reason   string
}

// ProgressFunc is called after each input is processed
type ProgressFunc func(done, total int, filename string)

// Report is the outcome of a build. len(Corpus)+Dropped always equals the
// number of inputs.
type Report struct {
	Corpus     core.Corpus
	Failures   []Failure
	Duplicates int
	Dropped    int
	Scope      string
	Stats      Stats
}

// Builder turns raw inputs into a corpus
type Builder struct {
	normalizer MessageNormalizer
	filter     core.FingerprintFilter
	opts       Options
	logger     *zap.Logger
}

// NewBuilder creates a corpus builder. filter may be nil when dedup is off.
func NewBuilder(normalizer MessageNormalizer, filter core.FingerprintFilter, opts Options, logger *zap.Logger) *Builder {
	if opts.Dedup == "" {
		opts.Dedup = DedupAdvisory
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		normalizer: normalizer,
		filter:     filter,
		opts:       opts,
		logger:     logger,
	}
}

// Build normalizes every input in order. A bad input never aborts the batch:
// it yields a placeholder record and a Failure. Only context cancellation
// returns an error.
func (b *Builder) Build(ctx context.Context, inputs []core.RawMessage, progress ProgressFunc) (*Report, error) {
	messages, err := b.normalizeAll(ctx, inputs, progress)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Corpus: make(core.Corpus, 0, len(messages)),
		Scope:  b.opts.Scope,
	}
	if report.Scope == "" {
		report.Scope = uuid.NewString()
	}

	firstSeen := make(map[string]string)
	for i, msg := range messages {
		if msg.BodyStatus == core.BodyParseFailed {
			report.Failures = append(report.Failures, Failure{
				Index:    i,
				Filename: msg.Filename,
				Reason:   msg.ParseError,
			})
			report.Corpus = append(report.Corpus, msg)
			continue
		}

		duplicate, original := b.checkDuplicate(ctx, report.Scope, &msg, firstSeen)
		if duplicate {
			report.Duplicates++
			if b.opts.Dedup == DedupEnforce {
				report.Dropped++
				b.logger.Debug("Dropped duplicate email",
					zap.String("filename", msg.Filename),
					zap.String("duplicate_of", original))
				continue
			}
			msg.DuplicateOf = original
		}
		report.Corpus = append(report.Corpus, msg)
	}

	report.Stats = Summarize(report.Corpus)

	b.logger.Info("Corpus built",
		zap.Int("inputs", len(inputs)),
		zap.Int("messages", len(report.Corpus)),
		zap.Int("failures", len(report.Failures)),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("dropped", report.Dropped),
		zap.String("dedup", string(b.opts.Dedup)))

	return report, nil
}

func (b *Builder) checkDuplicate(ctx context.Context, scope string, msg *core.NormalizedMessage, firstSeen map[string]string) (bool, string) {
	if b.opts.Dedup == DedupOff {
		return false, ""
	}

	if original, ok := firstSeen[msg.Fingerprint]; ok {
		return true, original
	}
	firstSeen[msg.Fingerprint] = msg.Filename

	if b.filter == nil {
		return false, ""
	}
	isNew, err := b.filter.IsNew(ctx, scope, msg.Fingerprint)
	if err != nil {
		// Filter errors never fail the batch.
		b.logger.Warn("Fingerprint filter unavailable, treating email as new",
			zap.String("filename", msg.Filename),
			zap.Error(err))
		return false, ""
	}
	if !isNew {
		return true, PriorIngest
	}
	return false, ""
}

// normalizeAll decodes inputs, in parallel when configured, and returns the
// results in input order
func (b *Builder) normalizeAll(ctx context.Context, inputs []core.RawMessage, progress ProgressFunc) ([]core.NormalizedMessage, error) {
	results := make([]core.NormalizedMessage, len(inputs))
	total := len(inputs)

	var mu sync.Mutex
	done := 0
	report := func(filename string) {
		if progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		progress(done, total, filename)
	}

	if b.opts.Workers <= 1 {
		for i := range inputs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = b.normalizeOne(inputs[i])
			report(inputs[i].Filename)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)
	for i := range inputs {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = b.normalizeOne(inputs[i])
			report(inputs[i].Filename)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (b *Builder) normalizeOne(in core.RawMessage) core.NormalizedMessage {
	if in.Err != nil {
		b.logger.Warn("Failed to read email", zap.String("filename", in.Filename), zap.Error(in.Err))
		return mailparse.Placeholder(in.Filename, in.Err)
	}
	if b.normalizer == nil {
		return mailparse.Placeholder(in.Filename, errors.New("no normalizer configured"))
	}
	return b.normalizer.Normalize(in.Data, in.Filename)
}
