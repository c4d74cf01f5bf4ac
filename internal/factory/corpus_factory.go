package factory

import (
	"fmt"

	"github.com/mikey/llm-style-responder/internal/adapters/dedup"
	"github.com/mikey/llm-style-responder/internal/config"
	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/corpus"
	"github.com/mikey/llm-style-responder/internal/mailparse"
	"github.com/mikey/llm-style-responder/internal/utils"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CorpusFactory creates the normalizer, fingerprint filter and corpus builder
type CorpusFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewCorpusFactory creates a new corpus factory
func NewCorpusFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *CorpusFactory {
	return &CorpusFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateNormalizer creates a message normalizer
func (f *CorpusFactory) CreateNormalizer() *mailparse.Normalizer {
	return mailparse.NewNormalizer(f.textProcessor, f.logger)
}

// CreateFingerprintFilter creates the fingerprint filter. It returns nil when
// deduplication is off.
func (f *CorpusFactory) CreateFingerprintFilter() (core.FingerprintFilter, error) {
	policy, err := corpus.ParseDedupPolicy(f.cfg.GetCorpus().Dedup)
	if err != nil {
		return nil, err
	}
	if policy == corpus.DedupOff {
		return nil, nil
	}

	dedupCfg := f.cfg.GetDedup()
	switch dedupCfg.Type {
	case "memory":
		return dedup.NewMemoryFilter(), nil
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     dedupCfg.RedisAddr,
			Password: dedupCfg.RedisPassword,
			DB:       dedupCfg.RedisDB,
		})
		return dedup.NewRedisFilter(rdb, dedupCfg.TTL, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported dedup type: %s", dedupCfg.Type)
	}
}

// CreateBuilder creates a corpus builder wired to the configured filter
func (f *CorpusFactory) CreateBuilder() (*corpus.Builder, error) {
	corpusCfg := f.cfg.GetCorpus()

	policy, err := corpus.ParseDedupPolicy(corpusCfg.Dedup)
	if err != nil {
		return nil, err
	}

	filter, err := f.CreateFingerprintFilter()
	if err != nil {
		return nil, err
	}

	return corpus.NewBuilder(f.CreateNormalizer(), filter, corpus.Options{
		Workers: corpusCfg.Workers,
		Dedup:   policy,
		Scope:   corpusCfg.DedupScope,
	}, f.logger), nil
}
