package factory

import (
	"fmt"

	"github.com/mikey/llm-style-responder/internal/config"
	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/knowledge"
	"github.com/mikey/llm-style-responder/internal/utils"
	"go.uber.org/zap"
)

// KnowledgeFactory creates the knowledge store for the configured mode
type KnowledgeFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	stores        *StoreFactory
}

// NewKnowledgeFactory creates a new knowledge factory
func NewKnowledgeFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor, stores *StoreFactory) *KnowledgeFactory {
	return &KnowledgeFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
		stores:        stores,
	}
}

// CreateKnowledgeStore creates the knowledge store. Direct mode never touches
// the embedder or the similarity store.
func (f *KnowledgeFactory) CreateKnowledgeStore() (core.KnowledgeStore, error) {
	knowledgeCfg := f.cfg.GetKnowledge()

	switch knowledgeCfg.Mode {
	case core.ModeDirect:
		return knowledge.NewDirectStore(knowledge.DirectOptions{
			Limit:         knowledgeCfg.DirectLimit,
			Chronological: knowledgeCfg.ChronologicalSort,
		}, f.logger), nil
	case core.ModeIndexed:
		store, err := f.stores.CreateSimilarityStore()
		if err != nil {
			return nil, err
		}
		return knowledge.NewIndexedStore(store, f.textProcessor, knowledge.IndexedOptions{
			TopK:         knowledgeCfg.TopK,
			BatchSize:    knowledgeCfg.BatchSize,
			PreviewChars: knowledgeCfg.PreviewChars,
		}, f.logger), nil
	default:
		return nil, fmt.Errorf("unsupported knowledge mode: %s", knowledgeCfg.Mode)
	}
}
