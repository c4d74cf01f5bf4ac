package factory

import (
	"fmt"

	"github.com/mikey/llm-style-responder/internal/adapters/storage"
	"github.com/mikey/llm-style-responder/internal/config"
	"github.com/mikey/llm-style-responder/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates similarity stores and corpus repositories based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
	llm    *LLMFactory
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger, llm *LLMFactory) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
		llm:    llm,
	}
}

// CreateSimilarityStore creates a similarity store and the embedder it needs
func (f *StoreFactory) CreateSimilarityStore() (core.SimilarityStore, error) {
	storeCfg := f.cfg.GetVectorStore()

	embedder, err := f.llm.CreateEmbedder()
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	switch storeCfg.Type {
	case "memory":
		return storage.NewMemoryVectorStore(embedder, f.logger), nil
	case "sqlite":
		store, err := storage.NewSQLiteVectorStore(storeCfg.SQLitePath, embedder, f.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mysql":
		store, err := storage.NewMySQLVectorStore(storeCfg.MySQLDSN, embedder, f.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported vector store type: %s", storeCfg.Type)
	}
}

// CreateCorpusRepository creates a corpus repository based on the configuration
func (f *StoreFactory) CreateCorpusRepository() (core.CorpusRepository, error) {
	repoCfg := f.cfg.GetCorpusRepository()

	switch repoCfg.Type {
	case "memory":
		return storage.NewMemoryCorpusRepository(), nil
	case "sqlite":
		repo, err := storage.NewSQLiteCorpusRepository(repoCfg.SQLitePath, f.logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case "mysql":
		repo, err := storage.NewMySQLCorpusRepository(repoCfg.MySQLDSN, f.logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported corpus repository type: %s", repoCfg.Type)
	}
}
