package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-style-responder/internal/config"
	"github.com/mikey/llm-style-responder/internal/core"
	"github.com/mikey/llm-style-responder/internal/corpus"
	"github.com/mikey/llm-style-responder/internal/domains"
	"github.com/mikey/llm-style-responder/internal/factory"
	"github.com/mikey/llm-style-responder/internal/logging"
	"github.com/mikey/llm-style-responder/internal/utils"
)

// Options controls how the container is built
type Options struct {
	// ConfigFile replaces the config search path when set
	ConfigFile string
	// Verbose forces debug logging on the console logger
	Verbose bool
	// JSONLog selects JSON log output
	JSONLog bool
	// Overrides are applied to the configuration after it is read
	Overrides map[string]interface{}
}

// BuildContainer creates and configures a dependency injection container.
// Providers run on first use, so commands that never ask for an embedder or
// completion service never build one.
func BuildContainer(opts Options) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.New(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		for key, value := range opts.Overrides {
			cfg.Set(key, value)
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(cfg *config.Config) (*zap.Logger, error) {
		if opts.Verbose || opts.JSONLog {
			return logging.InitConsoleLogger(opts.Verbose, opts.JSONLog)
		}
		return logging.InitLogger(cfg)
	}); err != nil {
		return nil, err
	}

	// Register factories
	for _, ctor := range []interface{}{
		factory.NewLLMFactory,
		factory.NewStoreFactory,
		factory.NewKnowledgeFactory,
		factory.NewCorpusFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return nil, err
		}
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register completion service
	if err := container.Provide(func(f *factory.LLMFactory) (core.CompletionService, error) {
		return f.CreateCompletionService()
	}); err != nil {
		return nil, err
	}

	// Register knowledge store
	if err := container.Provide(func(f *factory.KnowledgeFactory) (core.KnowledgeStore, error) {
		return f.CreateKnowledgeStore()
	}); err != nil {
		return nil, err
	}

	// Register corpus repository
	if err := container.Provide(func(f *factory.StoreFactory) (core.CorpusRepository, error) {
		return f.CreateCorpusRepository()
	}); err != nil {
		return nil, err
	}

	// Register corpus builder
	if err := container.Provide(func(f *factory.CorpusFactory) (*corpus.Builder, error) {
		return f.CreateBuilder()
	}); err != nil {
		return nil, err
	}

	// Register internal domains
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *domains.Checker {
		return domains.NewChecker(cfg.GetResponder().InternalDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register session and responder service
	if err := container.Provide(core.NewSession); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewResponderService); err != nil {
		return nil, err
	}

	return container, nil
}
