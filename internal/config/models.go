package config

import (
	"time"
)

// LLMConfig represents the provider selection
type LLMConfig struct {
	Provider          string
	EmbeddingProvider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region           string
	ModelID          string
	EmbeddingModelID string
	MaxTokens        int
	Temperature      float32
	TopP             float32
	MaxPromptSize    int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey         string
	ModelName      string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxPromptSize  int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ModelName      string
	EmbeddingModel string
	MaxTokens      int
	Temperature    float32
	TopP           float32
	MaxPromptSize  int
}

// KnowledgeConfig represents retrieval settings
type KnowledgeConfig struct {
	Mode              string
	TopK              int
	DirectLimit       int
	PreviewChars      int
	BatchSize         int
	ChronologicalSort bool
}

// StorageConfig represents one SQL-or-memory backend
type StorageConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// CorpusConfig represents ingestion settings
type CorpusConfig struct {
	Workers    int
	Dedup      string
	DedupScope string
}

// DedupConfig represents the fingerprint filter backend
type DedupConfig struct {
	Type          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

// ResponderConfig represents response generation settings
type ResponderConfig struct {
	InternalDomains    []string
	DefaultStyle       string
	DefaultMessageType string
}

// GetLLM returns the provider selection
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider:          c.GetString("llm.provider"),
		EmbeddingProvider: c.GetString("embedding.provider"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:           c.GetString("bedrock.region"),
		ModelID:          c.GetString("bedrock.model_id"),
		EmbeddingModelID: c.GetString("bedrock.embedding_model_id"),
		MaxTokens:        c.GetInt("bedrock.max_tokens"),
		Temperature:      float32(c.GetFloat64("bedrock.temperature")),
		TopP:             float32(c.GetFloat64("bedrock.top_p")),
		MaxPromptSize:    c.GetInt("bedrock.max_prompt_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:         c.GetString("gemini.api_key"),
		ModelName:      c.GetString("gemini.model_name"),
		EmbeddingModel: c.GetString("gemini.embedding_model"),
		MaxTokens:      c.GetInt("gemini.max_tokens"),
		Temperature:    float32(c.GetFloat64("gemini.temperature")),
		TopP:           float32(c.GetFloat64("gemini.top_p")),
		MaxPromptSize:  c.GetInt("gemini.max_prompt_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:         c.GetString("openai.api_key"),
		BaseURL:        c.GetString("openai.base_url"),
		ModelName:      c.GetString("openai.model_name"),
		EmbeddingModel: c.GetString("openai.embedding_model"),
		MaxTokens:      c.GetInt("openai.max_tokens"),
		Temperature:    float32(c.GetFloat64("openai.temperature")),
		TopP:           float32(c.GetFloat64("openai.top_p")),
		MaxPromptSize:  c.GetInt("openai.max_prompt_size"),
	}
}

// GetKnowledge returns the retrieval configuration
func (c *Config) GetKnowledge() KnowledgeConfig {
	return KnowledgeConfig{
		Mode:              c.GetString("knowledge.mode"),
		TopK:              c.GetInt("knowledge.top_k"),
		DirectLimit:       c.GetInt("knowledge.direct_limit"),
		PreviewChars:      c.GetInt("knowledge.preview_chars"),
		BatchSize:         c.GetInt("knowledge.batch_size"),
		ChronologicalSort: c.GetBool("knowledge.chronological_sort"),
	}
}

// GetVectorStore returns the similarity store backend configuration
func (c *Config) GetVectorStore() StorageConfig {
	return StorageConfig{
		Type:       c.GetString("vectorstore.type"),
		SQLitePath: c.GetString("vectorstore.sqlite_path"),
		MySQLDSN:   c.GetString("vectorstore.mysql_dsn"),
	}
}

// GetCorpusRepository returns the corpus repository backend configuration
func (c *Config) GetCorpusRepository() StorageConfig {
	return StorageConfig{
		Type:       c.GetString("corpus.repository"),
		SQLitePath: c.GetString("corpus.sqlite_path"),
		MySQLDSN:   c.GetString("corpus.mysql_dsn"),
	}
}

// GetCorpus returns the ingestion configuration
func (c *Config) GetCorpus() CorpusConfig {
	return CorpusConfig{
		Workers:    c.GetInt("corpus.workers"),
		Dedup:      c.GetString("corpus.dedup"),
		DedupScope: c.GetString("corpus.dedup_scope"),
	}
}

// GetDedup returns the fingerprint filter configuration. An unparsable TTL
// falls back to 30 days.
func (c *Config) GetDedup() DedupConfig {
	ttl, err := c.GetDuration("redis.ttl")
	if err != nil {
		ttl = 30 * 24 * time.Hour
	}
	return DedupConfig{
		Type:          c.GetString("dedup.type"),
		RedisAddr:     c.GetString("redis.addr"),
		RedisPassword: c.GetString("redis.password"),
		RedisDB:       c.GetInt("redis.db"),
		TTL:           ttl,
	}
}

// GetResponder returns the response generation configuration
func (c *Config) GetResponder() ResponderConfig {
	return ResponderConfig{
		InternalDomains:    c.GetStringSlice("responder.internal_domains"),
		DefaultStyle:       c.GetString("responder.default_style"),
		DefaultMessageType: c.GetString("responder.default_message_type"),
	}
}
