package model

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration, built once at startup and
// passed into every component constructor. No component reads ambient
// global state.
type Config struct {
	Embedding   EmbeddingConfig   `yaml:"embedding" mapstructure:"embedding"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Index       IndexConfig       `yaml:"index" mapstructure:"index"`
	Reports     ReportConfig      `yaml:"reports" mapstructure:"reports"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	Fetch       FetchConfig       `yaml:"fetch" mapstructure:"fetch"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// EmbeddingConfig controls the embedding provider.
type EmbeddingConfig struct {
	Model     string `yaml:"model" mapstructure:"model"`          // remote embedding model id
	APIKey    string `yaml:"-" mapstructure:"api_key"`            // never serialized
	Dimension int    `yaml:"dimension" mapstructure:"dimension"`  // local fallback dimension
	CacheDir  string `yaml:"cache_dir" mapstructure:"cache_dir"`  // disk tier of the embedding cache
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// LLMConfig controls the optional, non-authoritative rationale call.
type LLMConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	TimeoutSec int   `yaml:"timeout_sec" mapstructure:"timeout_sec"`
}

// IndexConfig locates the regulatory index artifacts.
type IndexConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`                 // chunks.jsonl + gdpr_index.json live here
	SourceDir  string `yaml:"source_dir" mapstructure:"source_dir"`   // regulation source text files
	ChunkSize  int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	Overlap    int    `yaml:"overlap" mapstructure:"overlap"`
	QdrantURL  string `yaml:"qdrant_url" mapstructure:"qdrant_url"`   // empty disables the vector backend
	Collection string `yaml:"collection" mapstructure:"collection"`
}

// ReportConfig locates persisted reports.
type ReportConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// RetrievalConfig controls nearest-neighbor retrieval.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" mapstructure:"top_k"`
}

// FetchConfig controls the regulation corpus fetcher.
type FetchConfig struct {
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// ConcurrencyConfig controls batch analysis.
type ConcurrencyConfig struct {
	BatchWorkers int `yaml:"batch_workers" mapstructure:"batch_workers"`
}

// OutputConfig controls CLI output behavior.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Model:     "text-embedding-3-small",
			Dimension: 128,
			CacheDir:  "storage/cache/embeddings",
			CacheTTL:  24 * time.Hour,
		},
		LLM: LLMConfig{
			Enabled:    false,
			Model:      "gpt-4.1-mini",
			TimeoutSec: 30,
		},
		Index: IndexConfig{
			Dir:        "storage/index",
			SourceDir:  "data/regulations/gdpr/source",
			ChunkSize:  700,
			Overlap:    120,
			QdrantURL:  "",
			Collection: "gdpr_chunks",
		},
		Reports: ReportConfig{
			Dir: "storage/reports",
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Fetch: FetchConfig{
			UserAgent:         "clausecheck/0.1 (+https://github.com/clausecheck)",
			Timeout:           30 * time.Second,
			MaxBodyBytes:      2_000_000,
			RequestsPerSecond: 1,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 4,
		},
		Output: OutputConfig{},
	}
}

// LoadConfig builds the effective configuration: defaults, overridden by
// any config file viper has read, overridden by CLAUSECHECK_* environment
// variables. OPENAI_API_KEY is honored directly because that is where the
// credential conventionally lives.
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if s := viper.GetString("embedding.model"); s != "" {
		cfg.Embedding.Model = s
	}
	if n := viper.GetInt("embedding.dimension"); n > 0 {
		cfg.Embedding.Dimension = n
	}
	if s := viper.GetString("embedding.cache_dir"); s != "" {
		cfg.Embedding.CacheDir = s
	}
	if viper.IsSet("llm.enabled") {
		cfg.LLM.Enabled = viper.GetBool("llm.enabled")
	}
	if s := viper.GetString("llm.model"); s != "" {
		cfg.LLM.Model = s
	}
	if s := viper.GetString("index.dir"); s != "" {
		cfg.Index.Dir = s
	}
	if s := viper.GetString("index.source_dir"); s != "" {
		cfg.Index.SourceDir = s
	}
	if n := viper.GetInt("index.chunk_size"); n > 0 {
		cfg.Index.ChunkSize = n
	}
	if n := viper.GetInt("index.overlap"); n > 0 {
		cfg.Index.Overlap = n
	}
	if s := viper.GetString("index.qdrant_url"); s != "" {
		cfg.Index.QdrantURL = s
	}
	if s := viper.GetString("index.collection"); s != "" {
		cfg.Index.Collection = s
	}
	if s := viper.GetString("reports.dir"); s != "" {
		cfg.Reports.Dir = s
	}
	if n := viper.GetInt("retrieval.top_k"); n > 0 {
		cfg.Retrieval.TopK = n
	}
	if n := viper.GetInt("concurrency.batch_workers"); n > 0 {
		cfg.Concurrency.BatchWorkers = n
	}

	// Credential: CLAUSECHECK_OPENAI_API_KEY or plain OPENAI_API_KEY.
	key := viper.GetString("openai_api_key")
	cfg.Embedding.APIKey = key
	cfg.LLM.APIKey = key

	return cfg
}
