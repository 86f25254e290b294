// Package config loads and validates the graphlore configuration from
// YAML files, with ${ENV_VAR} interpolation and struct-tag validation.
package config

import (
	"time"

	"github.com/graphlore/graphlore/internal/embedding"
	"github.com/graphlore/graphlore/internal/graph"
	"github.com/graphlore/graphlore/internal/store"
)

// Config is the root configuration.
type Config struct {
	Core      CoreConfig         `mapstructure:"core" yaml:"core"`
	Embedding embedding.Config   `mapstructure:"embedding" yaml:"embedding" validate:"required"`
	Graph     GraphConfig        `mapstructure:"graph" yaml:"graph"`
	Vector    store.VectorConfig `mapstructure:"vector" yaml:"vector" validate:"required"`
	Pipeline  PipelineConfig     `mapstructure:"pipeline" yaml:"pipeline"`
	Query     QueryConfig        `mapstructure:"query" yaml:"query"`
	Logging   LoggingConfig      `mapstructure:"logging" yaml:"logging"`
}

// CoreConfig contains core application settings.
type CoreConfig struct {
	// DataDir is the base directory for local state (vector database,
	// full-text index).
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// Debug enables debug logging regardless of the logging level.
	Debug bool `mapstructure:"debug" yaml:"debug"`
}

// GraphConfig wraps the graph client settings with an enable switch.
// Disabled graph keeps ingestion vector-only.
type GraphConfig struct {
	Enabled bool         `mapstructure:"enabled" yaml:"enabled"`
	Neo4j   graph.Config `mapstructure:"neo4j" yaml:"neo4j"`
}

// PipelineConfig contains ingestion settings.
type PipelineConfig struct {
	// Concurrency bounds simultaneous sources in a batch.
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency" validate:"min=1,max=100"`

	// Include and Exclude are glob filters applied during directory
	// traversal.
	Include []string `mapstructure:"include" yaml:"include"`
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`

	// RespectGitignore applies .gitignore rules during traversal.
	RespectGitignore bool `mapstructure:"respect_gitignore" yaml:"respect_gitignore"`

	// WatchDebounce delays re-ingestion after a file change event.
	WatchDebounce time.Duration `mapstructure:"watch_debounce" yaml:"watch_debounce"`
}

// QueryConfig contains query orchestrator settings.
type QueryConfig struct {
	// Timeout caps one query lifecycle end to end.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`

	// MaxResults caps retrieved chunks per query.
	MaxResults int `mapstructure:"max_results" yaml:"max_results" validate:"min=1,max=100"`

	// CompletionModel is the langchaingo model used for answer synthesis.
	CompletionModel string `mapstructure:"completion_model" yaml:"completion_model"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level" validate:"omitempty,oneof=debug info warn error"`

	// Format is "text" or "json".
	Format string `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=text json"`
}

// DefaultConfig returns a configuration that works locally with a mock
// embedder and no graph database.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DataDir: ".graphlore",
		},
		Embedding: embedding.Config{
			Provider:  "mock",
			Model:     "mock",
			BatchSize: embedding.DefaultBatchSize,
		},
		Graph: GraphConfig{
			Enabled: false,
			Neo4j:   graph.DefaultConfig(),
		},
		Vector: store.VectorConfig{
			Path:       ".graphlore/vectors.db",
			Dimensions: 8,
		},
		Pipeline: PipelineConfig{
			Concurrency:   5,
			WatchDebounce: time.Second,
		},
		Query: QueryConfig{
			Timeout:         30 * time.Second,
			MaxResults:      10,
			CompletionModel: "gpt-4o-mini",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
