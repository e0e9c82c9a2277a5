package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"graph_router/internal/accel"
	"graph_router/internal/core"
	"graph_router/internal/dispatch"
	"graph_router/internal/llm"
	"graph_router/internal/logger"
	"graph_router/internal/metrics"
	"graph_router/internal/storage"
	"graph_router/internal/viz"
	"graph_router/pkg"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for the config file
const DefaultPath = "config.yaml"

// Config holds all router configuration. Secrets are only read from the
// environment; their yaml tags are "-".
type Config struct {
	Arango   storage.ArangoConfig  `yaml:"arango"`
	LLM      llm.Config            `yaml:"llm"`
	History  storage.HistoryConfig `yaml:"history"`
	Log      logger.LogConfig      `yaml:"log"`
	Viz      viz.Config            `yaml:"viz"`
	Accel    accel.Config          `yaml:"accel"`
	Dispatch dispatch.Config       `yaml:"dispatch"`
	Metrics  metrics.Config        `yaml:"metrics"`
	Flow     *core.GraphFlow       `yaml:"flow,omitempty"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Arango: storage.ArangoConfig{
			Host:             "http://localhost:8529",
			Username:         "root",
			Database:         "_system",
			GraphName:        "default_graph",
			EdgeCollection:   "edges",
			VertexCollection: "nodes",
			QueryTimeout:     30 * time.Second,
		},
		LLM: llm.Config{
			Provider:    llm.ProviderOpenAI,
			Model:       "gpt-4o-mini",
			MaxTokens:   512,
			Temperature: 0,
			Timeout:     60 * time.Second,
		},
		History: storage.HistoryConfig{
			FilePath:   "data/history.json",
			TTL:        storage.HistoryTTL,
			MaxEntries: 100,
		},
		Log: logger.LogConfig{
			Level:      "info",
			Format:     "console",
			Output:     "stderr",
			FilePath:   "logs/graph_router.log",
			TimeFormat: "rfc3339",
		},
		Viz: viz.Config{
			OutputDir:  "output",
			Width:      800,
			Height:     800,
			Seed:       42,
			Iterations: 50,
		},
		Accel: accel.Config{
			Workers: runtime.NumCPU(),
		},
		Dispatch: dispatch.Config{
			Timeout: 2 * time.Minute,
		},
	}
}

// LoadConfig builds the configuration: defaults, then the YAML file at path
// (a missing file is skipped), then environment variables.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logger.Debug().Str("path", path).Msg("No config file, using defaults")
		case err != nil:
			return nil, fmt.Errorf("error reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("error parsing YAML: %w", err)
			}
		}
	}

	targets := []any{
		&config.Arango, &config.LLM, &config.History, &config.Log,
		&config.Viz, &config.Accel, &config.Dispatch, &config.Metrics,
	}
	for _, target := range targets {
		if err := envconfig.Process("", target); err != nil {
			return nil, fmt.Errorf("error processing environment configuration: %w", err)
		}
	}

	if config.LLM.APIKey == "" {
		config.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings no component can run with
func (c *Config) Validate() error {
	if c.Arango.Host == "" {
		return fmt.Errorf("ARANGO_HOST cannot be empty")
	}
	if c.Arango.GraphName == "" && c.Arango.EdgeCollection == "" {
		return fmt.Errorf("either GRAPH_NAME or ARANGO_EDGE_COLLECTION is required")
	}
	if c.Accel.Workers <= 0 {
		return fmt.Errorf("ACCEL_WORKERS must be positive, got %d", c.Accel.Workers)
	}
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("HISTORY_MAX_ENTRIES must be positive, got %d", c.History.MaxEntries)
	}
	return nil
}

// BuildFlow returns the configured workflow, or the default classify →
// generate → execute flow
func BuildFlow(config *Config) core.GraphFlow {
	if config.Flow != nil && config.Flow.StartNode != "" {
		return *config.Flow
	}
	return core.DefaultFlow()
}

// BuildPromptContext fills prompt placeholders from the store settings, the
// store's collection schema (may be nil) and the operation registries
func BuildPromptContext(config *Config, collections []pkg.CollectionSchema, nx, nxcu []string) llm.PromptContext {
	return llm.PromptContext{
		Graph:            config.Arango.GraphName,
		EdgeCollection:   config.Arango.EdgeCollection,
		VertexCollection: config.Arango.VertexCollection,
		Collections:      collections,
		Operations: map[pkg.Category][]string{
			pkg.CategoryNx:   nx,
			pkg.CategoryNxCu: nxcu,
		},
	}
}
