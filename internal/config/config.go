package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type ClusteringConfig struct {
	Resolution float64 `toml:"resolution"`
	Seed       *int64  `toml:"seed"`
	// Unseeded drops Seed so runs are not reproducible. A file cannot
	// clear Seed itself because it is read over the defaults.
	Unseeded      bool   `toml:"unseeded"`
	UseTopics     bool   `toml:"use_topics"`
	Algorithm     string `toml:"algorithm"`
	BuildStrategy string `toml:"build_strategy"`
	Workers       int    `toml:"workers"`
}

// RunSeed is the optimiser seed to use, nil when unseeded.
func (c ClusteringConfig) RunSeed() *int64 {
	if c.Unseeded {
		return nil
	}
	return c.Seed
}

type ValidationConfig struct {
	MinCitationEdges int `toml:"min_citation_edges"`
}

type ServerConfig struct {
	Port      string `toml:"port"`
	CacheSize int    `toml:"cache_size"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	// Database selects a Neo4j database; Memgraph ignores it.
	Database string `toml:"database"`
}

type LLMConfig struct {
	Provider  string `toml:"provider"`
	Model     string `toml:"model"`
	APIKey    string `toml:"api_key"`
	BaseURL   string `toml:"base_url"`
	MaxTokens int    `toml:"max_tokens"`
}

// LabelingPrompts are fmt templates for community labelling.
type LabelingPrompts struct {
	// Summary receives the top entities and a list of member titles.
	Summary string `toml:"summary"`
	// Reduce receives partial summaries of one large community.
	Reduce string `toml:"reduce"`
	// Name receives the final summary.
	Name string `toml:"name"`
}

type Config struct {
	Clustering ClusteringConfig `toml:"clustering"`
	Validation ValidationConfig `toml:"validation"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
	Memgraph   MemgraphConfig   `toml:"memgraph"`
	LLM        LLMConfig        `toml:"llm"`
	Labeling   LabelingPrompts  `toml:"labeling"`
}

const (
	DefaultSummaryPrompt = `You are given a cluster of academic papers.
Shared entities: %s

Titles:
%s
Describe the common research theme of these papers in two sentences.
Return JSON: {"summary": "..."}`

	DefaultReducePrompt = `Combine these partial descriptions of one cluster of papers into a single two-sentence description:
%s
Return JSON: {"summary": "..."}`

	DefaultNamePrompt = `Give a short name (at most six words) for a research cluster described as:
%s
Return JSON: {"name": "..."}`
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	seed := int64(42)
	return &Config{
		Clustering: ClusteringConfig{
			Resolution:    1.0,
			Seed:          &seed,
			Algorithm:     "modularity",
			BuildStrategy: "inverted_index",
		},
		Validation: ValidationConfig{MinCitationEdges: 10},
		Server:     ServerConfig{Port: "8080", CacheSize: 64},
		Log:        LogConfig{Level: "info"},
		Memgraph:   MemgraphConfig{URI: "bolt://localhost:7687"},
		LLM:        LLMConfig{Provider: "openai", Model: "gpt-4o-mini", MaxTokens: 1000},
		Labeling: LabelingPrompts{
			Summary: DefaultSummaryPrompt,
			Reduce:  DefaultReducePrompt,
			Name:    DefaultNamePrompt,
		},
	}
}

// Load reads a TOML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return cfg, nil
}

// Resolve loads path, falling back to $PAPERSIFT_CONFIG and then to the
// defaults, and applies environment overrides.
func Resolve(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("PAPERSIFT_CONFIG")
	}

	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() error {
	str := map[string]*string{
		"PORT":              &c.Server.Port,
		"LOG_LEVEL":         &c.Log.Level,
		"MEMGRAPH_URI":      &c.Memgraph.URI,
		"MEMGRAPH_USER":     &c.Memgraph.User,
		"MEMGRAPH_PASSWORD": &c.Memgraph.Password,
		"MEMGRAPH_DATABASE": &c.Memgraph.Database,
		"LLM_PROVIDER":      &c.LLM.Provider,
		"LLM_MODEL":         &c.LLM.Model,
		"LLM_API_KEY":       &c.LLM.APIKey,
		"LLM_BASE_URL":      &c.LLM.BaseURL,
	}
	for key, field := range str {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}

	if v, ok := os.LookupEnv("PAPERSIFT_RESOLUTION"); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid PAPERSIFT_RESOLUTION %q: %w", v, err)
		}
		c.Clustering.Resolution = r
	}
	if v, ok := os.LookupEnv("PAPERSIFT_SEED"); ok && v != "" {
		s, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid PAPERSIFT_SEED %q: %w", v, err)
		}
		c.Clustering.Seed = &s
		c.Clustering.Unseeded = false
	}
	return nil
}

func (c *Config) Validate() error {
	if !(c.Clustering.Resolution > 0) {
		return fmt.Errorf("clustering.resolution must be positive, got %v", c.Clustering.Resolution)
	}
	if c.Clustering.Workers < 0 {
		return fmt.Errorf("clustering.workers must not be negative, got %d", c.Clustering.Workers)
	}
	if c.Validation.MinCitationEdges < 1 {
		return fmt.Errorf("validation.min_citation_edges must be at least 1, got %d", c.Validation.MinCitationEdges)
	}
	if c.Server.CacheSize < 1 {
		return fmt.Errorf("server.cache_size must be at least 1, got %d", c.Server.CacheSize)
	}
	return nil
}
