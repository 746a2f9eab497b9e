package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Graph drivers.
const (
	GraphDriverMemory = "memory"
	GraphDriverNeo4j  = "neo4j"
)

// Semantic providers.
const (
	SemanticProviderNone   = "none"
	SemanticProviderOpenAI = "openai"
	SemanticProviderHTTP   = "http"
)

// Config holds the reachout API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Graph    GraphConfig    `yaml:"graph"`
	Cache    CacheConfig    `yaml:"cache"`
	Semantic SemanticConfig `yaml:"semantic"`
	Strategy StrategyConfig `yaml:"strategy"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// GraphConfig selects and tunes the server-side social graph.
type GraphConfig struct {
	Driver          string      `yaml:"driver"`  // memory, neo4j (default: memory)
	Fixture         string      `yaml:"fixture"` // YAML snapshot loaded by the memory driver
	Neo4j           Neo4jConfig `yaml:"neo4j"`
	ViewerID        string      `yaml:"viewer_id"`
	MaxHops         int         `yaml:"max_hops"`
	NodeCacheSize   int         `yaml:"node_cache_size"`
	NodeCacheTTLSec int         `yaml:"node_cache_ttl_sec"`
}

// Neo4jConfig holds Bolt connection settings.
type Neo4jConfig struct {
	URI            string `yaml:"uri"`
	Database       string `yaml:"database"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	MaxConnections int    `yaml:"max_connections"`
}

// CacheConfig holds Redis settings. Empty addrs disables the cache.
type CacheConfig struct {
	Addrs             []string `yaml:"addrs"`
	Username          string   `yaml:"username"`
	Password          string   `yaml:"password"`
	DB                int      `yaml:"db"`
	ReadinessTimeout  int      `yaml:"readiness_timeout_sec"`
	EmbeddingTTLSec   int      `yaml:"embedding_ttl_sec"` // 0 = no expiry
	ActivityMaxEvents int      `yaml:"activity_max_events"`
	ActivityTTLSec    int      `yaml:"activity_ttl_sec"` // 0 = no expiry
}

// SemanticConfig holds the semantic upgrade backend settings.
type SemanticConfig struct {
	Provider          string  `yaml:"provider"` // none, openai, http (default: none)
	BaseURL           string  `yaml:"base_url"`
	APIKey            string  `yaml:"api_key"`
	Model             string  `yaml:"model"`
	Dimensions        int     `yaml:"dimensions"`
	TimeoutMS         int     `yaml:"timeout_ms"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unthrottled
	Burst             int     `yaml:"burst"`
}

// StrategyConfig tunes the pathfinding engine and batch processor.
type StrategyConfig struct {
	BatchChunkSize          int     `yaml:"batch_chunk_size"`
	BatchMinConfidence      float64 `yaml:"batch_min_confidence"`
	UpgradeMargin           float64 `yaml:"upgrade_margin"`
	SecondDegreeFanout      int     `yaml:"second_degree_fanout"`
	ThirdDegreeProbes       int     `yaml:"third_degree_probes"`
	EngagementHalfLifeHours int     `yaml:"engagement_half_life_hours"`
	MaxConcurrency          int     `yaml:"max_concurrency"`
}

// Enabled reports whether a Redis cache is configured.
func (c CacheConfig) Enabled() bool {
	return len(c.Addrs) > 0
}

// Timeout returns the semantic call budget.
func (c SemanticConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Graph.Driver == "" {
		c.Graph.Driver = GraphDriverMemory
	}
	if c.Graph.MaxHops <= 0 {
		c.Graph.MaxHops = 6
	}
	if c.Graph.NodeCacheSize <= 0 {
		c.Graph.NodeCacheSize = 10_000
	}
	if c.Graph.NodeCacheTTLSec <= 0 {
		c.Graph.NodeCacheTTLSec = 300
	}
	if c.Graph.Neo4j.Database == "" {
		c.Graph.Neo4j.Database = "neo4j"
	}

	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.ActivityMaxEvents <= 0 {
		c.Cache.ActivityMaxEvents = 1000
	}

	if c.Semantic.Provider == "" {
		c.Semantic.Provider = SemanticProviderNone
	}
	if c.Semantic.TimeoutMS <= 0 {
		c.Semantic.TimeoutMS = 5000
	}

	if c.Strategy.BatchChunkSize <= 0 {
		c.Strategy.BatchChunkSize = 100
	}
	if c.Strategy.BatchMinConfidence <= 0 {
		c.Strategy.BatchMinConfidence = 0.45
	}
	if c.Strategy.SecondDegreeFanout <= 0 {
		c.Strategy.SecondDegreeFanout = 25
	}
	if c.Strategy.ThirdDegreeProbes <= 0 {
		c.Strategy.ThirdDegreeProbes = 5
	}
	if c.Strategy.EngagementHalfLifeHours <= 0 {
		c.Strategy.EngagementHalfLifeHours = 90 * 24
	}
	if c.Strategy.MaxConcurrency <= 0 {
		c.Strategy.MaxConcurrency = 8
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	switch c.Graph.Driver {
	case GraphDriverMemory:
	case GraphDriverNeo4j:
		if c.Graph.Neo4j.URI == "" {
			return fmt.Errorf("graph.neo4j.uri is required for driver %q", GraphDriverNeo4j)
		}
	default:
		return fmt.Errorf("graph.driver must be %q or %q, got %q",
			GraphDriverMemory, GraphDriverNeo4j, c.Graph.Driver)
	}

	switch c.Semantic.Provider {
	case SemanticProviderNone:
	case SemanticProviderOpenAI:
		if c.Semantic.Model == "" {
			return fmt.Errorf("semantic.model is required for provider %q", SemanticProviderOpenAI)
		}
	case SemanticProviderHTTP:
		if c.Semantic.BaseURL == "" {
			return fmt.Errorf("semantic.base_url is required for provider %q", SemanticProviderHTTP)
		}
	default:
		return fmt.Errorf("semantic.provider must be one of none, openai, http, got %q", c.Semantic.Provider)
	}

	if c.Strategy.BatchMinConfidence > 1 {
		return fmt.Errorf("strategy.batch_min_confidence must be within (0, 1], got %v",
			c.Strategy.BatchMinConfidence)
	}
	if c.Strategy.UpgradeMargin < 0 {
		return fmt.Errorf("strategy.upgrade_margin must not be negative, got %v", c.Strategy.UpgradeMargin)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
