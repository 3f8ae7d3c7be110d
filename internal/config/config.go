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

// Cache drivers.
const (
	CacheDriverRueidis = "rueidis"
	CacheDriverGoRedis = "goredis"
	CacheDriverMemory  = "memory"
)

// Recommender drivers.
const (
	AIDriverHTTP   = "http"
	AIDriverOpenAI = "openai"
)

// Config holds the placesearch API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	AI       AIConfig       `yaml:"ai"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
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

// DatabaseConfig holds the Postgres place store settings.
type DatabaseConfig struct {
	DSN              string `yaml:"dsn"`
	MaxOpenConns     int    `yaml:"max_open_conns"`
	MaxIdleConns     int    `yaml:"max_idle_conns"`
	ConnMaxLifetime  int    `yaml:"conn_max_lifetime_sec"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
	Migrate          bool   `yaml:"migrate"`
}

// CacheConfig holds the search result cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // rueidis, goredis, memory (default: rueidis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	KeyPrefix        string   `yaml:"key_prefix"`
	RegionTTLSec     int      `yaml:"region_ttl_sec"`
	CategoriesTTLSec int      `yaml:"categories_ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// AIConfig holds the recommender settings.
type AIConfig struct {
	Driver     string   `yaml:"driver"` // http, openai (default: http)
	BaseURL    string   `yaml:"base_url"`
	APIKey     string   `yaml:"api_key"`
	Model      string   `yaml:"model"`      // openai driver only
	Categories []string `yaml:"categories"` // openai driver only
	TimeoutSec int      `yaml:"timeout_sec"`
}

// SearchConfig holds the search pipeline settings.
type SearchConfig struct {
	// DefaultRadius is the category search radius in meters.
	DefaultRadius float64 `yaml:"default_radius_m"`
	// AIRadius bounds recommended places in meters.
	AIRadius float64 `yaml:"ai_radius_m"`
	// CategoryFallbackRadius is used when the recommender only returns a category hint.
	// Defaults to AIRadius.
	CategoryFallbackRadius float64 `yaml:"category_fallback_radius_m"`
	MaxConcurrentLookups   int     `yaml:"max_concurrent_lookups"`
	TimeoutSec             int     `yaml:"timeout_sec"`
}

// Timeout returns the whole-search deadline.
func (s SearchConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSec) * time.Second
}

// RegionTTL returns the TTL of cached category search results.
func (c CacheConfig) RegionTTL() time.Duration {
	return time.Duration(c.RegionTTLSec) * time.Second
}

// CategoriesTTL returns the TTL of the cached category list.
func (c CacheConfig) CategoriesTTL() time.Duration {
	return time.Duration(c.CategoriesTTLSec) * time.Second
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML config data, expanding ${VAR} references first.
func Parse(data []byte) (Config, error) {
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
		c.HTTP.WriteTimeoutSec = 15
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns <= 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime <= 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheDriverRueidis
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "placesearch:"
	}
	if c.Cache.RegionTTLSec <= 0 {
		c.Cache.RegionTTLSec = 30 * 60
	}
	if c.Cache.CategoriesTTLSec <= 0 {
		c.Cache.CategoriesTTLSec = 24 * 60 * 60
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	if c.AI.Driver == "" {
		c.AI.Driver = AIDriverHTTP
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 5
	}

	if c.Search.DefaultRadius <= 0 {
		c.Search.DefaultRadius = 1000
	}
	if c.Search.AIRadius <= 0 {
		c.Search.AIRadius = 1000
	}
	if c.Search.CategoryFallbackRadius <= 0 {
		c.Search.CategoryFallbackRadius = c.Search.AIRadius
	}
	if c.Search.MaxConcurrentLookups <= 0 {
		c.Search.MaxConcurrentLookups = 16
	}
	if c.Search.TimeoutSec <= 0 {
		c.Search.TimeoutSec = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	switch c.Cache.Driver {
	case CacheDriverRueidis, CacheDriverGoRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %q", c.Cache.Driver)
		}
	case CacheDriverMemory:
	default:
		return fmt.Errorf("cache.driver must be %q, %q or %q, got %q",
			CacheDriverRueidis, CacheDriverGoRedis, CacheDriverMemory, c.Cache.Driver)
	}

	switch c.AI.Driver {
	case AIDriverHTTP:
		if c.AI.BaseURL == "" {
			return fmt.Errorf("ai.base_url is required for driver %q", c.AI.Driver)
		}
	case AIDriverOpenAI:
		if c.AI.Model == "" {
			return fmt.Errorf("ai.model is required for driver %q", c.AI.Driver)
		}
	default:
		return fmt.Errorf("ai.driver must be %q or %q, got %q", AIDriverHTTP, AIDriverOpenAI, c.AI.Driver)
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
