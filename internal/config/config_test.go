package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{DSN: "postgres://localhost/places"},
		Cache:    CacheConfig{Driver: CacheDriverRueidis, Addrs: []string{"localhost:6379"}},
		AI:       AIConfig{Driver: AIDriverHTTP, BaseURL: "http://ai:8000"},
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"missing cache addrs", func(c *Config) { c.Cache.Addrs = nil }, "cache.addrs"},
		{"goredis without addrs", func(c *Config) {
			c.Cache.Driver = CacheDriverGoRedis
			c.Cache.Addrs = nil
		}, "cache.addrs"},
		{"unknown cache driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"http driver without url", func(c *Config) { c.AI.BaseURL = "" }, "ai.base_url"},
		{"openai driver without model", func(c *Config) { c.AI.Driver = AIDriverOpenAI }, "ai.model"},
		{"unknown ai driver", func(c *Config) { c.AI.Driver = "grpc" }, "ai.driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.want)
			}
		})
	}
}

func TestValidate_MemoryCacheNeedsNoAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Cache = CacheConfig{Driver: CacheDriverMemory}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 15 {
		t.Errorf("expected WriteTimeoutSec=15, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Cache.Driver != CacheDriverRueidis {
		t.Errorf("expected cache driver %q, got %q", CacheDriverRueidis, cfg.Cache.Driver)
	}
	if cfg.Cache.KeyPrefix != "placesearch:" {
		t.Errorf("expected KeyPrefix='placesearch:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Cache.RegionTTL() != 30*time.Minute {
		t.Errorf("expected region TTL 30m, got %s", cfg.Cache.RegionTTL())
	}
	if cfg.Cache.CategoriesTTL() != 24*time.Hour {
		t.Errorf("expected categories TTL 24h, got %s", cfg.Cache.CategoriesTTL())
	}
	if cfg.AI.Driver != AIDriverHTTP {
		t.Errorf("expected ai driver %q, got %q", AIDriverHTTP, cfg.AI.Driver)
	}
	if cfg.Search.DefaultRadius != 1000 || cfg.Search.AIRadius != 1000 {
		t.Errorf("expected 1000m radii, got %v / %v", cfg.Search.DefaultRadius, cfg.Search.AIRadius)
	}
	if cfg.Search.CategoryFallbackRadius != 1000 {
		t.Errorf("expected fallback radius to follow AI radius, got %v", cfg.Search.CategoryFallbackRadius)
	}
	if cfg.Search.MaxConcurrentLookups != 16 {
		t.Errorf("expected MaxConcurrentLookups=16, got %d", cfg.Search.MaxConcurrentLookups)
	}
	if cfg.Search.Timeout() != 10*time.Second {
		t.Errorf("expected search timeout 10s, got %s", cfg.Search.Timeout())
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Cache:  CacheConfig{Driver: CacheDriverMemory, KeyPrefix: "custom:"},
		Search: SearchConfig{DefaultRadius: 500, AIRadius: 2000},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Cache.KeyPrefix)
	}
	if cfg.Search.DefaultRadius != 500 {
		t.Errorf("expected DefaultRadius=500, got %v", cfg.Search.DefaultRadius)
	}
	if cfg.Search.CategoryFallbackRadius != 2000 {
		t.Errorf("expected fallback radius 2000, got %v", cfg.Search.CategoryFallbackRadius)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("PLACESEARCH_TEST_DSN", "postgres://db/places")

	data := []byte(`
http:
  port: 8080
database:
  dsn: ${PLACESEARCH_TEST_DSN}
cache:
  driver: ${PLACESEARCH_TEST_CACHE_DRIVER:-memory}
ai:
  base_url: http://ai:8000
search:
  ai_radius_m: 1500
  category_fallback_radius_m: 3000
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Database.DSN != "postgres://db/places" {
		t.Errorf("dsn = %q", cfg.Database.DSN)
	}
	if cfg.Cache.Driver != CacheDriverMemory {
		t.Errorf("expected default driver from expansion, got %q", cfg.Cache.Driver)
	}
	if cfg.Search.AIRadius != 1500 || cfg.Search.CategoryFallbackRadius != 3000 {
		t.Errorf("unexpected radii %+v", cfg.Search)
	}
}

func TestParse_InvalidConfig(t *testing.T) {
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected error for config without dsn")
	}
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load(local) failed: %v", err)
	}
	if cfg.HTTP.Port == 0 {
		t.Error("expected port from local config")
	}
}
