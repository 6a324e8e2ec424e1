package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Corpus.Source != "sample" {
		t.Errorf("corpus source = %q, want sample", cfg.Corpus.Source)
	}
	if cfg.Suggest.DefaultTopK != 5 || cfg.Suggest.DefaultMinScore != 0.1 {
		t.Errorf("suggest defaults = %+v", cfg.Suggest)
	}
	if cfg.Cache.Driver != "memory" || cfg.Cache.TTL != 10*time.Minute {
		t.Errorf("cache defaults = %+v", cfg.Cache)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("request timeout = %v", cfg.Server.RequestTimeout)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORPUS_SOURCE", "csv")
	t.Setenv("CORPUS_PATH", "/data/recipes.csv")
	t.Setenv("APP_SUGGEST_DEFAULT_TOP_K", "3")
	t.Setenv("APP_SUGGEST_DEFAULT_MIN_SCORE", "0.25")
	t.Setenv("CACHE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Corpus.Source != "csv" || cfg.Corpus.Path != "/data/recipes.csv" {
		t.Errorf("corpus = %+v", cfg.Corpus)
	}
	if cfg.Suggest.DefaultTopK != 3 || cfg.Suggest.DefaultMinScore != 0.25 {
		t.Errorf("suggest = %+v", cfg.Suggest)
	}
	if cfg.Cache.Driver != "redis" || cfg.Cache.Redis.Addr != "cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("CORPUS_SOURCE", "csv")
	if _, err := LoadConfig(); err == nil {
		t.Error("csv source without path should fail validation")
	}
}

func TestValidateConfig(t *testing.T) {
	base := func() Config {
		return Config{
			Server:  ServerConfig{Port: 8080},
			Corpus:  CorpusConfig{Source: "sample"},
			Suggest: SuggestConfig{DefaultTopK: 5, DefaultMinScore: 0.1, MaxTopK: 50},
			Cache:   CacheConfig{Enabled: true, Driver: "memory", MaxSize: 10, TTL: time.Minute, CleanupInterval: time.Minute},
		}
	}

	ok := base()
	if err := validateConfig(&ok); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}

	cases := map[string]func(*Config){
		"no port":        func(c *Config) { c.Server.Port = 0 },
		"unknown source": func(c *Config) { c.Corpus.Source = "mongo" },
		"remote no url":  func(c *Config) { c.Corpus.Source = "remote" },
		"top k zero":     func(c *Config) { c.Suggest.DefaultTopK = 0 },
		"max below def":  func(c *Config) { c.Suggest.MaxTopK = 1 },
		"min score":      func(c *Config) { c.Suggest.DefaultMinScore = 2 },
		"cache driver":   func(c *Config) { c.Cache.Driver = "memcached" },
		"cache ttl":      func(c *Config) { c.Cache.TTL = 0 },
		"rate limit":     func(c *Config) { c.RateLimit = RateLimitConfig{Enabled: true} },
	}
	for name, mutate := range cases {
		c := base()
		mutate(&c)
		if err := validateConfig(&c); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
