package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Database struct {
		DSN             string `yaml:"dsn" json:"dsn" jsonschema:"default=file:feedpulse.db?cache=shared&mode=rwc,description=Database connection string"`
		MaxOpenConns    int    `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,description=Maximum number of open connections"`
		MaxIdleConns    int    `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,description=Maximum number of idle connections"`
		ConnMaxLifetime int    `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,description=Connection maximum lifetime in seconds"`
	} `yaml:"database" json:"database" jsonschema:"description=Database configuration"`

	Schedule struct {
		Warmup string `yaml:"warmup" json:"warmup" jsonschema:"default=@every 1m,description=Cron spec for report cache warm-up (empty disables)"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=LLM configuration for theme classification and narratives"`

	Cache CacheConfig `yaml:"cache" json:"cache" jsonschema:"description=Result cache time-to-live settings"`

	Insight InsightConfig `yaml:"insight" json:"insight" jsonschema:"description=Theme aggregation and KPI settings"`
}

// LLMConfig holds LLM configuration used as the classification oracle
type LLMConfig struct {
	Enabled           bool          `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Use the LLM oracle (deterministic fallback is always available)"`
	Endpoint          string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey            string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model             string        `yaml:"model" json:"model" jsonschema:"description=Model name (e.g. gpt-4o-mini or llama3)"`
	Temperature       float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.2,description=Temperature for response generation"`
	MaxTokens         int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=300,description=Maximum tokens in response"`
	Timeout           time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=20s,description=Per-request timeout"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute" jsonschema:"default=60,description=Maximum oracle requests per minute"`
	SystemPrompt      string        `yaml:"system_prompt" json:"system_prompt" jsonschema:"description=System prompt for the LLM (optional)"`
}

// CacheConfig holds ttl for the three result caches
type CacheConfig struct {
	ReportTTL    time.Duration `yaml:"report_ttl" json:"report_ttl" jsonschema:"default=120s,description=Full report cache ttl"`
	NarrativeTTL time.Duration `yaml:"narrative_ttl" json:"narrative_ttl" jsonschema:"default=300s,description=Narrative summary cache ttl"`
	SummaryTTL   time.Duration `yaml:"summary_ttl" json:"summary_ttl" jsonschema:"default=30s,description=Structured summary cache ttl"`
}

// InsightConfig holds aggregation and KPI settings
type InsightConfig struct {
	EnterpriseSources []string `yaml:"enterprise_sources" json:"enterprise_sources" jsonschema:"description=Sources treated as enterprise tier"`
	MinSharePercent   int      `yaml:"min_share_percent" json:"min_share_percent" jsonschema:"default=5,minimum=0,maximum=100,description=Minimum bucket share for an oracle theme (0 disables the check)"`
	MaxPromptComments int      `yaml:"max_prompt_comments" json:"max_prompt_comments" jsonschema:"default=50,minimum=1,description=Maximum comments sent to the oracle per bucket"`
	HeadlineCount     int      `yaml:"headline_count" json:"headline_count" jsonschema:"default=3,minimum=1,description=Number of headline themes"`
}

// DefaultWarmup is the cache warm-up schedule used unless the config sets one
const DefaultWarmup = "@every 1m"

// DefaultMinSharePercent is the oracle theme share used unless the config sets one
const DefaultMinSharePercent = 5

// DefaultEnterpriseSources are the channels treated as enterprise tier
var DefaultEnterpriseSources = []string{"customer-support-tickets", "email"}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	// llm, warm-up and min share are on unless explicitly disabled
	cfg := Config{LLM: LLMConfig{Enabled: true}}
	cfg.Schedule.Warmup = DefaultWarmup
	cfg.Insight.MinSharePercent = DefaultMinSharePercent
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.SetDefaults()

	// validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

// Default returns configuration with all defaults set and the llm disabled,
// used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.Schedule.Warmup = DefaultWarmup
	cfg.Insight.MinSharePercent = DefaultMinSharePercent
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero values with defaults
func (c *Config) SetDefaults() {
	// set defaults for server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	// set defaults for database
	if c.Database.DSN == "" {
		c.Database.DSN = "file:feedpulse.db?cache=shared&mode=rwc&_txlock=immediate"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// set defaults for LLM
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.2
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 300
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 20 * time.Second
	}
	if c.LLM.RequestsPerMinute == 0 {
		c.LLM.RequestsPerMinute = 60
	}

	// set defaults for caches
	if c.Cache.ReportTTL == 0 {
		c.Cache.ReportTTL = 120 * time.Second
	}
	if c.Cache.NarrativeTTL == 0 {
		c.Cache.NarrativeTTL = 300 * time.Second
	}
	if c.Cache.SummaryTTL == 0 {
		c.Cache.SummaryTTL = 30 * time.Second
	}

	// set defaults for insight
	if len(c.Insight.EnterpriseSources) == 0 {
		c.Insight.EnterpriseSources = append([]string{}, DefaultEnterpriseSources...)
	}
	if c.Insight.MaxPromptComments == 0 {
		c.Insight.MaxPromptComments = 50
	}
	if c.Insight.HeadlineCount == 0 {
		c.Insight.HeadlineCount = 3
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate LLM config, only when the oracle is used
	if cfg.LLM.Enabled {
		if cfg.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required")
		}
		if cfg.LLM.Model == "" {
			return fmt.Errorf("llm.model is required")
		}
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be between 0 and 2")
	}
	if cfg.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("llm.requests_per_minute must be non-negative")
	}

	// validate cache config
	if cfg.Cache.ReportTTL < 0 || cfg.Cache.NarrativeTTL < 0 || cfg.Cache.SummaryTTL < 0 {
		return fmt.Errorf("cache ttl values must be non-negative")
	}

	// validate insight config
	if cfg.Insight.MinSharePercent < 0 || cfg.Insight.MinSharePercent > 100 {
		return fmt.Errorf("insight.min_share_percent must be between 0 and 100")
	}
	if cfg.Insight.MaxPromptComments < 1 {
		return fmt.Errorf("insight.max_prompt_comments must be at least 1")
	}
	if cfg.Insight.HeadlineCount < 1 {
		return fmt.Errorf("insight.headline_count must be at least 1")
	}
	for _, src := range cfg.Insight.EnterpriseSources {
		if strings.TrimSpace(src) == "" {
			return fmt.Errorf("insight.enterprise_sources can't contain empty values")
		}
	}

	// validate server config
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.LLM.Enabled && cfg.LLM.Timeout >= cfg.Server.Timeout {
		return fmt.Errorf("llm.timeout (%v) must be less than server.timeout (%v)", cfg.LLM.Timeout, cfg.Server.Timeout)
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetLLMConfig returns LLM configuration
func (c *Config) GetLLMConfig() LLMConfig {
	return c.LLM
}
