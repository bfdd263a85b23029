package config

import (
	"fmt"
	"time"
)

// DefaultOwnerID is the single owner blocks are attributed to when no
// identity is supplied.
const DefaultOwnerID = "fe99444d-be7f-421d-8868-28d6142f4a60"

// Config holds ResumeWorthy configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Ingest       IngestCfg                 `mapstructure:"ingest" yaml:"ingest"`
	Store        StoreCfg                  `mapstructure:"store" yaml:"store"`
	Server       ServerCfg                 `mapstructure:"server" yaml:"server"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type      string `mapstructure:"type" yaml:"type"`                             // "openai", "openrouter", "gemini", "mock"
	Model     string `mapstructure:"model" yaml:"model"`                           // Model name
	BaseURL   string `mapstructure:"base_url" yaml:"base_url,omitempty"`           // OpenAI-compatible endpoint
	APIKey    string `mapstructure:"api_key" yaml:"api_key"`                       // supports ${ENV_VAR} syntax
	RateLimit int    `mapstructure:"rate_limit" yaml:"rate_limit"`                 // Requests per minute, 0 = unlimited
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"`
	OwnerID     string `mapstructure:"owner_id" yaml:"owner_id"`
}

// IngestCfg tunes the ingestion pipeline.
type IngestCfg struct {
	Temperature      float64 `mapstructure:"temperature" yaml:"temperature"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	MaxTokens        int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	StrictValidation bool    `mapstructure:"strict_validation" yaml:"strict_validation"`
	MaxUploadMB      int     `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// Timeout returns the model call timeout.
func (c IngestCfg) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c IngestCfg) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// StoreCfg selects the block store.
type StoreCfg struct {
	Driver   string      `mapstructure:"driver" yaml:"driver"` // "memory", "postgres", "defra"
	Postgres PostgresCfg `mapstructure:"postgres" yaml:"postgres"`
	Defra    DefraCfg    `mapstructure:"defra" yaml:"defra"`
}

// PostgresCfg configures the Postgres store.
type PostgresCfg struct {
	DSN                     string `mapstructure:"dsn" yaml:"dsn"` // supports ${ENV_VAR} syntax
	MaxConns                int32  `mapstructure:"max_conns" yaml:"max_conns"`
	MinConns                int32  `mapstructure:"min_conns" yaml:"min_conns"`
	ConnMaxLifetimeSeconds  int    `mapstructure:"conn_max_lifetime_seconds" yaml:"conn_max_lifetime_seconds"`
	ConnMaxIdleSeconds      int    `mapstructure:"conn_max_idle_seconds" yaml:"conn_max_idle_seconds"`
	StatementTimeoutSeconds int    `mapstructure:"statement_timeout_seconds" yaml:"statement_timeout_seconds"`
}

// DefraCfg holds DefraDB container configuration.
type DefraCfg struct {
	// URL of an existing node. When empty, a local container is managed.
	URL           string `mapstructure:"url" yaml:"url"`
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	Image         string `mapstructure:"image" yaml:"image"`
	Port          string `mapstructure:"port" yaml:"port"`
}

// Managed reports whether serve should run the DefraDB container itself.
func (c DefraCfg) Managed() bool { return c.URL == "" }

// Endpoint returns the node URL.
func (c DefraCfg) Endpoint() string {
	if c.URL != "" {
		return c.URL
	}
	return "http://localhost:" + c.Port
}

// ServerCfg configures the HTTP API.
type ServerCfg struct {
	Host                  string   `mapstructure:"host" yaml:"host"`
	Port                  string   `mapstructure:"port" yaml:"port"`
	CORSOrigins           []string `mapstructure:"cors_origins" yaml:"cors_origins"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
}

// Addr returns host:port.
func (c ServerCfg) Addr() string { return c.Host + ":" + c.Port }

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openai",
				Model:   "xiaomi/mimo-v2-flash:free",
				BaseURL: "https://openrouter.ai/api/v1",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"gemini": {
				Type:    "gemini",
				Model:   "gemini-1.5-flash",
				APIKey:  "${GEMINI_API_KEY}",
				Enabled: false,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openrouter",
			OwnerID:     DefaultOwnerID,
		},
		Ingest: IngestCfg{
			Temperature:    0.1,
			TimeoutSeconds: 120,
			MaxUploadMB:    20,
		},
		Store: StoreCfg{
			Driver: "memory",
			Postgres: PostgresCfg{
				DSN:                     "${DATABASE_URL}",
				MaxConns:                10,
				MinConns:                1,
				ConnMaxLifetimeSeconds:  3600,
				ConnMaxIdleSeconds:      300,
				StatementTimeoutSeconds: 30,
			},
			Defra: DefraCfg{
				Image: "sourcenetwork/defradb:latest",
				Port:  "9181",
			},
		},
		Server: ServerCfg{
			Host:                  "127.0.0.1",
			Port:                  "8080",
			CORSOrigins:           []string{"http://localhost:3000"},
			RequestTimeoutSeconds: 180,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}

// Validate checks values that would otherwise fail deep inside a request.
func (c *Config) Validate() error {
	if c.Defaults.OwnerID == "" {
		return fmt.Errorf("defaults.owner_id must be set")
	}
	switch c.Store.Driver {
	case "memory", "postgres", "defra":
	default:
		return fmt.Errorf("store.driver %q is not one of memory, postgres, defra", c.Store.Driver)
	}
	// Providers treat zero as "unset" and fall back to their own default.
	if c.Ingest.Temperature <= 0 || c.Ingest.Temperature > 2 {
		return fmt.Errorf("ingest.temperature %v out of range (0, 2]", c.Ingest.Temperature)
	}
	if c.Ingest.TimeoutSeconds <= 0 {
		return fmt.Errorf("ingest.timeout_seconds must be positive")
	}
	if c.Defaults.LLMProvider != "" {
		if _, ok := c.LLMProviders[c.Defaults.LLMProvider]; !ok {
			return fmt.Errorf("defaults.llm_provider %q is not configured", c.Defaults.LLMProvider)
		}
	}
	return nil
}
