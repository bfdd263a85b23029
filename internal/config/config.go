// Package config loads ResumeWorthy settings from config.yaml, .env and
// RESUMEWORTHY_* environment variables, and reloads them when the file changes.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"github.com/Julien-ser/ResumeWorthy/internal/providers"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
)

// EnvPrefix prefixes environment overrides, e.g. RESUMEWORTHY_STORE_DRIVER.
const EnvPrefix = "RESUMEWORTHY"

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// Manager handles loading and hot-reloading configuration.
type Manager struct {
	v         *viper.Viper
	mu        sync.RWMutex
	config    *Config
	callbacks []func(*Config)
}

// NewManager loads .env (if present), then the config file, then the
// environment. cfgFile may be empty to search ./ and homeDir.
func NewManager(cfgFile, homeDir string) (*Manager, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	cm := &Manager{v: viper.New()}
	if err := cm.initViper(cfgFile, homeDir); err != nil {
		return nil, err
	}

	cfg, err := cm.load()
	if err != nil {
		return nil, err
	}
	cm.config = cfg
	return cm, nil
}

func (cm *Manager) initViper(cfgFile, homeDir string) error {
	v := cm.v
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if homeDir != "" {
			v.AddConfigPath(homeDir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

// setDefaults registers every scalar key individually so AutomaticEnv can
// override nested values during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("llm_providers", d.LLMProviders)

	v.SetDefault("defaults.llm_provider", d.Defaults.LLMProvider)
	v.SetDefault("defaults.owner_id", d.Defaults.OwnerID)

	v.SetDefault("ingest.temperature", d.Ingest.Temperature)
	v.SetDefault("ingest.timeout_seconds", d.Ingest.TimeoutSeconds)
	v.SetDefault("ingest.max_tokens", d.Ingest.MaxTokens)
	v.SetDefault("ingest.strict_validation", d.Ingest.StrictValidation)
	v.SetDefault("ingest.max_upload_mb", d.Ingest.MaxUploadMB)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.postgres.dsn", d.Store.Postgres.DSN)
	v.SetDefault("store.postgres.max_conns", d.Store.Postgres.MaxConns)
	v.SetDefault("store.postgres.min_conns", d.Store.Postgres.MinConns)
	v.SetDefault("store.postgres.conn_max_lifetime_seconds", d.Store.Postgres.ConnMaxLifetimeSeconds)
	v.SetDefault("store.postgres.conn_max_idle_seconds", d.Store.Postgres.ConnMaxIdleSeconds)
	v.SetDefault("store.postgres.statement_timeout_seconds", d.Store.Postgres.StatementTimeoutSeconds)
	v.SetDefault("store.defra.url", d.Store.Defra.URL)
	v.SetDefault("store.defra.container_name", d.Store.Defra.ContainerName)
	v.SetDefault("store.defra.image", d.Store.Defra.Image)
	v.SetDefault("store.defra.port", d.Store.Defra.Port)

	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.request_timeout_seconds", d.Server.RequestTimeoutSeconds)
}

func (cm *Manager) load() (*Config, error) {
	var cfg Config
	if err := cm.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Get returns the current configuration (thread-safe).
func (cm *Manager) Get() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.config
}

// ConfigFile returns the file in use, or "" when running on defaults.
func (cm *Manager) ConfigFile() string {
	return cm.v.ConfigFileUsed()
}

// OnChange registers a callback for config changes.
func (cm *Manager) OnChange(fn func(*Config)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.callbacks = append(cm.callbacks, fn)
}

// WatchConfig reloads on file changes. Invalid edits are ignored and the
// previous configuration stays active.
func (cm *Manager) WatchConfig() {
	cm.v.OnConfigChange(func(fsnotify.Event) {
		cm.reload()
	})
	cm.v.WatchConfig()
}

func (cm *Manager) reload() {
	cfg, err := cm.load()
	if err != nil {
		return
	}

	cm.mu.Lock()
	cm.config = cfg
	callbacks := make([]func(*Config), len(cm.callbacks))
	copy(callbacks, cm.callbacks)
	cm.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
}

// ResolveEnvVars expands ${ENV_VAR} references in a string.
func ResolveEnvVars(value string) string {
	if value == "" {
		return value
	}
	return envRef.ReplaceAllStringFunc(value, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// ToProviderRegistryConfig resolves API keys and converts the provider
// section for providers.Registry.
func (c *Config) ToProviderRegistryConfig() providers.RegistryConfig {
	cfg := providers.RegistryConfig{
		LLMProviders: make(map[string]providers.LLMProviderConfig, len(c.LLMProviders)),
	}
	for name, llm := range c.LLMProviders {
		cfg.LLMProviders[name] = providers.LLMProviderConfig{
			Type:      llm.Type,
			Model:     llm.Model,
			BaseURL:   llm.BaseURL,
			APIKey:    ResolveEnvVars(llm.APIKey),
			RateLimit: llm.RateLimit,
			Enabled:   llm.Enabled,
		}
	}
	return cfg
}

// ToStoreConfig resolves the DSN and converts the store section.
func (c *Config) ToStoreConfig() store.Config {
	pg := c.Store.Postgres
	return store.Config{
		Driver: c.Store.Driver,
		Postgres: store.PostgresConfig{
			DSN:              ResolveEnvVars(pg.DSN),
			MaxConns:         pg.MaxConns,
			MinConns:         pg.MinConns,
			MaxConnLifetime:  time.Duration(pg.ConnMaxLifetimeSeconds) * time.Second,
			MaxConnIdleTime:  time.Duration(pg.ConnMaxIdleSeconds) * time.Second,
			StatementTimeout: time.Duration(pg.StatementTimeoutSeconds) * time.Second,
		},
		DefraURL: c.Store.Defra.Endpoint(),
	}
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# ResumeWorthy configuration
# API keys and DSNs use ${ENV_VAR} syntax to reference environment variables.
# Set them in your shell or a .env file: OPENROUTER_API_KEY=xxx DATABASE_URL=postgres://...

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
