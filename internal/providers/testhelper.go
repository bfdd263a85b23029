package providers

import (
	"os"
)

// TestConfig holds provider API keys loaded from environment variables, so
// live tests use the same configuration path as production.
type TestConfig struct {
	OpenRouterAPIKey string
	GeminiAPIKey     string
}

// LoadTestConfig loads provider API keys from environment variables.
func LoadTestConfig() TestConfig {
	return TestConfig{
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
	}
}

// HasOpenRouter returns true if an OpenRouter API key is configured.
func (c TestConfig) HasOpenRouter() bool {
	return c.OpenRouterAPIKey != ""
}

// HasGemini returns true if a Gemini API key is configured.
func (c TestConfig) HasGemini() bool {
	return c.GeminiAPIKey != ""
}

// ToRegistryConfig converts test config to a RegistryConfig.
// Only providers with keys are included.
func (c TestConfig) ToRegistryConfig() RegistryConfig {
	cfg := RegistryConfig{LLMProviders: make(map[string]LLMProviderConfig)}
	if c.HasOpenRouter() {
		cfg.LLMProviders[OpenRouterName] = LLMProviderConfig{
			Type:    TypeOpenAI,
			APIKey:  c.OpenRouterAPIKey,
			Enabled: true,
		}
	}
	if c.HasGemini() {
		cfg.LLMProviders[GeminiName] = LLMProviderConfig{
			Type:    TypeGemini,
			APIKey:  c.GeminiAPIKey,
			Enabled: true,
		}
	}
	return cfg
}
