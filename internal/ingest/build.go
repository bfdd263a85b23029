package ingest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Julien-ser/ResumeWorthy/internal/config"
	"github.com/Julien-ser/ResumeWorthy/internal/extract"
	"github.com/Julien-ser/ResumeWorthy/internal/providers"
	"github.com/Julien-ser/ResumeWorthy/internal/sanitize"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
	"github.com/Julien-ser/ResumeWorthy/internal/structuring"
)

// ErrNoProvider is returned by Build when no usable model provider is registered.
var ErrNoProvider = errors.New("no LLM provider available")

// Build assembles a production pipeline from configuration: the PDF
// extractor, the default provider from registry, and permissive or strict
// sanitizing. If the default provider is not registered the first
// registered one is used.
func Build(cfg *config.Config, registry *providers.Registry, st store.Inserter, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Defaults.LLMProvider
	if !registry.HasLLM(name) {
		names := registry.ListLLM()
		if len(names) == 0 {
			return nil, ErrNoProvider
		}
		logger.Warn("default LLM provider unavailable, falling back",
			"wanted", name, "using", names[0])
		name = names[0]
	}
	client, err := registry.GetLLM(name)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	gen := providers.NewGenerator(client, generatorConfig(cfg, name, registry, logger))

	return New(Config{
		Extractor:  extract.New(logger),
		Structurer: structuring.NewEngine(gen, logger),
		Sanitize:   sanitize.For(cfg.Ingest.StrictValidation),
		Store:      st,
		Logger:     logger,
	})
}

// generatorConfig resolves the generation settings for provider name.
// A non-positive temperature would be dropped on the wire, so it falls back
// to structuring.Temperature.
func generatorConfig(cfg *config.Config, name string, registry *providers.Registry, logger *slog.Logger) providers.GeneratorConfig {
	temperature := cfg.Ingest.Temperature
	if temperature <= 0 {
		temperature = structuring.Temperature
	}
	return providers.GeneratorConfig{
		Model:       cfg.LLMProviders[name].Model,
		Temperature: temperature,
		MaxTokens:   cfg.Ingest.MaxTokens,
		Timeout:     cfg.Ingest.Timeout(),
		Limiter:     registry.Limiter(name),
		Logger:      logger,
	}
}
