package providers

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultGenerateTimeout bounds a single generation call.
const DefaultGenerateTimeout = 120 * time.Second

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	Model       string        // empty uses the client default
	Temperature float64       // applied to every call
	MaxTokens   int           // 0 leaves it to the provider
	Timeout     time.Duration // default: DefaultGenerateTimeout
	Limiter     *RateLimiter  // optional
	Logger      *slog.Logger
}

// Generator adapts an LLMClient to a single system+user exchange.
type Generator struct {
	client LLMClient
	cfg    GeneratorConfig
	logger *slog.Logger
}

// NewGenerator wraps client with fixed generation settings.
func NewGenerator(client LLMClient, cfg GeneratorConfig) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultGenerateTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, cfg: cfg, logger: logger}
}

// Generate sends one chat exchange and returns the reply text.
// Refusals are reported as ErrRefused.
func (g *Generator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	if g.cfg.Limiter != nil {
		if err := g.cfg.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limiter: %w", err)
		}
	}

	req := &ChatRequest{
		Messages:    []Message{SystemMessage(systemPrompt), UserMessage(userPrompt)},
		Model:       g.cfg.Model,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		Timeout:     g.cfg.Timeout,
	}

	result, err := g.client.Chat(ctx, req)
	if rec := usageRecorderFrom(ctx); rec != nil {
		rec.Record(result)
	}
	if err != nil {
		g.logger.Warn("llm.request.failed",
			"provider", g.client.Name(),
			"model", g.cfg.Model,
			"error", err,
		)
		return "", err
	}
	if result.Refused() {
		return "", fmt.Errorf("%w (provider=%s)", ErrRefused, g.client.Name())
	}

	g.logger.Info("llm.request",
		"provider", result.Provider,
		"model", result.ModelUsed,
		"request_id", result.RequestID,
		"prompt_tokens", result.PromptTokens,
		"completion_tokens", result.CompletionTokens,
		"attempts", result.Attempts,
		"duration", result.TotalTime,
	)
	return result.Content, nil
}

// Provider returns the wrapped client's name.
func (g *Generator) Provider() string {
	return g.client.Name()
}
