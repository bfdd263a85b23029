// Package structuring asks a language model to decompose résumé text into
// blocks. It owns the instruction template and nothing else: the reply is
// returned raw and left to the sanitizer.
package structuring

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Temperature is the sampling temperature every structuring call uses.
const Temperature = 0.1

// UserPromptPrefix introduces the résumé text in the user message.
const UserPromptPrefix = "Shred this resume text completely. Leave nothing behind:"

//go:embed system.tmpl
var systemPrompt string

// ErrEmptyResponse is returned when the model replies with nothing but whitespace.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Generator is the one capability the engine needs from a model provider:
// a single system+user exchange returning the reply text.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SystemPrompt returns the fixed instruction template.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// UserPrompt embeds the extracted text verbatim after the fixed prefix.
func UserPrompt(text string) string {
	return UserPromptPrefix + "\n\n" + text
}

// Engine drives a Generator with the structuring prompts.
type Engine struct {
	gen    Generator
	logger *slog.Logger
}

// NewEngine creates an engine. A nil logger falls back to slog.Default().
func NewEngine(gen Generator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{gen: gen, logger: logger}
}

// Structure sends the whole text in one request and returns the raw reply.
// There is no chunking and no retry here. Failures are *InferenceError.
func (e *Engine) Structure(ctx context.Context, text string) (string, error) {
	if e.gen == nil {
		return "", &InferenceError{Err: errors.New("no generator configured")}
	}

	start := time.Now()
	reply, err := e.gen.Generate(ctx, SystemPrompt(), UserPrompt(text))
	if err != nil {
		e.logger.Warn("structuring.failed", "error", err, "duration", time.Since(start))
		return "", &InferenceError{Err: err}
	}
	if strings.TrimSpace(reply) == "" {
		return "", &InferenceError{Err: ErrEmptyResponse}
	}

	e.logger.Debug("structuring.ok",
		"input_chars", len(text),
		"reply_chars", len(reply),
		"duration", time.Since(start),
	)
	return reply, nil
}

// InferenceError reports that the model call failed, came back empty or was refused.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }
