package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/Julien-ser/ResumeWorthy/internal/config"
	"github.com/Julien-ser/ResumeWorthy/internal/providers"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
	"github.com/Julien-ser/ResumeWorthy/internal/structuring"
)

func TestBuild(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("no providers", func(t *testing.T) {
		_, err := Build(cfg, providers.NewRegistry(), store.NewMemoryStore(), nil)
		if !errors.Is(err, ErrNoProvider) {
			t.Fatalf("Build() error = %v, want ErrNoProvider", err)
		}
	})

	t.Run("falls back to a registered provider", func(t *testing.T) {
		reg := providers.NewRegistry()
		reg.RegisterLLM("mock", providers.NewMockClient())
		p, err := Build(cfg, reg, store.NewMemoryStore(), nil)
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		if p == nil {
			t.Fatal("Build() returned nil pipeline")
		}
	})

	t.Run("requires a store", func(t *testing.T) {
		reg := providers.NewRegistry()
		reg.RegisterLLM("openrouter", providers.NewMockClient())
		if _, err := Build(cfg, reg, nil, nil); err == nil {
			t.Fatal("Build() expected error for nil store")
		}
	})
}

func TestGeneratorConfigTemperature(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"configured", 0.3, 0.3},
		{"zero falls back", 0, structuring.Temperature},
		{"negative falls back", -1, structuring.Temperature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := providers.NewMockClient()
			mock.Latency = 0
			reg := providers.NewRegistry()
			reg.RegisterLLM("openrouter", mock)

			cfg := config.DefaultConfig()
			cfg.Ingest.Temperature = tt.in
			gc := generatorConfig(cfg, "openrouter", reg, nil)
			if gc.Temperature != tt.want {
				t.Fatalf("Temperature = %v, want %v", gc.Temperature, tt.want)
			}

			gen := providers.NewGenerator(mock, gc)
			if _, err := gen.Generate(context.Background(), "system", "user"); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if got := mock.LastRequest().Temperature; got != tt.want {
				t.Errorf("request temperature = %v, want %v", got, tt.want)
			}
		})
	}
}
