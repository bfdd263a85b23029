// Package store persists résumé blocks. Every backend writes one batch
// atomically and lists blocks newest first.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
	"github.com/Julien-ser/ResumeWorthy/internal/defra"
	"github.com/Julien-ser/ResumeWorthy/internal/schema"
)

// Backend names accepted by Open.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverDefra    = "defra"
)

// Inserter is the one capability the ingestion pipeline needs: write a batch
// of blocks atomically and return them with ID and CreatedAt filled in.
type Inserter interface {
	InsertBlocks(ctx context.Context, batch []blocks.Block) ([]blocks.Block, error)
}

// Store is a full block backend.
type Store interface {
	Inserter
	// ListBlocks returns every block, most recently created first.
	ListBlocks(ctx context.Context) ([]blocks.Block, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver   string
	Postgres PostgresConfig
	DefraURL string
}

// Open builds the backend named by cfg.Driver. For DefraDB the node must
// already be reachable; the Block collection is created if missing.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverPostgres:
		return OpenPostgres(ctx, cfg.Postgres, logger)
	case DriverDefra:
		client := defra.NewClient(cfg.DefraURL)
		if err := schema.Initialize(ctx, client, logger); err != nil {
			return nil, err
		}
		return NewDefraStore(client), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want %s, %s or %s)",
			cfg.Driver, DriverMemory, DriverPostgres, DriverDefra)
	}
}
