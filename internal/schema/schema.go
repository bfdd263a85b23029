// Package schema holds the DefraDB collection definitions ResumeWorthy
// stores its blocks in.
package schema

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Julien-ser/ResumeWorthy/internal/defra"
)

//go:embed schemas/*.graphql
var schemaFS embed.FS

// BlockCollection is the collection résumé blocks are written to.
const BlockCollection = "Block"

// Schema is one collection's SDL.
type Schema struct {
	Name string
	SDL  string
}

// collections lists the schemas in the order they must be applied.
var collections = []string{BlockCollection}

// All loads every embedded schema in application order.
func All() ([]Schema, error) {
	out := make([]Schema, 0, len(collections))
	for _, name := range collections {
		s, err := Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

// Get loads one schema by collection name.
func Get(name string) (*Schema, error) {
	content, err := schemaFS.ReadFile("schemas/" + strings.ToLower(name) + ".graphql")
	if err != nil {
		return nil, fmt.Errorf("schema not found: %s", name)
	}
	return &Schema{Name: name, SDL: string(content)}, nil
}

// Initialize applies every schema. Collections that already exist are
// skipped, so it is safe to call on each startup.
func Initialize(ctx context.Context, client *defra.Client, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	schemas, err := All()
	if err != nil {
		return fmt.Errorf("failed to load schemas: %w", err)
	}

	for _, s := range schemas {
		if err := client.AddSchema(ctx, s.SDL); err != nil {
			if isAlreadyExistsError(err) {
				logger.Debug("schema already exists", "name", s.Name)
				continue
			}
			return fmt.Errorf("failed to add schema %s: %w", s.Name, err)
		}
		logger.Info("schema added", "name", s.Name)
	}
	return nil
}

// DefraDB reports this only in the response body.
func isAlreadyExistsError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
