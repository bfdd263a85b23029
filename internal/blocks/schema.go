package blocks

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed block.schema.json
var schemaJSON []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// SchemaJSON returns the JSON Schema describing a single block as emitted by a
// language model (no owner, id or timestamps).
func SchemaJSON() json.RawMessage {
	return json.RawMessage(schemaJSON)
}

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("block.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("failed to load block schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("block.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile block schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks a decoded JSON value (as produced by encoding/json into any)
// against the block schema.
func Validate(v any) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("block does not match schema: %w", err)
	}
	return nil
}

// ValidateBlock validates a typed block, as the manual add path does.
func ValidateBlock(b Block) error {
	if !b.Type.Valid() {
		return fmt.Errorf("unknown block type %q", b.Type)
	}
	raw, err := json.Marshal(struct {
		Type    Type     `json:"type"`
		Content Content  `json:"content"`
		Tags    []string `json:"tags"`
	}{b.Type, b.Content, nonNil(b.Tags)})
	if err != nil {
		return fmt.Errorf("failed to encode block: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("failed to decode block: %w", err)
	}
	return Validate(doc)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
