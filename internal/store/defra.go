package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
	"github.com/Julien-ser/ResumeWorthy/internal/defra"
	"github.com/Julien-ser/ResumeWorthy/internal/schema"
)

var blockFields = []string{"user_id", "type", "content", "tags", "created_at"}

// DefraStore writes blocks to the DefraDB Block collection. Content is kept
// as a JSON string so the collection schema stays flat.
type DefraStore struct {
	client *defra.Client
	now    func() time.Time
}

// NewDefraStore wraps a client whose node already has the Block schema.
func NewDefraStore(client *defra.Client) *DefraStore {
	return &DefraStore{client: client, now: time.Now}
}

// InsertBlocks creates the whole batch in a single create_Block mutation.
func (s *DefraStore) InsertBlocks(ctx context.Context, batch []blocks.Block) ([]blocks.Block, error) {
	if len(batch) == 0 {
		return []blocks.Block{}, nil
	}

	now := s.now().UTC()
	docs := make([]map[string]any, len(batch))
	for i, b := range batch {
		content, err := json.Marshal(b.Content)
		if err != nil {
			return nil, fmt.Errorf("encode content: %w", err)
		}
		tags := b.Tags
		if tags == nil {
			tags = []string{}
		}
		docs[i] = map[string]any{
			"user_id":    b.OwnerID,
			"type":       string(b.Type),
			"content":    string(content),
			"tags":       tags,
			"created_at": now,
		}
	}

	created, err := s.client.CreateMany(ctx, schema.BlockCollection, docs)
	if err != nil {
		return nil, err
	}
	if len(created) != len(batch) {
		return nil, fmt.Errorf("defradb created %d of %d blocks", len(created), len(batch))
	}

	out := make([]blocks.Block, len(batch))
	for i, b := range batch {
		b.ID, _ = created[i]["_docID"].(string)
		b.CreatedAt = now
		out[i] = b
	}
	return out, nil
}

// ListBlocks returns every block, newest first.
func (s *DefraStore) ListBlocks(ctx context.Context) ([]blocks.Block, error) {
	docs, err := defra.NewQuery(schema.BlockCollection).
		Fields(append([]string{"_docID"}, blockFields...)...).
		OrderBy("created_at", defra.DESC).
		Execute(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}

	out := make([]blocks.Block, 0, len(docs))
	for _, doc := range docs {
		b, err := blockFromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func blockFromDoc(doc map[string]any) (blocks.Block, error) {
	b := blocks.Block{Tags: []string{}}
	b.ID, _ = doc["_docID"].(string)
	b.OwnerID, _ = doc["user_id"].(string)
	if t, ok := doc["type"].(string); ok {
		b.Type = blocks.Type(t)
	}
	if raw, ok := doc["content"].(string); ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &b.Content); err != nil {
			return b, fmt.Errorf("decode content of block %s: %w", b.ID, err)
		}
	}
	if tags, ok := doc["tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				b.Tags = append(b.Tags, s)
			}
		}
	}
	if ts, ok := doc["created_at"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			b.CreatedAt = parsed
		}
	}
	return b, nil
}

func (s *DefraStore) HealthCheck(ctx context.Context) error {
	return s.client.HealthCheck(ctx)
}

func (s *DefraStore) Close() error { return nil }
