package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
)

// MemoryStore keeps blocks in process memory. It is the default backend
// for local runs and tests.
type MemoryStore struct {
	mu     sync.Mutex
	rows   []memoryRow
	seq    uint64
	now    func() time.Time
	closed bool
}

type memoryRow struct {
	block blocks.Block
	seq   uint64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// InsertBlocks appends the batch under one lock, so concurrent batches never interleave.
func (s *MemoryStore) InsertBlocks(_ context.Context, batch []blocks.Block) ([]blocks.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	now := s.now().UTC()
	out := make([]blocks.Block, len(batch))
	for i, b := range batch {
		b.ID = uuid.NewString()
		b.CreatedAt = now
		b.Tags = slices.Clone(b.Tags)
		b.Content.DescriptionBullets = slices.Clone(b.Content.DescriptionBullets)
		s.seq++
		s.rows = append(s.rows, memoryRow{block: b, seq: s.seq})
		out[i] = b
	}
	return out, nil
}

// ListBlocks returns blocks newest first; within one batch, later rows first.
func (s *MemoryStore) ListBlocks(_ context.Context) ([]blocks.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	rows := slices.Clone(s.rows)
	slices.SortFunc(rows, func(a, b memoryRow) int {
		if c := b.block.CreatedAt.Compare(a.block.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	out := make([]blocks.Block, len(rows))
	for i, r := range rows {
		out[i] = r.block
	}
	return out, nil
}

// Len returns the number of stored blocks.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MemoryStore) HealthCheck(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
