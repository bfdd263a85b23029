// Package ingest turns one résumé PDF into persisted blocks:
// extract text, ask the model to structure it, sanitize the reply,
// stamp ownership and write the batch.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
	"github.com/Julien-ser/ResumeWorthy/internal/providers"
	"github.com/Julien-ser/ResumeWorthy/internal/sanitize"
	"github.com/Julien-ser/ResumeWorthy/internal/store"
)

// State is a pipeline stage. Callers only ever observe Done or Failed.
type State string

const (
	StateExtracting  State = "extracting"
	StateStructuring State = "structuring"
	StateSanitizing  State = "sanitizing"
	StatePersisting  State = "persisting"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// Extractor turns document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

// Structurer turns plain text into the model's raw reply.
type Structurer interface {
	Structure(ctx context.Context, text string) (string, error)
}

// Config wires the pipeline's collaborators.
type Config struct {
	Extractor  Extractor
	Structurer Structurer
	Sanitize   sanitize.Func // defaults to sanitize.Sanitize
	Store      store.Inserter
	Logger     *slog.Logger
}

// Result describes a successful ingestion.
type Result struct {
	RequestID  string         `json:"request_id"`
	State      State          `json:"state"`
	Blocks     []blocks.Block `json:"blocks"`
	Dropped    int            `json:"dropped"`
	TextLength int            `json:"text_length"`
	Duration   time.Duration  `json:"duration"`

	// LLM totals the model calls behind the structuring stage, including
	// transport-level retries.
	LLM providers.Usage `json:"llm"`
}

// Pipeline runs ingestions. It holds no per-call state and is safe for
// concurrent use; concurrent calls share only the store.
type Pipeline struct {
	extractor  Extractor
	structurer Structurer
	sanitize   sanitize.Func
	store      store.Inserter
	logger     *slog.Logger
}

// New validates cfg and builds a pipeline.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Extractor == nil:
		return nil, errors.New("ingest: extractor is required")
	case cfg.Structurer == nil:
		return nil, errors.New("ingest: structurer is required")
	case cfg.Store == nil:
		return nil, errors.New("ingest: store is required")
	}
	if cfg.Sanitize == nil {
		cfg.Sanitize = sanitize.Sanitize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Pipeline{
		extractor:  cfg.Extractor,
		structurer: cfg.Structurer,
		sanitize:   cfg.Sanitize,
		store:      cfg.Store,
		logger:     cfg.Logger,
	}, nil
}

// Ingest runs every stage in order and stops at the first failure. On
// success exactly one InsertBlocks call was made, even for zero blocks;
// on failure before persisting nothing was written.
func (p *Pipeline) Ingest(ctx context.Context, document []byte, ownerID string) (*Result, error) {
	if ownerID == "" {
		return nil, ErrEmptyOwner
	}

	start := time.Now()
	res := &Result{RequestID: uuid.NewString()}
	log := p.logger.With("request_id", res.RequestID, "owner_id", ownerID)
	log.Info("ingest.start", "bytes", len(document))

	usage := &providers.UsageRecorder{}
	ctx = providers.WithUsageRecorder(ctx, usage)

	fail := func(stage State, err error) (*Result, error) {
		u := usage.Usage()
		log.Error("ingest.failed", "stage", stage, "error", err,
			"llm_calls", u.Calls, "llm_attempts", u.Attempts, "duration", time.Since(start))
		return nil, &StageError{Stage: stage, RequestID: res.RequestID, Err: err}
	}

	var text string
	err := p.stage(log, StateExtracting, func() (err error) {
		text, err = p.extractor.Extract(ctx, document)
		return err
	})
	if err != nil {
		return fail(StateExtracting, err)
	}
	res.TextLength = len(text)

	var reply string
	err = p.stage(log, StateStructuring, func() (err error) {
		reply, err = p.structurer.Structure(ctx, text)
		return err
	})
	if err != nil {
		return fail(StateStructuring, err)
	}
	res.LLM = usage.Usage()
	if res.LLM.Retried() {
		log.Warn("ingest.llm.retried", "calls", res.LLM.Calls, "attempts", res.LLM.Attempts)
	}

	var batch []blocks.Block
	err = p.stage(log, StateSanitizing, func() error {
		candidates, err := p.sanitize(reply)
		if err != nil {
			return err
		}
		batch, res.Dropped = blocks.FromCandidates(candidates)
		if res.Dropped > 0 {
			log.Warn("ingest.dropped", "count", res.Dropped, "reason", "candidate is not an object")
		}
		for i := range batch {
			batch[i] = batch[i].WithOwner(ownerID)
		}
		return nil
	})
	if err != nil {
		return fail(StateSanitizing, err)
	}

	err = p.stage(log, StatePersisting, func() error {
		stored, err := p.store.InsertBlocks(ctx, batch)
		if err != nil {
			return &PersistenceError{Err: err}
		}
		res.Blocks = stored
		return nil
	})
	if err != nil {
		return fail(StatePersisting, err)
	}

	res.State = StateDone
	res.Duration = time.Since(start)
	log.Info("ingest.done",
		"blocks", len(res.Blocks),
		"dropped", res.Dropped,
		"llm_attempts", res.LLM.Attempts,
		"duration", res.Duration,
	)
	return res, nil
}

func (p *Pipeline) stage(log *slog.Logger, s State, fn func() error) error {
	start := time.Now()
	err := fn()
	if err == nil {
		log.Debug("ingest.stage", "stage", s, "duration", time.Since(start))
	}
	return err
}
