package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Julien-ser/ResumeWorthy/internal/blocks"
)

//go:embed schema.sql
var bootstrapSQL string

const (
	insertBlockSQL = `INSERT INTO blocks (user_id, type, content, tags)
VALUES ($1, $2, $3, $4)
RETURNING id::text, created_at`

	listBlocksSQL = `SELECT id::text, user_id, type, content, tags, created_at
FROM blocks
ORDER BY created_at DESC, id DESC`
)

// PostgresConfig holds connection and pool settings.
type PostgresConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	ConnectAttempts  uint
}

// pgxPool is the subset of *pgxpool.Pool the store uses.
type pgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore writes blocks to the "blocks" table.
type PostgresStore struct {
	pool   pgxPool
	logger *slog.Logger
}

// OpenPostgres connects, retrying while the server comes up, and creates
// the blocks table if it does not exist.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "resumeworthy"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
	}

	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 10 * time.Second
	}
	attempts := cfg.ConnectAttempts
	if attempts == 0 {
		attempts = 5
	}

	var pool *pgxpool.Pool
	err = retry.Do(
		func() error {
			dctx, cancel := context.WithTimeout(ctx, dial)
			defer cancel()
			p, err := pgxpool.NewWithConfig(dctx, pc)
			if err != nil {
				return err
			}
			if err := p.Ping(dctx); err != nil {
				p.Close()
				return err
			}
			pool = p
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("postgres connect failed, retrying", "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	s := &PostgresStore{pool: pool, logger: logger}
	if err := s.bootstrap(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("connected to postgres", "max_conns", pc.MaxConns)
	return s, nil
}

func (s *PostgresStore) bootstrap(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, bootstrapSQL); err != nil {
		return fmt.Errorf("failed to bootstrap blocks table: %w", err)
	}
	return nil
}

// InsertBlocks writes the batch in one transaction with one round trip.
// Either every row is committed or none is.
func (s *PostgresStore) InsertBlocks(ctx context.Context, batch []blocks.Block) ([]blocks.Block, error) {
	if len(batch) == 0 {
		return []blocks.Block{}, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := &pgx.Batch{}
	for _, b := range batch {
		content, err := json.Marshal(b.Content)
		if err != nil {
			return nil, fmt.Errorf("encode content: %w", err)
		}
		tags := b.Tags
		if tags == nil {
			tags = []string{}
		}
		q.Queue(insertBlockSQL, b.OwnerID, string(b.Type), string(content), tags)
	}

	out := make([]blocks.Block, len(batch))
	results := tx.SendBatch(ctx, q)
	for i, b := range batch {
		if err := results.QueryRow().Scan(&b.ID, &b.CreatedAt); err != nil {
			_ = results.Close()
			return nil, fmt.Errorf("insert block %d: %w", i, err)
		}
		out[i] = b
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("insert blocks: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("store.insert", "backend", DriverPostgres, "rows", len(out))
	return out, nil
}

// ListBlocks returns every block, newest first.
func (s *PostgresStore) ListBlocks(ctx context.Context) ([]blocks.Block, error) {
	rows, err := s.pool.Query(ctx, listBlocksSQL)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	out := []blocks.Block{}
	for rows.Next() {
		var (
			b       blocks.Block
			typ     string
			content []byte
		)
		if err := rows.Scan(&b.ID, &b.OwnerID, &typ, &content, &b.Tags, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan block: %w", err)
		}
		b.Type = blocks.Type(typ)
		if len(content) > 0 {
			if err := json.Unmarshal(content, &b.Content); err != nil {
				return nil, fmt.Errorf("decode content of block %s: %w", b.ID, err)
			}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return out, nil
}

// HealthCheck pings the database.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
