// Package dbx wraps a pgx connection pool with the transaction and
// advisory-lock helpers every other package in this service builds on.
package dbx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"footybrain/internal/apperr"
)

// Pool wraps a *pgxpool.Pool so transaction helpers live next to the
// connection rather than scattered across every caller.
type Pool struct {
	*pgxpool.Pool
}

// Open parses dsn, tunes the pool the way the teacher tunes its stock
// market pool, and pings once before returning.
func Open(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// WithTx begins a read-committed transaction, runs fn, and commits on a
// nil return or rolls back otherwise. Mirrors the teacher's
// RunMarketTick idiom (defer tx.Rollback, explicit tx.Commit at the end).
func (p *Pool) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := p.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return ClassifyError(err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return ClassifyError(err)
	}
	return nil
}

// WithTxOpt runs fn against an externally supplied transaction when one
// is given, composing with a caller's transaction instead of nesting a
// new one; otherwise it opens and manages its own via WithTx. This lets
// careers.CompletePlayerCareer be called standalone or from inside the
// sweep engine's transaction without branching at every call site.
func (p *Pool) WithTxOpt(ctx context.Context, tx pgx.Tx, fn func(pgx.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	return p.WithTx(ctx, fn)
}

// AdvisoryLock takes a session-scoped advisory lock bound to tx's
// lifetime; it's released automatically on commit or rollback.
func AdvisoryLock(ctx context.Context, tx pgx.Tx, key int64) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key)
	if err != nil {
		return ClassifyError(err)
	}
	return nil
}

// EnsureSweepState inserts the singleton sweep_state row if it's absent,
// so the sweep engine always has a row to lock and read on first run.
func (p *Pool) EnsureSweepState(ctx context.Context) error {
	_, err := p.Exec(ctx, `
		INSERT INTO sweep_state (id, last_sweep_utc_day, last_sweep_at, run_count)
		VALUES (1, NULL, NULL, 0)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return ClassifyError(err)
	}
	return nil
}

// ClassifyError pattern-matches common pgx/driver failure text and wraps
// connection/auth/schema failures as apperr.Infra so the HTTP edge never
// has to parse a raw driver string. Anything it doesn't recognize is
// passed through unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	infraMarkers := []string{
		"connection refused",
		"connection reset",
		"timeout",
		"tls",
		"no such host",
		"i/o timeout",
		"password authentication failed",
		"too many connections",
		"undefined table",
		"undefined column",
		"does not exist",
	}
	for _, m := range infraMarkers {
		if strings.Contains(msg, m) {
			return apperr.Infra("database error", err)
		}
	}
	return err
}

// IsNoRows reports whether err is pgx's "no rows" sentinel, the
// teacher's standard branch after a SELECT ... FOR UPDATE.
func IsNoRows(err error) bool {
	return err == pgx.ErrNoRows
}
