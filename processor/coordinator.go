// Package processor routes decoded events to their domain handlers and owns
// the per-event transaction boundary.
package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// TxFunc is a domain handler body bound to a validated payload. It performs
// every read and write of its event inside the one supplied transaction.
type TxFunc func(ctx context.Context, tx pgx.Tx) error

// TxBeginner abstracts pgxpool.Pool for testability. Begin draws a connection
// from the bounded pool (blocking when exhausted) and the connection returns
// to the pool on commit or rollback.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Notifier publishes a failure report; it is best-effort and must never block
// the processing outcome.
type Notifier interface {
	ReportFailure(ctx context.Context, subject string, payload json.RawMessage, cause error)
}

// Coordinator wraps each domain handler invocation in one transaction:
// commit on success, rollback plus failure notification otherwise. A handler
// never spans more than one transaction and always runs to completion.
type Coordinator struct {
	pool     TxBeginner
	notifier Notifier
	log      *zap.Logger
}

func NewCoordinator(pool TxBeginner, notifier Notifier, log *zap.Logger) *Coordinator {
	return &Coordinator{
		pool:     pool,
		notifier: notifier,
		log:      log,
	}
}

// Run executes fn inside a fresh transaction. On any failure, including a
// failed commit, the original payload plus the failure message go to the
// notifier; the error is still returned so the caller can log it, but the
// caller acknowledges the event regardless.
func (c *Coordinator) Run(ctx context.Context, subject string, payload json.RawMessage, fn TxFunc) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		err = fmt.Errorf("processor: begin tx: %w", err)
		c.notify(ctx, subject, payload, err)
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		c.notify(ctx, subject, payload, err)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		err = fmt.Errorf("processor: commit tx: %w", err)
		c.notify(ctx, subject, payload, err)
		return err
	}

	return nil
}

func (c *Coordinator) notify(ctx context.Context, subject string, payload json.RawMessage, cause error) {
	if c.notifier == nil {
		return
	}
	c.notifier.ReportFailure(ctx, subject, payload, cause)
}
