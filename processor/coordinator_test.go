package processor

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type fakePool struct {
	beginErr  error
	commitErr error
	tx        *fakeTx
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	f.tx = &fakeTx{commitErr: f.commitErr}
	return f.tx, nil
}

type fakeTx struct {
	rolled    bool
	committed bool
	commitErr error
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeTx does not support nested transactions")
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeTx) Conn() *pgx.Conn {
	return nil
}

type fakeNotifier struct {
	subjects []string
	payloads []json.RawMessage
	causes   []error
}

func (f *fakeNotifier) ReportFailure(ctx context.Context, subject string, payload json.RawMessage, cause error) {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, payload)
	f.causes = append(f.causes, cause)
}

func TestRun_CommitsOnSuccess(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	coord := NewCoordinator(pool, notifier, zap.NewNop())

	ran := false
	err := coord.Run(context.Background(), "subject", nil, func(ctx context.Context, tx pgx.Tx) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Fatal("handler did not run")
	}
	if !pool.tx.committed {
		t.Error("expected commit")
	}
	if len(notifier.subjects) != 0 {
		t.Errorf("no notification expected, got %v", notifier.subjects)
	}
}

func TestRun_RollsBackAndNotifiesOnHandlerError(t *testing.T) {
	pool := &fakePool{}
	notifier := &fakeNotifier{}
	coord := NewCoordinator(pool, notifier, zap.NewNop())

	handlerErr := errors.New("terms not found")
	payload := json.RawMessage(`{"id": 5001}`)

	err := coord.Run(context.Background(), "Terms of Use Failure", payload, func(ctx context.Context, tx pgx.Tx) error {
		return handlerErr
	})
	if !errors.Is(err, handlerErr) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if pool.tx.committed {
		t.Error("commit must not happen after handler failure")
	}
	if !pool.tx.rolled {
		t.Error("expected rollback")
	}
	if len(notifier.subjects) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(notifier.subjects))
	}
	if notifier.subjects[0] != "Terms of Use Failure" {
		t.Errorf("unexpected subject %q", notifier.subjects[0])
	}
	if string(notifier.payloads[0]) != string(payload) {
		t.Errorf("notification must carry the original payload, got %s", notifier.payloads[0])
	}
	if !errors.Is(notifier.causes[0], handlerErr) {
		t.Errorf("notification must carry the cause, got %v", notifier.causes[0])
	}
}

func TestRun_NotifiesOnBeginError(t *testing.T) {
	pool := &fakePool{beginErr: errors.New("pool exhausted")}
	notifier := &fakeNotifier{}
	coord := NewCoordinator(pool, notifier, zap.NewNop())

	err := coord.Run(context.Background(), "subject", nil, func(ctx context.Context, tx pgx.Tx) error {
		t.Fatal("handler must not run without a transaction")
		return nil
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(notifier.subjects) != 1 {
		t.Errorf("expected one notification, got %d", len(notifier.subjects))
	}
}

func TestRun_NotifiesOnCommitError(t *testing.T) {
	pool := &fakePool{commitErr: errors.New("connection reset")}
	notifier := &fakeNotifier{}
	coord := NewCoordinator(pool, notifier, zap.NewNop())

	err := coord.Run(context.Background(), "subject", nil, func(ctx context.Context, tx pgx.Tx) error {
		return nil
	})
	if err == nil {
		t.Fatal("expected commit error")
	}
	if len(notifier.subjects) != 1 {
		t.Errorf("expected one notification, got %d", len(notifier.subjects))
	}
}

func TestRun_NilNotifierTolerated(t *testing.T) {
	pool := &fakePool{}
	coord := NewCoordinator(pool, nil, zap.NewNop())

	err := coord.Run(context.Background(), "subject", nil, func(ctx context.Context, tx pgx.Tx) error {
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected handler error")
	}
}
