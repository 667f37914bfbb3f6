package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrConflict marks a write that lost to a concurrent transaction: a
// serialization failure, a deadlock or a unique-key violation. The driver
// error stays in the chain.
var ErrConflict = errors.New("postgres: conflicting concurrent write")

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// Querier is the statement surface shared by *pgxpool.Pool and pgx.Tx, so a
// write helper can run standalone or inside a larger transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// TxBeginner opens transactions. *pgxpool.Pool and *pgx.Conn satisfy it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

type txConfig struct {
	opts     pgx.TxOptions
	attempts int
}

// TxOption tunes WithTransaction.
type TxOption func(*txConfig)

// ReadOnlySnapshot runs the transaction read-only at REPEATABLE READ, so
// several SELECTs observe the same snapshot.
func ReadOnlySnapshot() TxOption {
	return func(c *txConfig) {
		c.opts.IsoLevel = pgx.RepeatableRead
		c.opts.AccessMode = pgx.ReadOnly
	}
}

// RetryTransient re-runs fn up to attempts times in total while the
// transaction fails with a serialization failure or deadlock. Unique
// violations are never retried.
func RetryTransient(attempts int) TxOption {
	return func(c *txConfig) {
		if attempts > 1 {
			c.attempts = attempts
		}
	}
}

// WithTransaction executes fn within a database transaction. If fn returns an
// error the transaction is rolled back; otherwise it is committed. Conflicts
// are reported wrapped in ErrConflict.
func WithTransaction(ctx context.Context, db TxBeginner, fn func(tx pgx.Tx) error, opts ...TxOption) error {
	cfg := txConfig{attempts: 1}
	for _, o := range opts {
		o(&cfg)
	}

	var err error
	for attempt := 1; attempt <= cfg.attempts; attempt++ {
		err = runTx(ctx, db, cfg.opts, fn)
		if err == nil || !isTransient(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func runTx(ctx context.Context, db TxBeginner, opts pgx.TxOptions, fn func(tx pgx.Tx) error) error {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("postgres: rollback tx: %w (original error: %w)", rbErr, classify(err))
		}
		return classify(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", classify(err))
	}
	return nil
}

// IsConflict reports whether err is, or wraps, a conflicting concurrent write.
func IsConflict(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}
	code, ok := sqlState(err)
	return ok && (code == codeSerializationFailure || code == codeDeadlockDetected || code == codeUniqueViolation)
}

func isTransient(err error) bool {
	code, ok := sqlState(err)
	return ok && (code == codeSerializationFailure || code == codeDeadlockDetected)
}

func classify(err error) error {
	if errors.Is(err, ErrConflict) || !IsConflict(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrConflict, err)
}

func sqlState(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	return pgErr.Code, true
}
