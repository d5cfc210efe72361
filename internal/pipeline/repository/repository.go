// Package repository implements pipeline persistence on PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/ports"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgLockNotAvailable     = "55P03"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgForeignKeyViolation  = "23503"
)

// querier is satisfied by both the pool and a transaction, so reads and
// writes share one implementation.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository provides database operations for leads, clients, cases and their
// activity and audit trails.
type Repository struct {
	queries
	pool        *pgxpool.Pool
	lockTimeout time.Duration
	log         *logger.Logger
}

// New creates a pipeline repository. lockTimeout bounds row-lock waits inside
// WithinTx.
func New(pool *pgxpool.Pool, lockTimeout time.Duration, log *logger.Logger) *Repository {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Repository{queries: queries{q: pool}, pool: pool, lockTimeout: lockTimeout, log: log}
}

// WithinTx runs fn in a transaction. A lock wait that exceeds the timeout,
// a deadlock or a serialization failure is reported as Unavailable.
func (r *Repository) WithinTx(ctx context.Context, fn func(tx ports.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return r.fail("begin", fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback(ctx)

	if r.lockTimeout > 0 {
		// SET does not take bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return r.fail("set_lock_timeout", fmt.Errorf("failed to set lock timeout: %w", err))
		}
	}

	if err := fn(&txQueries{queries: queries{q: tx}}); err != nil {
		return r.fail("tx", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return r.fail("commit", fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// fail maps err and logs it when it is a database fault rather than a rule
// violation or a retryable lock conflict. Transaction plumbing failures are
// always faults.
func (r *Repository) fail(op string, err error) error {
	mapped := mapTxError(err)
	if op != "tx" || isDatabaseFault(mapped) {
		r.log.DatabaseError(op, err)
	}
	return mapped
}

func isDatabaseFault(err error) bool {
	if _, ok := apperr.As(err); ok {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr)
}

func mapTxError(err error) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgLockNotAvailable:
			return apperr.Unavailable("record is locked by another request, retry shortly", err)
		case pgSerializationFailure, pgDeadlockDetected:
			return apperr.Unavailable("concurrent update detected, retry shortly", err)
		case pgForeignKeyViolation:
			return apperr.Wrap(apperr.KindValidation, "referenced record does not exist", err)
		}
	}
	return err
}

// queries holds the statements shared by pool reads and transactional writes.
type queries struct {
	q querier
}

// txQueries adds locking and writes on top of queries.
type txQueries struct {
	queries
}

var entityTables = map[domain.EntityKind]string{
	domain.EntityLead:   "leads",
	domain.EntityClient: "clients",
	domain.EntityCase:   "cases",
}

func notFound(kind domain.EntityKind) *apperr.Error {
	return apperr.NotFound(fmt.Sprintf("%s not found", kind))
}

func (t *txQueries) LockEntity(ctx context.Context, ref domain.EntityRef) error {
	table, ok := entityTables[ref.Kind]
	if !ok {
		return apperr.Validation(fmt.Sprintf("unknown entity kind %q", ref.Kind))
	}
	var id int64
	err := t.q.QueryRow(ctx, "SELECT id FROM "+table+" WHERE id = $1 FOR UPDATE", ref.ID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound(ref.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", ref, err)
	}
	return nil
}

func (t *txQueries) Touch(ctx context.Context, ref domain.EntityRef) error {
	table, ok := entityTables[ref.Kind]
	if !ok {
		return apperr.Validation(fmt.Sprintf("unknown entity kind %q", ref.Kind))
	}
	tag, err := t.q.Exec(ctx, "UPDATE "+table+" SET updated_at = now() WHERE id = $1", ref.ID)
	if err != nil {
		return fmt.Errorf("failed to touch %s: %w", ref, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(ref.Kind)
	}
	return nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()
	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func searchPattern(s string) any {
	if s == "" {
		return nil
	}
	return "%" + s + "%"
}

var (
	_ ports.Store = (*Repository)(nil)
	_ ports.Tx    = (*txQueries)(nil)
)
