package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/compilations"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/requests"
	"github.com/afisha-events/server/internal/domain/subscriptions"
	"github.com/afisha-events/server/internal/domain/users"
	"github.com/afisha-events/server/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func NewRepository(pool *pgxpool.Pool) (*Repository, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres repository: pool is nil")
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) db() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *Repository) Users() users.Repository {
	return &UserRepository{db: r.db()}
}

func (r *Repository) Categories() categories.Repository {
	return &CategoryRepository{db: r.db()}
}

func (r *Repository) Events() events.Repository {
	return &EventRepository{db: r.db()}
}

func (r *Repository) Requests() requests.Repository {
	return &RequestRepository{parent: r}
}

func (r *Repository) Compilations() compilations.Repository {
	return &CompilationRepository{parent: r}
}

func (r *Repository) Subscriptions() subscriptions.Repository {
	return &SubscriptionRepository{db: r.db()}
}

func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	wrapped := &Repository{pool: r.pool, tx: tx}
	if err := fn(ctx, wrapped); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// inTx runs fn against a single transaction, reusing the current one
// when already inside WithTx.
func (r *Repository) inTx(ctx context.Context, fn func(q querier) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ storage.Repository = (*Repository)(nil)

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// notFound translates pgx.ErrNoRows into the domain not-found error.
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return faults.NotFoundf(format, args...)
	}
	return err
}
