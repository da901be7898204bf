package postgres

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/users"
)

type UserRepository struct {
	db querier
}

func (r *UserRepository) Create(ctx context.Context, params users.CreateParams) (*users.User, error) {
	var user users.User
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id, name, email`,
		params.Name, params.Email,
	).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, faults.Conflictf("user with name %q or email %q already exists", params.Name, params.Email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*users.User, error) {
	var user users.User
	err := r.db.QueryRow(ctx, `
		SELECT id, name, email FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Name, &user.Email)
	if err != nil {
		return nil, notFound(err, "user %d was not found", id)
	}
	return &user, nil
}

func (r *UserRepository) List(ctx context.Context, ids []int64, page pagination.Page) ([]users.User, error) {
	if ids == nil {
		ids = []int64{}
	}
	limit, offset := page.LimitOffset()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, email
		FROM users
		WHERE (cardinality($1::bigint[]) = 0 OR id = ANY($1::bigint[]))
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		ids, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	found := []users.User{}
	for rows.Next() {
		var user users.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		found = append(found, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return found, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFoundf("user %d was not found", id)
	}
	return nil
}

func (r *UserRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE name = $1)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user name: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user email: %w", err)
	}
	return exists, nil
}

var _ users.Repository = (*UserRepository)(nil)
