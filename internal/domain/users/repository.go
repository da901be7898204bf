package users

import (
	"context"

	"github.com/afisha-events/server/internal/api/pagination"
)

type User struct {
	ID    int64
	Name  string
	Email string
}

type CreateParams struct {
	Name  string
	Email string
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	// List returns users ordered by id; a non-empty ids set restricts the result.
	List(ctx context.Context, ids []int64, page pagination.Page) ([]User, error)
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
