package categories

import (
	"context"

	"github.com/afisha-events/server/internal/api/pagination"
)

type Category struct {
	ID   int64
	Name string
}

type Repository interface {
	Create(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, id int64, name string) (*Category, error)
	GetByID(ctx context.Context, id int64) (*Category, error)
	List(ctx context.Context, page pagination.Page) ([]Category, error)
	Delete(ctx context.Context, id int64) error
	ExistsByName(ctx context.Context, name string) (bool, error)
	// ExistsByNameExcept reports whether another category already holds name.
	ExistsByNameExcept(ctx context.Context, name string, id int64) (bool, error)
	// InUse reports whether any event references the category.
	InUse(ctx context.Context, id int64) (bool, error)
}
