package compilations

import (
	"context"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/events"
)

type Compilation struct {
	ID     int64
	Title  string
	Pinned bool
	Events []events.Event
}

type CreateParams struct {
	Title    string
	Pinned   bool
	EventIDs []int64
}

// UpdateParams carries a partial update; nil fields are left untouched.
// A non-nil EventIDs replaces the member set wholesale, an empty slice
// clears it.
type UpdateParams struct {
	Title    *string
	Pinned   *bool
	EventIDs *[]int64
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Compilation, error)
	GetByID(ctx context.Context, id int64) (*Compilation, error)
	List(ctx context.Context, pinned *bool, page pagination.Page) ([]Compilation, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Compilation, error)
	Delete(ctx context.Context, id int64) error
	ExistsByTitle(ctx context.Context, title string) (bool, error)
	// ExistsByTitleExcept reports whether another compilation already
	// holds title.
	ExistsByTitleExcept(ctx context.Context, title string, id int64) (bool, error)
}
