package subscriptions

import (
	"context"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/users"
)

type Repository interface {
	Create(ctx context.Context, userID, subscriberID int64) error
	Delete(ctx context.Context, userID, subscriberID int64) error
	Exists(ctx context.Context, userID, subscriberID int64) (bool, error)
	// ListUsers returns the users subscriberID follows, newest first.
	ListUsers(ctx context.Context, subscriberID int64, page pagination.Page) ([]users.User, error)
	// ListSubscribers returns the followers of userID, newest first.
	ListSubscribers(ctx context.Context, userID int64, page pagination.Page) ([]users.User, error)
}
