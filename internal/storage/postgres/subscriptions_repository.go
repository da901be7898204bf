package postgres

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/subscriptions"
	"github.com/afisha-events/server/internal/domain/users"
)

type SubscriptionRepository struct {
	db querier
}

func (r *SubscriptionRepository) Create(ctx context.Context, userID, subscriberID int64) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO subscriptions (user_id, subscriber_id)
		VALUES ($1, $2)`,
		userID, subscriberID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return faults.Conflictf("user %d is already subscribed to user %d", subscriberID, userID)
		}
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

func (r *SubscriptionRepository) Delete(ctx context.Context, userID, subscriberID int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM subscriptions WHERE user_id = $1 AND subscriber_id = $2`,
		userID, subscriberID,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.Conflictf("user %d is not subscribed to user %d", subscriberID, userID)
	}
	return nil
}

func (r *SubscriptionRepository) Exists(ctx context.Context, userID, subscriberID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions WHERE user_id = $1 AND subscriber_id = $2
		)`,
		userID, subscriberID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}
	return exists, nil
}

func (r *SubscriptionRepository) ListUsers(ctx context.Context, subscriberID int64, page pagination.Page) ([]users.User, error) {
	return r.list(ctx, `
		SELECT u.id, u.name, u.email
		FROM subscriptions s
		JOIN users u ON u.id = s.user_id
		WHERE s.subscriber_id = $1
		ORDER BY s.created DESC
		LIMIT $2 OFFSET $3`,
		subscriberID, page,
	)
}

func (r *SubscriptionRepository) ListSubscribers(ctx context.Context, userID int64, page pagination.Page) ([]users.User, error) {
	return r.list(ctx, `
		SELECT u.id, u.name, u.email
		FROM subscriptions s
		JOIN users u ON u.id = s.subscriber_id
		WHERE s.user_id = $1
		ORDER BY s.created DESC
		LIMIT $2 OFFSET $3`,
		userID, page,
	)
}

func (r *SubscriptionRepository) list(ctx context.Context, query string, id int64, page pagination.Page) ([]users.User, error) {
	limit, offset := page.LimitOffset()

	rows, err := r.db.Query(ctx, query, id, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	found := []users.User{}
	for rows.Next() {
		var user users.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email); err != nil {
			return nil, fmt.Errorf("scan subscription user: %w", err)
		}
		found = append(found, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}
	return found, nil
}

var _ subscriptions.Repository = (*SubscriptionRepository)(nil)
