// Package storage groups the per-domain repositories behind one interface
// so transactions can span domains.
package storage

import (
	"context"

	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/compilations"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/requests"
	"github.com/afisha-events/server/internal/domain/subscriptions"
	"github.com/afisha-events/server/internal/domain/users"
)

type Repository interface {
	Users() users.Repository
	Categories() categories.Repository
	Events() events.Repository
	Requests() requests.Repository
	Compilations() compilations.Repository
	Subscriptions() subscriptions.Repository

	// WithTx runs fn against a Repository whose operations share one
	// transaction. Returning an error rolls the transaction back.
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
}
