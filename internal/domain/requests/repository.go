package requests

import (
	"context"
	"time"

	"github.com/afisha-events/server/internal/domain/faults"
)

// Status is the lifecycle state of a participation request.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusRejected  Status = "REJECTED"
	StatusCanceled  Status = "CANCELED"
)

func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCanceled:
		return Status(value), nil
	default:
		return "", faults.Invalidf("unknown request status %q", value)
	}
}

type Request struct {
	ID          int64
	Created     time.Time
	EventID     int64
	RequesterID int64
	Status      Status
}

type CreateParams struct {
	EventID     int64
	RequesterID int64
	Status      Status
}

type Repository interface {
	// Create inserts the request and refreshes the event's confirmed
	// counter in the same transaction.
	Create(ctx context.Context, params CreateParams) (*Request, error)
	GetByID(ctx context.Context, id int64) (*Request, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]Request, error)
	ListByEvent(ctx context.Context, eventID int64) ([]Request, error)
	// HasActive reports whether the requester holds a non-canceled
	// request for the event.
	HasActive(ctx context.Context, eventID, requesterID int64) (bool, error)
	// Cancel marks the request CANCELED and refreshes the event's
	// confirmed counter in the same transaction.
	Cancel(ctx context.Context, id int64) (*Request, error)
	// UpdateStatuses moves the listed pending requests of the event to
	// status, guarding capacity and refreshing the confirmed counter in
	// one transaction.
	UpdateStatuses(ctx context.Context, eventID int64, ids []int64, status Status) ([]Request, error)
}
