package postgres

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/requests"
	"github.com/jackc/pgx/v5"
)

type RequestRepository struct {
	parent *Repository
}

func (r *RequestRepository) db() querier {
	return r.parent.db()
}

const requestColumns = `id, created, event_id, requester_id, status`

func scanRequest(row pgx.Row) (*requests.Request, error) {
	var request requests.Request
	var status string
	err := row.Scan(&request.ID, &request.Created, &request.EventID, &request.RequesterID, &status)
	if err != nil {
		return nil, err
	}
	request.Status = requests.Status(status)
	return &request, nil
}

// refreshConfirmed recomputes the event's confirmed counter from the
// requests table inside the caller's transaction.
func refreshConfirmed(ctx context.Context, q querier, eventID int64) error {
	_, err := q.Exec(ctx, `
		UPDATE events SET confirmed_requests = (
			SELECT count(*) FROM requests
			WHERE event_id = $1 AND status = 'CONFIRMED'
		)
		WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("refresh confirmed requests: %w", err)
	}
	return nil
}

func (r *RequestRepository) Create(ctx context.Context, params requests.CreateParams) (*requests.Request, error) {
	var created *requests.Request
	err := r.parent.inTx(ctx, func(q querier) error {
		request, err := scanRequest(q.QueryRow(ctx, `
			INSERT INTO requests (event_id, requester_id, status)
			VALUES ($1, $2, $3)
			RETURNING `+requestColumns,
			params.EventID, params.RequesterID, string(params.Status),
		))
		if err != nil {
			if isUniqueViolation(err) {
				return faults.Conflictf("user %d already requested participation in event %d",
					params.RequesterID, params.EventID)
			}
			return fmt.Errorf("create request: %w", err)
		}
		created = request
		return refreshConfirmed(ctx, q, params.EventID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*requests.Request, error) {
	request, err := scanRequest(r.db().QueryRow(ctx, `
		SELECT `+requestColumns+` FROM requests WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, notFound(err, "request %d was not found", id)
	}
	return request, nil
}

func (r *RequestRepository) ListByRequester(ctx context.Context, requesterID int64) ([]requests.Request, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE requester_id = $1
		ORDER BY id`,
		requesterID,
	)
}

func (r *RequestRepository) ListByEvent(ctx context.Context, eventID int64) ([]requests.Request, error) {
	return r.list(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE event_id = $1
		ORDER BY id`,
		eventID,
	)
}

func (r *RequestRepository) HasActive(ctx context.Context, eventID, requesterID int64) (bool, error) {
	var active bool
	err := r.db().QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM requests
			WHERE event_id = $1 AND requester_id = $2 AND status <> 'CANCELED'
		)`,
		eventID, requesterID,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("check active request: %w", err)
	}
	return active, nil
}

func (r *RequestRepository) Cancel(ctx context.Context, id int64) (*requests.Request, error) {
	var canceled *requests.Request
	err := r.parent.inTx(ctx, func(q querier) error {
		request, err := scanRequest(q.QueryRow(ctx, `
			UPDATE requests SET status = 'CANCELED'
			WHERE id = $1
			RETURNING `+requestColumns,
			id,
		))
		if err != nil {
			return notFound(err, "request %d was not found", id)
		}
		canceled = request
		return refreshConfirmed(ctx, q, request.EventID)
	})
	if err != nil {
		return nil, err
	}
	return canceled, nil
}

func (r *RequestRepository) UpdateStatuses(ctx context.Context, eventID int64, ids []int64, status requests.Status) ([]requests.Request, error) {
	var updated []requests.Request
	err := r.parent.inTx(ctx, func(q querier) error {
		rows, err := q.Query(ctx, `
			SELECT `+requestColumns+` FROM requests
			WHERE event_id = $1 AND id = ANY($2::bigint[])
			ORDER BY id
			FOR UPDATE`,
			eventID, ids,
		)
		if err != nil {
			return fmt.Errorf("lock requests: %w", err)
		}
		pending, err := collectRequests(rows)
		if err != nil {
			return err
		}

		for _, request := range pending {
			if request.Status != requests.StatusPending {
				return faults.Conflictf("request %d is not pending", request.ID)
			}
		}

		if status == requests.StatusConfirmed {
			var limit, confirmed int32
			err := q.QueryRow(ctx, `
				SELECT participant_limit, confirmed_requests
				FROM events WHERE id = $1
				FOR UPDATE`,
				eventID,
			).Scan(&limit, &confirmed)
			if err != nil {
				return notFound(err, "event %d was not found", eventID)
			}
			if limit > 0 && confirmed+int32(len(pending)) > limit {
				return faults.Conflictf("the participant limit of event %d has been reached", eventID)
			}
		}

		_, err = q.Exec(ctx, `
			UPDATE requests SET status = $3
			WHERE event_id = $1 AND id = ANY($2::bigint[])`,
			eventID, ids, string(status),
		)
		if err != nil {
			return fmt.Errorf("update request statuses: %w", err)
		}

		for i := range pending {
			pending[i].Status = status
		}
		updated = pending
		return refreshConfirmed(ctx, q, eventID)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *RequestRepository) list(ctx context.Context, query string, arg int64) ([]requests.Request, error) {
	rows, err := r.db().Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]requests.Request, error) {
	defer rows.Close()

	found := []requests.Request{}
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		found = append(found, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return found, nil
}

var _ requests.Repository = (*RequestRepository)(nil)
