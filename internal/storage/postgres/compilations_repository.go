package postgres

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/compilations"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/afisha-events/server/internal/domain/faults"
)

type CompilationRepository struct {
	parent *Repository
}

func (r *CompilationRepository) db() querier {
	return r.parent.db()
}

func (r *CompilationRepository) Create(ctx context.Context, params compilations.CreateParams) (*compilations.Compilation, error) {
	var id int64
	err := r.parent.inTx(ctx, func(q querier) error {
		err := q.QueryRow(ctx, `
			INSERT INTO compilations (title, pinned)
			VALUES ($1, $2)
			RETURNING id`,
			params.Title, params.Pinned,
		).Scan(&id)
		if err != nil {
			if isUniqueViolation(err) {
				return faults.Conflictf("compilation title %q is already taken", params.Title)
			}
			return fmt.Errorf("create compilation: %w", err)
		}
		return insertMembers(ctx, q, id, params.EventIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CompilationRepository) GetByID(ctx context.Context, id int64) (*compilations.Compilation, error) {
	var compilation compilations.Compilation
	err := r.db().QueryRow(ctx, `
		SELECT id, title, pinned FROM compilations WHERE id = $1`,
		id,
	).Scan(&compilation.ID, &compilation.Title, &compilation.Pinned)
	if err != nil {
		return nil, notFound(err, "compilation %d was not found", id)
	}

	members, err := r.loadMembers(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	compilation.Events = members[id]
	return &compilation, nil
}

func (r *CompilationRepository) List(ctx context.Context, pinned *bool, page pagination.Page) ([]compilations.Compilation, error) {
	limit, offset := page.LimitOffset()

	rows, err := r.db().Query(ctx, `
		SELECT id, title, pinned FROM compilations
		WHERE ($1::boolean IS NULL OR pinned = $1)
		ORDER BY id
		LIMIT $2 OFFSET $3`,
		pinned, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list compilations: %w", err)
	}
	defer rows.Close()

	found := []compilations.Compilation{}
	ids := []int64{}
	for rows.Next() {
		var compilation compilations.Compilation
		if err := rows.Scan(&compilation.ID, &compilation.Title, &compilation.Pinned); err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		found = append(found, compilation)
		ids = append(ids, compilation.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}

	members, err := r.loadMembers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range found {
		found[i].Events = members[found[i].ID]
	}
	return found, nil
}

func (r *CompilationRepository) Update(ctx context.Context, id int64, params compilations.UpdateParams) (*compilations.Compilation, error) {
	err := r.parent.inTx(ctx, func(q querier) error {
		tag, err := q.Exec(ctx, `
			UPDATE compilations SET
				title  = COALESCE($2, title),
				pinned = COALESCE($3, pinned)
			WHERE id = $1`,
			id, params.Title, params.Pinned,
		)
		if err != nil {
			if isUniqueViolation(err) && params.Title != nil {
				return faults.Conflictf("compilation title %q is already taken", *params.Title)
			}
			return fmt.Errorf("update compilation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return faults.NotFoundf("compilation %d was not found", id)
		}

		if params.EventIDs == nil {
			return nil
		}
		if _, err := q.Exec(ctx, `DELETE FROM compilation_events WHERE compilation_id = $1`, id); err != nil {
			return fmt.Errorf("clear compilation members: %w", err)
		}
		return insertMembers(ctx, q, id, *params.EventIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *CompilationRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db().Exec(ctx, `DELETE FROM compilations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete compilation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFoundf("compilation %d was not found", id)
	}
	return nil
}

func (r *CompilationRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db().QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM compilations WHERE title = $1)`,
		title,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check compilation title: %w", err)
	}
	return exists, nil
}

func (r *CompilationRepository) ExistsByTitleExcept(ctx context.Context, title string, id int64) (bool, error) {
	var exists bool
	err := r.db().QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM compilations WHERE title = $1 AND id <> $2)`,
		title, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check compilation title: %w", err)
	}
	return exists, nil
}

func insertMembers(ctx context.Context, q querier, id int64, eventIDs []int64) error {
	for _, eventID := range eventIDs {
		_, err := q.Exec(ctx, `
			INSERT INTO compilation_events (compilation_id, event_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			id, eventID,
		)
		if err != nil {
			return fmt.Errorf("add compilation member: %w", err)
		}
	}
	return nil
}

// loadMembers fetches the member events of the listed compilations in
// one query.
func (r *CompilationRepository) loadMembers(ctx context.Context, ids []int64) (map[int64][]events.Event, error) {
	if len(ids) == 0 {
		return map[int64][]events.Event{}, nil
	}

	rows, err := r.db().Query(ctx, `
		SELECT ce.compilation_id,
		       e.id, e.annotation, e.description, e.title,
		       c.id, c.name,
		       u.id, u.name, u.email,
		       e.lat, e.lon,
		       e.event_date, e.created_on, e.published_on,
		       e.paid, e.participant_limit, e.request_moderation,
		       e.confirmed_requests, e.state
		FROM compilation_events ce
		JOIN events e ON e.id = ce.event_id
		JOIN categories c ON c.id = e.category_id
		JOIN users u ON u.id = e.initiator_id
		WHERE ce.compilation_id = ANY($1::bigint[])
		ORDER BY e.id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("load compilation members: %w", err)
	}
	defer rows.Close()

	members := map[int64][]events.Event{}
	for rows.Next() {
		var compilationID int64
		var event events.Event
		var state string
		err := rows.Scan(
			&compilationID,
			&event.ID, &event.Annotation, &event.Description, &event.Title,
			&event.Category.ID, &event.Category.Name,
			&event.Initiator.ID, &event.Initiator.Name, &event.Initiator.Email,
			&event.Location.Lat, &event.Location.Lon,
			&event.EventDate, &event.CreatedOn, &event.PublishedOn,
			&event.Paid, &event.ParticipantLimit, &event.RequestModeration,
			&event.ConfirmedRequests, &state,
		)
		if err != nil {
			return nil, fmt.Errorf("scan compilation member: %w", err)
		}
		event.State = events.State(state)
		members[compilationID] = append(members[compilationID], event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilation members: %w", err)
	}
	return members, nil
}

var _ compilations.Repository = (*CompilationRepository)(nil)
