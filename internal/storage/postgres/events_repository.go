package postgres

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/events"
	"github.com/jackc/pgx/v5"
)

type EventRepository struct {
	db querier
}

const eventSelect = `
	SELECT e.id, e.annotation, e.description, e.title,
	       c.id, c.name,
	       u.id, u.name, u.email,
	       e.lat, e.lon,
	       e.event_date, e.created_on, e.published_on,
	       e.paid, e.participant_limit, e.request_moderation,
	       e.confirmed_requests, e.state
	FROM events e
	JOIN categories c ON c.id = e.category_id
	JOIN users u ON u.id = e.initiator_id`

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	var state string
	err := row.Scan(
		&event.ID, &event.Annotation, &event.Description, &event.Title,
		&event.Category.ID, &event.Category.Name,
		&event.Initiator.ID, &event.Initiator.Name, &event.Initiator.Email,
		&event.Location.Lat, &event.Location.Lon,
		&event.EventDate, &event.CreatedOn, &event.PublishedOn,
		&event.Paid, &event.ParticipantLimit, &event.RequestModeration,
		&event.ConfirmedRequests, &state,
	)
	if err != nil {
		return nil, err
	}
	event.State = events.State(state)
	return &event, nil
}

func (r *EventRepository) collect(rows pgx.Rows) ([]events.Event, error) {
	defer rows.Close()

	found := []events.Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		found = append(found, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return found, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO events (annotation, description, title, category_id, initiator_id,
		                    lat, lon, event_date, paid, participant_limit, request_moderation, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 'PENDING')
		RETURNING id`,
		params.Annotation, params.Description, params.Title, params.CategoryID, params.InitiatorID,
		params.Location.Lat, params.Location.Lon, params.EventDate,
		params.Paid, params.ParticipantLimit, params.RequestModeration,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*events.Event, error) {
	event, err := scanEvent(r.db.QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if err != nil {
		return nil, notFound(err, "event %d was not found", id)
	}
	return event, nil
}

func (r *EventRepository) ListByInitiator(ctx context.Context, initiatorID int64, page pagination.Page) ([]events.Event, error) {
	limit, offset := page.LimitOffset()

	rows, err := r.db.Query(ctx, eventSelect+`
		WHERE e.initiator_id = $1
		ORDER BY e.id
		LIMIT $2 OFFSET $3`,
		initiatorID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by initiator: %w", err)
	}
	return r.collect(rows)
}

func (r *EventRepository) ListByIDs(ctx context.Context, ids []int64) ([]events.Event, error) {
	rows, err := r.db.Query(ctx, eventSelect+`
		WHERE e.id = ANY($1::bigint[])
		ORDER BY e.id`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("list events by ids: %w", err)
	}
	return r.collect(rows)
}

func (r *EventRepository) Update(ctx context.Context, id int64, params events.UpdateParams) (*events.Event, error) {
	var lat, lon *float64
	if params.Location != nil {
		lat, lon = &params.Location.Lat, &params.Location.Lon
	}
	var state *string
	if params.State != nil {
		value := string(*params.State)
		state = &value
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE events SET
			annotation         = COALESCE($2, annotation),
			description        = COALESCE($3, description),
			title              = COALESCE($4, title),
			category_id        = COALESCE($5, category_id),
			lat                = COALESCE($6, lat),
			lon                = COALESCE($7, lon),
			event_date         = COALESCE($8, event_date),
			paid               = COALESCE($9, paid),
			participant_limit  = COALESCE($10, participant_limit),
			request_moderation = COALESCE($11, request_moderation),
			state              = COALESCE($12, state),
			published_on       = COALESCE($13, published_on)
		WHERE id = $1`,
		id,
		params.Annotation, params.Description, params.Title, params.CategoryID,
		lat, lon, params.EventDate,
		params.Paid, params.ParticipantLimit, params.RequestModeration,
		state, params.PublishedOn,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound(pgx.ErrNoRows, "event %d was not found", id)
	}
	return r.GetByID(ctx, id)
}

func (r *EventRepository) Search(ctx context.Context, filters events.PublicFilters, page pagination.Page) ([]events.Event, error) {
	limit, offset := page.LimitOffset()

	rows, err := r.db.Query(ctx, eventSelect+`
		WHERE e.state = 'PUBLISHED'
		  AND ($1 = '' OR e.annotation ILIKE '%' || $1 || '%' OR e.description ILIKE '%' || $1 || '%')
		  AND (cardinality($2::bigint[]) = 0 OR e.category_id = ANY($2::bigint[]))
		  AND ($3::boolean IS NULL OR e.paid = $3)
		  AND ($4::timestamp IS NULL OR e.event_date >= $4)
		  AND ($5::timestamp IS NULL OR e.event_date <= $5)
		  AND ($4::timestamp IS NOT NULL OR $5::timestamp IS NOT NULL OR e.event_date > now())
		  AND (NOT $6::boolean OR e.participant_limit = 0 OR e.confirmed_requests < e.participant_limit)
		ORDER BY e.event_date
		LIMIT $7 OFFSET $8`,
		filters.Text, int64Array(filters.Categories), filters.Paid,
		filters.RangeStart, filters.RangeEnd, filters.OnlyAvailable,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return r.collect(rows)
}

func (r *EventRepository) SearchAdmin(ctx context.Context, filters events.AdminFilters, page pagination.Page) ([]events.Event, error) {
	limit, offset := page.LimitOffset()

	states := make([]string, len(filters.States))
	for i, state := range filters.States {
		states[i] = string(state)
	}

	rows, err := r.db.Query(ctx, eventSelect+`
		WHERE (cardinality($1::bigint[]) = 0 OR e.initiator_id = ANY($1::bigint[]))
		  AND (cardinality($2::text[]) = 0 OR e.state = ANY($2::text[]))
		  AND (cardinality($3::bigint[]) = 0 OR e.category_id = ANY($3::bigint[]))
		  AND ($4::timestamp IS NULL OR e.event_date >= $4)
		  AND ($5::timestamp IS NULL OR e.event_date <= $5)
		ORDER BY e.id
		LIMIT $6 OFFSET $7`,
		int64Array(filters.Users), states, int64Array(filters.Categories),
		filters.RangeStart, filters.RangeEnd,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("search events for admin: %w", err)
	}
	return r.collect(rows)
}

func int64Array(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}

var _ events.Repository = (*EventRepository)(nil)
