package postgres

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/afisha-events/server/internal/domain/faults"
	"github.com/afisha-events/server/internal/domain/requests"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

// requestTables is an in-memory stand-in for the requests and events
// tables. It is wired in as the repository's transaction, so the SQL
// that keeps confirmed_requests in sync with the CONFIRMED rows runs
// against it on every mutation.
type requestTables struct {
	rows      []storedRequest
	nextID    int64
	limit     int32
	confirmed int32
}

type storedRequest struct {
	id          int64
	created     time.Time
	eventID     int64
	requesterID int64
	status      string
}

func (s storedRequest) values() []any {
	return []any{s.id, s.created, s.eventID, s.requesterID, s.status}
}

type scanRow struct {
	err    error
	values []any
}

func (r scanRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = r.values[i].(int64)
		case *int32:
			*v = r.values[i].(int32)
		case *time.Time:
			*v = r.values[i].(time.Time)
		case *string:
			*v = r.values[i].(string)
		}
	}
	return nil
}

type scanRows struct {
	rows [][]any
	idx  int
}

func (r *scanRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *scanRows) Scan(dest ...any) error {
	return scanRow{values: r.rows[r.idx-1]}.Scan(dest...)
}

func (r *scanRows) Close()                                       {}
func (r *scanRows) Err() error                                   { return nil }
func (r *scanRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *scanRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *scanRows) Values() ([]any, error)                       { return r.rows[r.idx-1], nil }
func (r *scanRows) RawValues() [][]byte                          { return nil }
func (r *scanRows) Conn() *pgx.Conn                              { return nil }

func (s *requestTables) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	switch {
	case strings.Contains(sql, "UPDATE events SET confirmed_requests"):
		var n int32
		for _, row := range s.rows {
			if row.eventID == args[0].(int64) && row.status == "CONFIRMED" {
				n++
			}
		}
		s.confirmed = n
	case strings.Contains(sql, "UPDATE requests SET status"):
		ids := args[1].([]int64)
		for i := range s.rows {
			if s.rows[i].eventID == args[0].(int64) && slices.Contains(ids, s.rows[i].id) {
				s.rows[i].status = args[2].(string)
			}
		}
	}
	return pgconn.CommandTag{}, nil
}

func (s *requestTables) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	ids := args[1].([]int64)
	matched := [][]any{}
	for _, row := range s.rows {
		if row.eventID == args[0].(int64) && slices.Contains(ids, row.id) {
			matched = append(matched, row.values())
		}
	}
	return &scanRows{rows: matched}, nil
}

func (s *requestTables) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "INSERT INTO requests"):
		s.nextID++
		row := storedRequest{
			id:          s.nextID,
			created:     time.Now(),
			eventID:     args[0].(int64),
			requesterID: args[1].(int64),
			status:      args[2].(string),
		}
		s.rows = append(s.rows, row)
		return scanRow{values: row.values()}
	case strings.Contains(sql, "UPDATE requests SET status = 'CANCELED'"):
		for i := range s.rows {
			if s.rows[i].id == args[0].(int64) {
				s.rows[i].status = "CANCELED"
				return scanRow{values: s.rows[i].values()}
			}
		}
		return scanRow{err: pgx.ErrNoRows}
	case strings.Contains(sql, "SELECT participant_limit"):
		return scanRow{values: []any{s.limit, s.confirmed}}
	default:
		for _, row := range s.rows {
			if row.id == args[0].(int64) {
				return scanRow{values: row.values()}
			}
		}
		return scanRow{err: pgx.ErrNoRows}
	}
}

func (s *requestTables) Begin(ctx context.Context) (pgx.Tx, error) { return s, nil }
func (s *requestTables) Commit(ctx context.Context) error          { return nil }
func (s *requestTables) Rollback(ctx context.Context) error        { return nil }

func (s *requestTables) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (s *requestTables) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (s *requestTables) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }

func (s *requestTables) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (s *requestTables) Conn() *pgx.Conn { return nil }

var _ pgx.Tx = (*requestTables)(nil)

func newRequestStore(limit int32) (requests.Repository, *requestTables) {
	tables := &requestTables{limit: limit}
	repo := &Repository{tx: tables}
	return repo.Requests(), tables
}

func TestConfirmedCounterTracksRequestLifecycle(t *testing.T) {
	store, tables := newRequestStore(5)
	ctx := context.Background()

	first, err := store.Create(ctx, requests.CreateParams{EventID: 10, RequesterID: 2, Status: requests.StatusConfirmed})
	require.NoError(t, err)
	require.Equal(t, int32(1), tables.confirmed)

	second, err := store.Create(ctx, requests.CreateParams{EventID: 10, RequesterID: 3, Status: requests.StatusPending})
	require.NoError(t, err)
	require.Equal(t, int32(1), tables.confirmed)

	updated, err := store.UpdateStatuses(ctx, 10, []int64{second.ID}, requests.StatusConfirmed)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.Equal(t, requests.StatusConfirmed, updated[0].Status)
	require.Equal(t, int32(2), tables.confirmed)

	canceled, err := store.Cancel(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, requests.StatusCanceled, canceled.Status)
	require.Equal(t, int32(1), tables.confirmed)

	third, err := store.Create(ctx, requests.CreateParams{EventID: 10, RequesterID: 4, Status: requests.StatusPending})
	require.NoError(t, err)

	_, err = store.UpdateStatuses(ctx, 10, []int64{third.ID}, requests.StatusRejected)
	require.NoError(t, err)
	require.Equal(t, int32(1), tables.confirmed)
}

func TestUpdateStatusesRefusesOverCapacity(t *testing.T) {
	store, tables := newRequestStore(1)
	ctx := context.Background()

	_, err := store.Create(ctx, requests.CreateParams{EventID: 10, RequesterID: 2, Status: requests.StatusConfirmed})
	require.NoError(t, err)

	pending, err := store.Create(ctx, requests.CreateParams{EventID: 10, RequesterID: 3, Status: requests.StatusPending})
	require.NoError(t, err)

	_, err = store.UpdateStatuses(ctx, 10, []int64{pending.ID}, requests.StatusConfirmed)
	require.True(t, faults.IsConflict(err))
	require.Equal(t, int32(1), tables.confirmed)
}

func TestUpdateStatusesRefusesNonPending(t *testing.T) {
	store, _ := newRequestStore(5)
	ctx := context.Background()

	confirmed, err := store.Create(ctx, requests.CreateParams{EventID: 10, RequesterID: 2, Status: requests.StatusConfirmed})
	require.NoError(t, err)

	_, err = store.UpdateStatuses(ctx, 10, []int64{confirmed.ID}, requests.StatusRejected)
	require.True(t, faults.IsConflict(err))
}
