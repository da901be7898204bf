package server

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/stats"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores hits in the stats schema.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) (*PostgresRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("stats repository: pool is nil")
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) SaveHit(ctx context.Context, hit stats.Hit) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hits (app, uri, ip, created)
		VALUES ($1, $2, $3, $4)`,
		hit.App, hit.URI, hit.IP, hit.Timestamp.Time(),
	)
	if err != nil {
		return fmt.Errorf("save hit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountViews(ctx context.Context, filters Filters) ([]stats.ViewCount, error) {
	counter := "count(ip)"
	if filters.Unique {
		counter = "count(DISTINCT ip)"
	}

	query := fmt.Sprintf(`
		SELECT app, uri, %s AS hits
		FROM hits
		WHERE created BETWEEN $1 AND $2
		  AND (cardinality($3::text[]) = 0 OR uri = ANY($3::text[]))
		GROUP BY app, uri
		ORDER BY hits DESC`, counter)

	uris := filters.URIs
	if uris == nil {
		uris = []string{}
	}

	rows, err := r.pool.Query(ctx, query, filters.Start, filters.End, uris)
	if err != nil {
		return nil, fmt.Errorf("count views: %w", err)
	}
	defer rows.Close()

	counts := []stats.ViewCount{}
	for rows.Next() {
		var count stats.ViewCount
		if err := rows.Scan(&count.App, &count.URI, &count.Hits); err != nil {
			return nil, fmt.Errorf("scan view count: %w", err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate view counts: %w", err)
	}
	return counts, nil
}

var _ Repository = (*PostgresRepository)(nil)
