package postgres

import (
	"context"
	"fmt"

	"github.com/afisha-events/server/internal/api/pagination"
	"github.com/afisha-events/server/internal/domain/categories"
	"github.com/afisha-events/server/internal/domain/faults"
)

type CategoryRepository struct {
	db querier
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (*categories.Category, error) {
	var category categories.Category
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name)
		VALUES ($1)
		RETURNING id, name`,
		name,
	).Scan(&category.ID, &category.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, faults.Conflictf("category name %q is already taken", name)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return &category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, id int64, name string) (*categories.Category, error) {
	var category categories.Category
	err := r.db.QueryRow(ctx, `
		UPDATE categories SET name = $2 WHERE id = $1
		RETURNING id, name`,
		id, name,
	).Scan(&category.ID, &category.Name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, faults.Conflictf("category name %q is already taken", name)
		}
		return nil, notFound(err, "category %d was not found", id)
	}
	return &category, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*categories.Category, error) {
	var category categories.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, name FROM categories WHERE id = $1`,
		id,
	).Scan(&category.ID, &category.Name)
	if err != nil {
		return nil, notFound(err, "category %d was not found", id)
	}
	return &category, nil
}

func (r *CategoryRepository) List(ctx context.Context, page pagination.Page) ([]categories.Category, error) {
	limit, offset := page.LimitOffset()

	rows, err := r.db.Query(ctx, `
		SELECT id, name FROM categories
		ORDER BY id
		LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	found := []categories.Category{}
	for rows.Next() {
		var category categories.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		found = append(found, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return found, nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return faults.NotFoundf("category %d was not found", id)
	}
	return nil
}

func (r *CategoryRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`,
		name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) ExistsByNameExcept(ctx context.Context, name string, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND id <> $2)`,
		name, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) InUse(ctx context.Context, id int64) (bool, error) {
	var inUse bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM events WHERE category_id = $1)`,
		id,
	).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check category references: %w", err)
	}
	return inUse, nil
}

var _ categories.Repository = (*CategoryRepository)(nil)
