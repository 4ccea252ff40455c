package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/senelec/reclamations-api/internal/domain"
)

// CategoryRepository manages category persistence.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	// GetOrCreate inserts a category unless one with the same name exists.
	GetOrCreate(ctx context.Context, name, description string) (*domain.Category, bool, error)
	Update(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, includeInactive bool) ([]domain.Category, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes the category and every ticket filed under it.
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) (int64, error)
}

type categoryRepository struct {
	pool TxBeginner
	now  Clock
}

// NewCategoryRepository builds the repository.
func NewCategoryRepository(pool TxBeginner, clock Clock) CategoryRepository {
	return &categoryRepository{pool: pool, now: clockOrDefault(clock)}
}

const categoryColumns = `id, name, description, is_active, created_at`

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (name, description, is_active, created_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query,
		category.Name,
		category.Description,
		category.IsActive,
		r.now(),
	).Scan(&category.ID, &category.CreatedAt)
	return mapPgError(err)
}

func (r *categoryRepository) GetOrCreate(ctx context.Context, name, description string) (*domain.Category, bool, error) {
	const query = `
        INSERT INTO categories (name, description, is_active, created_at)
        VALUES ($1,$2,TRUE,$3)
        ON CONFLICT (name) DO NOTHING
        RETURNING ` + categoryColumns
	category, err := scanCategory(r.pool.QueryRow(ctx, query, name, description, r.now()))
	if err == nil {
		return category, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, mapPgError(err)
	}
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	const query = `
        UPDATE categories SET name=$1, description=$2, is_active=$3
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		category.Name,
		category.Description,
		category.IsActive,
		category.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	category, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id=$1`, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return category, nil
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	category, err := scanCategory(r.pool.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE name=$1`, name))
	if err != nil {
		return nil, mapPgError(err)
	}
	return category, nil
}

func (r *categoryRepository) List(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *category)
	}
	return result, rows.Err()
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, mapPgError(err)
	}
	return count, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reclamations WHERE category_id=$1`, id); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	return mapPgError(err)
}

func (r *categoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM reclamations`); err != nil {
			return err
		}
		cmd, err := tx.Exec(ctx, `DELETE FROM categories`)
		if err != nil {
			return err
		}
		deleted = cmd.RowsAffected()
		return nil
	})
	return deleted, mapPgError(err)
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.IsActive,
		&category.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}
