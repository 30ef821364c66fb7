package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Arooshimran/doma-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using SQLite.
// It shares the connection (and migrations) of the vendor repository.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository wraps an already-migrated database connection.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

const categoryColumns = `id, name, slug, description, active, sort_order, created_at, updated_at`

func (r *CategoryRepository) Create(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Slug, c.Description, c.Active, c.SortOrder,
		c.CreatedAt.Format(timeFormat), c.UpdatedAt.Format(timeFormat),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return &domain.SlugConflictError{Slug: c.Slug}
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (domain.Category, error) {
	return r.scanCategory(r.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ?`, name,
	))
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		c, err := r.scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *CategoryRepository) scanCategory(row scanner) (domain.Category, error) {
	var c domain.Category
	var createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Active, &c.SortOrder, &createdAt, &updatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Category{}, domain.ErrCategoryNotFound
		}
		return domain.Category{}, fmt.Errorf("scanning category: %w", err)
	}

	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)

	return c, nil
}
