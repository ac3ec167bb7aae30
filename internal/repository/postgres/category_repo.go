package postgres

import (
	"context"
	"errors"

	"github.com/achacynthia/expensetrack-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = `id, user_id, name, parent_id, created_at, updated_at, deleted_at`

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.ParentID, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create creates a new category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`INSERT INTO categories (user_id, name, parent_id)
		 VALUES ($1, $2, $3)
		 RETURNING `+categoryColumns,
		uuidToPg(category.UserID), category.Name, category.ParentID)
	return scanCategory(row)
}

// GetByID retrieves a live category by ID within a user's data
func (r *CategoryRepository) GetByID(userID uuid.UUID, id int32) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL`,
		uuidToPg(userID), id)
	return scanCategory(row)
}

// GetByName retrieves a live category by exact name. Used to resolve
// legacy free-text category references.
func (r *CategoryRepository) GetByName(userID uuid.UUID, name string) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE user_id = $1 AND name = $2 AND deleted_at IS NULL
		 ORDER BY parent_id NULLS FIRST
		 LIMIT 1`,
		uuidToPg(userID), name)
	return scanCategory(row)
}

// GetAllByUser retrieves all live categories for a user, parents first
func (r *CategoryRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Category, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx,
		`SELECT `+categoryColumns+`
		 FROM categories
		 WHERE user_id = $1 AND deleted_at IS NULL
		 ORDER BY parent_id NULLS FIRST, name`,
		uuidToPg(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// Update updates a category's name and parent
func (r *CategoryRepository) Update(userID uuid.UUID, id int32, name string, parentID *int32) (*domain.Category, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx,
		`UPDATE categories
		 SET name = $3, parent_id = $4, updated_at = now()
		 WHERE user_id = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING `+categoryColumns,
		uuidToPg(userID), id, name, parentID)
	return scanCategory(row)
}

// SoftDelete marks a category (and its subcategories) as deleted
func (r *CategoryRepository) SoftDelete(userID uuid.UUID, id int32) error {
	ctx := context.Background()
	tag, err := r.pool.Exec(ctx,
		`UPDATE categories
		 SET deleted_at = now(), updated_at = now()
		 WHERE user_id = $1 AND (id = $2 OR parent_id = $2) AND deleted_at IS NULL`,
		uuidToPg(userID), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}

// HasTransactions reports whether any live transaction references the category
func (r *CategoryRepository) HasTransactions(userID uuid.UUID, id int32) (bool, int64, error) {
	ctx := context.Background()
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*)
		 FROM transactions
		 WHERE user_id = $1 AND (category_id = $2 OR subcategory_id = $2) AND deleted_at IS NULL`,
		uuidToPg(userID), id).Scan(&count)
	if err != nil {
		return false, 0, err
	}
	return count > 0, count, nil
}
