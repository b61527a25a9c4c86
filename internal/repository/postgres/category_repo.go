package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// CategoryRepository implements domain.CategoryRepository using PostgreSQL
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

const categoryColumns = "id, book_id, name, type, created_at, updated_at"

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.BookID, &c.Name, &c.Type, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a category
func (r *CategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO categories (book_id, name, type)
		VALUES ($1, $2, $3)
		RETURNING `+categoryColumns,
		category.BookID, category.Name, category.Type)
	return scanCategory(row)
}

// GetByID retrieves a category by ID within a book
func (r *CategoryRepository) GetByID(bookID int32, id int32) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+categoryColumns+" FROM categories WHERE book_id = $1 AND id = $2", bookID, id)
	return scanCategory(row)
}

// GetAllByBook retrieves all categories for a book
func (r *CategoryRepository) GetAllByBook(bookID int32) ([]*domain.Category, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+categoryColumns+" FROM categories WHERE book_id = $1 ORDER BY type, name", bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// Update renames a category; its type is immutable
func (r *CategoryRepository) Update(bookID int32, id int32, name string) (*domain.Category, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE categories SET name = $3, updated_at = now()
		WHERE book_id = $1 AND id = $2
		RETURNING `+categoryColumns, bookID, id, name)
	return scanCategory(row)
}

// Delete removes a category
func (r *CategoryRepository) Delete(bookID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM categories WHERE book_id = $1 AND id = $2", bookID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCategoryNotFound
	}
	return nil
}
