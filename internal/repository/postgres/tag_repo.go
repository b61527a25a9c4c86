package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// TagRepository implements domain.TagRepository using PostgreSQL
type TagRepository struct {
	pool *pgxpool.Pool
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(pool *pgxpool.Pool) *TagRepository {
	return &TagRepository{pool: pool}
}

const tagColumns = "id, book_id, name, color, created_at, updated_at"

func scanTag(row pgx.Row) (*domain.Tag, error) {
	var t domain.Tag
	err := row.Scan(&t.ID, &t.BookID, &t.Name, &t.Color, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTagNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a tag
func (r *TagRepository) Create(tag *domain.Tag) (*domain.Tag, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO tags (book_id, name, color)
		VALUES ($1, $2, $3)
		RETURNING `+tagColumns,
		tag.BookID, tag.Name, tag.Color)
	return scanTag(row)
}

// GetByID retrieves a tag by ID within a book
func (r *TagRepository) GetByID(bookID int32, id int32) (*domain.Tag, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+tagColumns+" FROM tags WHERE book_id = $1 AND id = $2", bookID, id)
	return scanTag(row)
}

// GetAllByBook retrieves all tags for a book
func (r *TagRepository) GetAllByBook(bookID int32) ([]*domain.Tag, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+tagColumns+" FROM tags WHERE book_id = $1 ORDER BY name", bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Update changes a tag's name and color
func (r *TagRepository) Update(bookID int32, id int32, name, color string) (*domain.Tag, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE tags SET name = $3, color = $4, updated_at = now()
		WHERE book_id = $1 AND id = $2
		RETURNING `+tagColumns, bookID, id, name, color)
	return scanTag(row)
}

// Delete removes a tag
func (r *TagRepository) Delete(bookID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM tags WHERE book_id = $1 AND id = $2", bookID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTagNotFound
	}
	return nil
}
