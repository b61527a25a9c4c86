package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// PersonRepository implements domain.PersonRepository using PostgreSQL
type PersonRepository struct {
	pool *pgxpool.Pool
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(pool *pgxpool.Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

const personColumns = "id, book_id, name, type, contact, notes, created_at, updated_at"

func scanPerson(row pgx.Row) (*domain.Person, error) {
	var p domain.Person
	err := row.Scan(&p.ID, &p.BookID, &p.Name, &p.Type, &p.Contact, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPersonNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Create inserts a person
func (r *PersonRepository) Create(person *domain.Person) (*domain.Person, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO persons (book_id, name, type, contact, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+personColumns,
		person.BookID, person.Name, person.Type, person.Contact, person.Notes)
	return scanPerson(row)
}

// GetByID retrieves a person by ID within a book
func (r *PersonRepository) GetByID(bookID int32, id int32) (*domain.Person, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+personColumns+" FROM persons WHERE book_id = $1 AND id = $2", bookID, id)
	return scanPerson(row)
}

// GetAllByBook retrieves all persons for a book
func (r *PersonRepository) GetAllByBook(bookID int32) ([]*domain.Person, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+personColumns+" FROM persons WHERE book_id = $1 ORDER BY name", bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// Update changes a person's fields
func (r *PersonRepository) Update(bookID int32, id int32, name string, personType domain.PersonType, contact, notes *string) (*domain.Person, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE persons SET name = $3, type = $4, contact = $5, notes = $6, updated_at = now()
		WHERE book_id = $1 AND id = $2
		RETURNING `+personColumns, bookID, id, name, personType, contact, notes)
	return scanPerson(row)
}

// Delete removes a person
func (r *PersonRepository) Delete(bookID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM persons WHERE book_id = $1 AND id = $2", bookID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPersonNotFound
	}
	return nil
}
