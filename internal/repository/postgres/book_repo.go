package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// BookRepository implements domain.BookRepository using PostgreSQL
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository creates a new BookRepository
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

const bookColumns = "id, name, description, currency_codes, default_currency, owner_id, timezone, created_at, updated_at"

func scanBook(row pgx.Row) (*domain.Book, error) {
	var b domain.Book
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.CurrencyCodes, &b.DefaultCurrency,
		&b.OwnerID, &b.Timezone, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a book and its creator membership atomically
func (r *BookRepository) Create(book *domain.Book, creator uuid.UUID) (*domain.Book, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO books (name, description, currency_codes, default_currency, owner_id, timezone)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+bookColumns,
		book.Name, book.Description, book.CurrencyCodes, book.DefaultCurrency, creator, book.Timezone)
	created, err := scanBook(row)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO book_members (book_id, user_id, permission)
		VALUES ($1, $2, $3)`,
		created.ID, creator, domain.PermissionCreator)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a book by its ID
func (r *BookRepository) GetByID(id int32) (*domain.Book, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+bookColumns+" FROM books WHERE id = $1", id)
	return scanBook(row)
}

// GetAllByUser retrieves every book the user is a member of
func (r *BookRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Book, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT b.id, b.name, b.description, b.currency_codes, b.default_currency,
		       b.owner_id, b.timezone, b.created_at, b.updated_at
		FROM books b
		JOIN book_members m ON m.book_id = b.id
		WHERE m.user_id = $1
		ORDER BY b.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// Update changes a book's name, description, and currency configuration
func (r *BookRepository) Update(id int32, name string, description *string, currencyCodes []string, defaultCurrency string) (*domain.Book, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE books
		SET name = $2, description = $3, currency_codes = $4, default_currency = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+bookColumns,
		id, name, description, currencyCodes, defaultCurrency)
	return scanBook(row)
}

// Delete removes a book and its memberships
func (r *BookRepository) Delete(id int32) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM book_members WHERE book_id = $1", id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "DELETE FROM books WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBookNotFound
	}
	return tx.Commit(ctx)
}

// CountAccounts returns the number of accounts under a book
func (r *BookRepository) CountAccounts(id int32) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM accounts WHERE book_id = $1", id).Scan(&count)
	return count, err
}

// CurrencyUsedByAccount reports whether any account in the book uses the code
func (r *BookRepository) CurrencyUsedByAccount(id int32, code string) (bool, error) {
	var used bool
	err := r.pool.QueryRow(context.Background(),
		"SELECT EXISTS (SELECT 1 FROM accounts WHERE book_id = $1 AND currency = $2)",
		id, code).Scan(&used)
	return used, err
}
