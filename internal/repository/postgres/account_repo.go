package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, book_id, name, currency, initial_balance::text,
	total_income::text, total_expense::text, has_transactions, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	var initial, income, expense string
	err := row.Scan(&a.ID, &a.BookID, &a.Name, &a.Currency, &initial,
		&income, &expense, &a.HasTransactions, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	if a.InitialBalance, err = decimal.NewFromString(initial); err != nil {
		return nil, err
	}
	if a.TotalIncome, err = decimal.NewFromString(income); err != nil {
		return nil, err
	}
	if a.TotalExpense, err = decimal.NewFromString(expense); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an account with zeroed aggregates
func (r *AccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO accounts (book_id, name, currency, initial_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING `+accountColumns,
		account.BookID, account.Name, account.Currency, account.InitialBalance.String())
	return scanAccount(row)
}

// GetByID retrieves an account by its ID within a book
func (r *AccountRepository) GetByID(bookID int32, id int32) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+accountColumns+" FROM accounts WHERE book_id = $1 AND id = $2", bookID, id)
	return scanAccount(row)
}

// GetAllByBook retrieves all accounts for a book
func (r *AccountRepository) GetAllByBook(bookID int32) ([]*domain.Account, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+accountColumns+" FROM accounts WHERE book_id = $1 ORDER BY id", bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// Update changes an account's name, currency, and initial balance. Currency
// immutability once has_transactions is set is enforced by the service layer.
func (r *AccountRepository) Update(bookID int32, id int32, name string, currency string, initialBalance decimal.Decimal) (*domain.Account, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE accounts
		SET name = $3, currency = $4, initial_balance = $5, updated_at = now()
		WHERE book_id = $1 AND id = $2
		RETURNING `+accountColumns,
		bookID, id, name, currency, initialBalance.String())
	return scanAccount(row)
}

// Delete permanently removes an account
func (r *AccountRepository) Delete(bookID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM accounts WHERE book_id = $1 AND id = $2", bookID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
