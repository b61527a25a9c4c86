package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{pool: pool}
}

const budgetColumns = "id, book_id, name, amount::text, period, start_date, end_date, category_id, created_at, updated_at"

func scanBudget(row pgx.Row) (*domain.Budget, error) {
	var b domain.Budget
	var amount string
	err := row.Scan(&b.ID, &b.BookID, &b.Name, &amount, &b.Period, &b.StartDate,
		&b.EndDate, &b.CategoryID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a budget
func (r *BudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO budgets (book_id, name, amount, period, start_date, end_date, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+budgetColumns,
		budget.BookID, budget.Name, budget.Amount.String(), budget.Period,
		budget.StartDate, budget.EndDate, budget.CategoryID)
	return scanBudget(row)
}

// GetByID retrieves a budget by ID within a book
func (r *BudgetRepository) GetByID(bookID int32, id int32) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+budgetColumns+" FROM budgets WHERE book_id = $1 AND id = $2", bookID, id)
	return scanBudget(row)
}

// GetAllByBook retrieves all budgets for a book
func (r *BudgetRepository) GetAllByBook(bookID int32) ([]*domain.Budget, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+budgetColumns+" FROM budgets WHERE book_id = $1 ORDER BY id", bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

// Update rewrites a budget's fields
func (r *BudgetRepository) Update(bookID int32, id int32, budget *domain.Budget) (*domain.Budget, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE budgets
		SET name = $3, amount = $4, period = $5, start_date = $6, end_date = $7,
		    category_id = $8, updated_at = now()
		WHERE book_id = $1 AND id = $2
		RETURNING `+budgetColumns,
		bookID, id, budget.Name, budget.Amount.String(), budget.Period,
		budget.StartDate, budget.EndDate, budget.CategoryID)
	return scanBudget(row)
}

// Delete removes a budget
func (r *BudgetRepository) Delete(bookID int32, id int32) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM budgets WHERE book_id = $1 AND id = $2", bookID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBudgetNotFound
	}
	return nil
}
