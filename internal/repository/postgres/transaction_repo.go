package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using
// PostgreSQL. Every mutation runs the transaction row write and the account
// aggregate adjustment in one database transaction; the aggregate UPDATE
// takes the account row lock, which serializes concurrent writers per
// account and keeps the aggregates linearizable.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, book_id, account_id, category_id, type, amount::text,
	transaction_date, description, person_ids, tag_ids, transfer_pair_id, receipt_key,
	created_at, updated_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	var amount string
	err := row.Scan(&t.ID, &t.BookID, &t.AccountID, &t.CategoryID, &t.Type, &amount,
		&t.TransactionDate, &t.Description, &t.PersonIDs, &t.TagIDs, &t.TransferPairID,
		&t.ReceiptKey, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	if t.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &t, nil
}

// adjustAggregates applies (incomeDelta, expenseDelta) to an account's
// running totals. latch additionally sets has_transactions, which never
// reverts once set.
func adjustAggregates(ctx context.Context, tx pgx.Tx, bookID, accountID int32, incomeDelta, expenseDelta decimal.Decimal, latch bool) error {
	latchSQL := ""
	if latch {
		latchSQL = ", has_transactions = true"
	}
	tag, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE accounts
		SET total_income = total_income + $3,
		    total_expense = total_expense + $4,
		    updated_at = now()%s
		WHERE book_id = $1 AND id = $2`, latchSQL),
		bookID, accountID, incomeDelta.String(), expenseDelta.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (*domain.Transaction, error) {
	row := tx.QueryRow(ctx, `
		INSERT INTO transactions (book_id, account_id, category_id, type, amount,
			transaction_date, description, person_ids, tag_ids, transfer_pair_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+transactionColumns,
		t.BookID, t.AccountID, t.CategoryID, t.Type, t.Amount.String(),
		t.TransactionDate, t.Description, t.PersonIDs, t.TagIDs, t.TransferPairID)
	return scanTransaction(row)
}

// Create inserts a transaction and applies its aggregate effect atomically
func (r *TransactionRepository) Create(t *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created, err := insertTransaction(ctx, tx, t)
	if err != nil {
		return nil, err
	}

	income, expense := created.AggregateEffect()
	if err := adjustAggregates(ctx, tx, t.BookID, t.AccountID, income, expense, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// CreateTransferPair inserts both legs of a transfer and adjusts both
// accounts in one database transaction
func (r *TransactionRepository) CreateTransferPair(from, to *domain.Transaction) (*domain.Transaction, *domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	fromCreated, err := insertTransaction(ctx, tx, from)
	if err != nil {
		return nil, nil, err
	}
	toCreated, err := insertTransaction(ctx, tx, to)
	if err != nil {
		return nil, nil, err
	}

	// Out leg debits the source, in leg credits the destination
	if err := adjustAggregates(ctx, tx, from.BookID, from.AccountID, decimal.Zero, from.Amount, true); err != nil {
		return nil, nil, err
	}
	if err := adjustAggregates(ctx, tx, to.BookID, to.AccountID, to.Amount, decimal.Zero, true); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return fromCreated, toCreated, nil
}

// GetByID retrieves a transaction by ID within a book
func (r *TransactionRepository) GetByID(bookID int32, id int32) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+transactionColumns+" FROM transactions WHERE book_id = $1 AND id = $2", bookID, id)
	return scanTransaction(row)
}

// GetByBook retrieves transactions for a book with filters and pagination
func (r *TransactionRepository) GetByBook(bookID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	ctx := context.Background()

	where := []string{"book_id = $1"}
	args := []interface{}{bookID}

	addArg := func(clause string, value interface{}) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	page := int32(1)
	pageSize := int32(domain.DefaultPageSize)
	if filters != nil {
		if filters.AccountID != nil {
			addArg("account_id = $%d", *filters.AccountID)
		}
		if filters.CategoryID != nil {
			addArg("category_id = $%d", *filters.CategoryID)
		}
		if filters.PersonID != nil {
			addArg("$%d = ANY(person_ids)", *filters.PersonID)
		}
		if filters.TagID != nil {
			addArg("$%d = ANY(tag_ids)", *filters.TagID)
		}
		if filters.Type != nil {
			addArg("type = $%d", *filters.Type)
		}
		if filters.StartDate != nil {
			addArg("transaction_date >= $%d", *filters.StartDate)
		}
		if filters.EndDate != nil {
			addArg("transaction_date <= $%d", *filters.EndDate)
		}
		if filters.Page > 0 {
			page = filters.Page
		}
		if filters.PageSize > 0 {
			pageSize = filters.PageSize
			if pageSize > domain.MaxPageSize {
				pageSize = domain.MaxPageSize
			}
		}
	}

	whereSQL := strings.Join(where, " AND ")

	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE "+whereSQL, args...).Scan(&total); err != nil {
		return nil, err
	}

	offset := (page - 1) * pageSize
	args = append(args, pageSize, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		"SELECT %s FROM transactions WHERE %s ORDER BY transaction_date DESC, id DESC LIMIT $%d OFFSET $%d",
		transactionColumns, whereSQL, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		data = append(data, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedTransactions{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Update rewrites a transaction, reversing the old aggregate effect on the
// old account before applying the new effect on the (possibly different)
// new account. The two adjustments and the row update commit together.
func (r *TransactionRepository) Update(bookID int32, id int32, updated *domain.Transaction) (*domain.Transaction, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	old, err := scanTransaction(tx.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE book_id = $1 AND id = $2 FOR UPDATE",
		bookID, id))
	if err != nil {
		return nil, err
	}

	oldIncome, oldExpense := old.AggregateEffect()
	if err := adjustAggregates(ctx, tx, bookID, old.AccountID, oldIncome.Neg(), oldExpense.Neg(), false); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE transactions
		SET account_id = $3, category_id = $4, type = $5, amount = $6,
		    transaction_date = $7, description = $8, person_ids = $9, tag_ids = $10,
		    updated_at = now()
		WHERE book_id = $1 AND id = $2
		RETURNING `+transactionColumns,
		bookID, id, updated.AccountID, updated.CategoryID, updated.Type,
		updated.Amount.String(), updated.TransactionDate, updated.Description,
		updated.PersonIDs, updated.TagIDs)
	result, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}

	newIncome, newExpense := result.AggregateEffect()
	if err := adjustAggregates(ctx, tx, bookID, result.AccountID, newIncome, newExpense, true); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a transaction and reverses its aggregate effect. The
// has_transactions latch stays set even when this was the account's last
// transaction.
func (r *TransactionRepository) Delete(bookID int32, id int32) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	old, err := scanTransaction(tx.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE book_id = $1 AND id = $2 FOR UPDATE",
		bookID, id))
	if err != nil {
		return err
	}

	income, expense := old.AggregateEffect()
	if err := adjustAggregates(ctx, tx, bookID, old.AccountID, income.Neg(), expense.Neg(), false); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM transactions WHERE book_id = $1 AND id = $2", bookID, id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteTransferPair removes both legs of a transfer and reverses both
// accounts' aggregates atomically
func (r *TransactionRepository) DeleteTransferPair(bookID int32, pairID uuid.UUID) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE book_id = $1 AND transfer_pair_id = $2 FOR UPDATE",
		bookID, pairID)
	if err != nil {
		return err
	}
	legs := []*domain.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			rows.Close()
			return err
		}
		legs = append(legs, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(legs) == 0 {
		return domain.ErrTransactionNotFound
	}

	for _, leg := range legs {
		// Transfer legs carry their aggregate direction in the stored type
		var income, expense decimal.Decimal
		if leg.Type == domain.TransactionTypeIncome {
			income, expense = leg.Amount, decimal.Zero
		} else {
			income, expense = decimal.Zero, leg.Amount
		}
		if err := adjustAggregates(ctx, tx, bookID, leg.AccountID, income.Neg(), expense.Neg(), false); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM transactions WHERE book_id = $1 AND transfer_pair_id = $2", bookID, pairID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// SetReceiptKey stores or clears the S3 object key of a transaction receipt
func (r *TransactionRepository) SetReceiptKey(bookID int32, id int32, key *string) error {
	tag, err := r.pool.Exec(context.Background(),
		"UPDATE transactions SET receipt_key = $3, updated_at = now() WHERE book_id = $1 AND id = $2",
		bookID, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// CountByCategory returns how many transactions reference a category
func (r *TransactionRepository) CountByCategory(bookID int32, categoryID int32) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM transactions WHERE book_id = $1 AND category_id = $2",
		bookID, categoryID).Scan(&count)
	return count, err
}

// CountByTag returns how many transactions reference a tag
func (r *TransactionRepository) CountByTag(bookID int32, tagID int32) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM transactions WHERE book_id = $1 AND $2 = ANY(tag_ids)",
		bookID, tagID).Scan(&count)
	return count, err
}

// CountByPerson returns how many transactions reference a person
func (r *TransactionRepository) CountByPerson(bookID int32, personID int32) (int64, error) {
	var count int64
	err := r.pool.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM transactions WHERE book_id = $1 AND $2 = ANY(person_ids)",
		bookID, personID).Scan(&count)
	return count, err
}
