package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportRepository implements domain.ReportRepository using PostgreSQL
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

func dateRangeClause(r domain.DateRange, args *[]interface{}) string {
	clause := ""
	if !r.Start.IsZero() {
		*args = append(*args, r.Start)
		clause += fmt.Sprintf(" AND t.transaction_date >= $%d", len(*args))
	}
	if !r.End.IsZero() {
		*args = append(*args, r.End)
		clause += fmt.Sprintf(" AND t.transaction_date <= $%d", len(*args))
	}
	return clause
}

// SumByCategory groups raw transaction amounts by category. Amounts are
// summed as stored, in each account's native currency.
func (r *ReportRepository) SumByCategory(bookID int32, dr domain.DateRange, txType domain.TransactionType) ([]*domain.CategoryTotal, error) {
	args := []interface{}{bookID, txType}
	rangeSQL := dateRangeClause(dr, &args)

	rows, err := r.pool.Query(context.Background(), `
		SELECT t.category_id, c.name, SUM(t.amount)::text, COUNT(*)
		FROM transactions t
		JOIN categories c ON c.id = t.category_id
		WHERE t.book_id = $1 AND t.type = $2`+rangeSQL+`
		GROUP BY t.category_id, c.name
		ORDER BY SUM(t.amount) DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.CategoryTotal
	for rows.Next() {
		var ct domain.CategoryTotal
		var total string
		if err := rows.Scan(&ct.CategoryID, &ct.CategoryName, &total, &ct.Count); err != nil {
			return nil, err
		}
		if ct.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		result = append(result, &ct)
	}
	return result, rows.Err()
}

// SumByAccount groups per-account income and expense sums over a range
func (r *ReportRepository) SumByAccount(bookID int32, dr domain.DateRange) ([]*domain.AccountTotal, error) {
	args := []interface{}{bookID}
	rangeSQL := dateRangeClause(dr, &args)

	rows, err := r.pool.Query(context.Background(), `
		SELECT a.id, a.name, a.currency,
		       COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'income'), 0)::text,
		       COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'expense'), 0)::text
		FROM accounts a
		LEFT JOIN transactions t ON t.account_id = a.id`+rangeSQL+`
		WHERE a.book_id = $1
		GROUP BY a.id, a.name, a.currency
		ORDER BY a.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.AccountTotal
	for rows.Next() {
		var at domain.AccountTotal
		var income, expense string
		if err := rows.Scan(&at.AccountID, &at.AccountName, &at.Currency, &income, &expense); err != nil {
			return nil, err
		}
		if at.SumIncome, err = decimal.NewFromString(income); err != nil {
			return nil, err
		}
		if at.SumExpense, err = decimal.NewFromString(expense); err != nil {
			return nil, err
		}
		result = append(result, &at)
	}
	return result, rows.Err()
}

// SumByDateBucket groups income and expense sums per day or month bucket.
// Bucket boundaries follow the given timezone, not the server's.
func (r *ReportRepository) SumByDateBucket(bookID int32, dr domain.DateRange, bucket, timezone string) ([]*domain.DateBucketTotal, error) {
	format := "YYYY-MM-DD"
	if bucket == "month" {
		format = "YYYY-MM"
	}

	args := []interface{}{bookID, format, timezone}
	rangeSQL := dateRangeClause(dr, &args)

	rows, err := r.pool.Query(context.Background(), `
		SELECT to_char(t.transaction_date AT TIME ZONE $3, $2),
		       COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'income'), 0)::text,
		       COALESCE(SUM(t.amount) FILTER (WHERE t.type = 'expense'), 0)::text
		FROM transactions t
		WHERE t.book_id = $1`+rangeSQL+`
		GROUP BY 1
		ORDER BY 1`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.DateBucketTotal
	for rows.Next() {
		var bt domain.DateBucketTotal
		var income, expense string
		if err := rows.Scan(&bt.Bucket, &income, &expense); err != nil {
			return nil, err
		}
		if bt.SumIncome, err = decimal.NewFromString(income); err != nil {
			return nil, err
		}
		if bt.SumExpense, err = decimal.NewFromString(expense); err != nil {
			return nil, err
		}
		result = append(result, &bt)
	}
	return result, rows.Err()
}
