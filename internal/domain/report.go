package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange bounds report queries, inclusive on both ends. Either side may
// be zero to leave that end open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// CategoryTotal is a per-category sum of raw transaction amounts. Amounts
// are summed in the native currency of each transaction's account, without
// normalization (observed product behavior).
type CategoryTotal struct {
	CategoryID   int32           `json:"categoryId"`
	CategoryName string          `json:"categoryName"`
	Total        decimal.Decimal `json:"total"`
	Count        int64           `json:"count"`
}

// AccountTotal is a per-account sum split by transaction type, in the
// account's own currency.
type AccountTotal struct {
	AccountID   int32           `json:"accountId"`
	AccountName string          `json:"accountName"`
	Currency    string          `json:"currency"`
	SumIncome   decimal.Decimal `json:"sumIncome"`
	SumExpense  decimal.Decimal `json:"sumExpense"`
}

// DateBucketTotal is a per-bucket (day or month) sum split by type.
type DateBucketTotal struct {
	Bucket     string          `json:"bucket"`
	SumIncome  decimal.Decimal `json:"sumIncome"`
	SumExpense decimal.Decimal `json:"sumExpense"`
}

// BookStats holds book-wide income and expense totals normalized to the
// book's default currency.
type BookStats struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Currency     string          `json:"currency"`
}

// ReportRepository defines read-only aggregation queries over transactions.
// Bucket labels are derived in the supplied IANA timezone (the book's).
type ReportRepository interface {
	SumByCategory(bookID int32, r DateRange, txType TransactionType) ([]*CategoryTotal, error)
	SumByAccount(bookID int32, r DateRange) ([]*AccountTotal, error)
	SumByDateBucket(bookID int32, r DateRange, bucket, timezone string) ([]*DateBucketTotal, error)
}
