package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Amount bounds, inclusive.
var (
	MinTransactionAmount = decimal.RequireFromString("0.01")
	MaxTransactionAmount = decimal.RequireFromString("9999999.99")
)

// Transaction is a dated ledger entry against one account. Transfers are
// stored as two linked entries sharing a TransferPairID: an expense-side leg
// on the source account and an income-side leg on the destination, so the
// aggregate effect is a paired debit/credit.
type Transaction struct {
	ID              int32           `json:"id"`
	BookID          int32           `json:"bookId"`
	AccountID       int32           `json:"accountId"`
	CategoryID      int32           `json:"categoryId"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transactionDate"`
	Description     *string         `json:"description,omitempty"`
	PersonIDs       []int32         `json:"personIds,omitempty"`
	TagIDs          []int32         `json:"tagIds,omitempty"`
	TransferPairID  *uuid.UUID      `json:"transferPairId,omitempty"`
	ReceiptKey      *string         `json:"-"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// AggregateEffect returns the deltas a transaction applies to its account's
// (totalIncome, totalExpense) aggregates.
func (t *Transaction) AggregateEffect() (income, expense decimal.Decimal) {
	switch t.Type {
	case TransactionTypeIncome:
		return t.Amount, decimal.Zero
	case TransactionTypeExpense:
		return decimal.Zero, t.Amount
	default:
		return decimal.Zero, decimal.Zero
	}
}

type TransactionFilters struct {
	AccountID  *int32
	CategoryID *int32
	PersonID   *int32
	TagID      *int32
	Type       *TransactionType
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

// TransactionRepository defines the interface for transaction persistence.
// Create, Update, and Delete adjust the owning account's aggregates in the
// same database transaction as the row write; Update reverses the old
// effect on the old account before applying the new one. Create also sets
// the account's has_transactions latch. The latch is never cleared.
type TransactionRepository interface {
	Create(tx *Transaction) (*Transaction, error)
	CreateTransferPair(from, to *Transaction) (*Transaction, *Transaction, error)
	GetByID(bookID int32, id int32) (*Transaction, error)
	GetByBook(bookID int32, filters *TransactionFilters) (*PaginatedTransactions, error)
	Update(bookID int32, id int32, updated *Transaction) (*Transaction, error)
	Delete(bookID int32, id int32) error
	DeleteTransferPair(bookID int32, pairID uuid.UUID) error
	SetReceiptKey(bookID int32, id int32, key *string) error
	CountByCategory(bookID int32, categoryID int32) (int64, error)
	CountByTag(bookID int32, tagID int32) (int64, error)
	CountByPerson(bookID int32, personID int32) (int64, error)
}
