package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a money container denominated in exactly one of its book's
// currencies. TotalIncome and TotalExpense are running aggregates maintained
// atomically by transaction writes. HasTransactions is a one-way latch: it
// flips true on the first transaction and never reverts, which locks the
// currency and blocks deletion from then on.
type Account struct {
	ID              int32           `json:"id"`
	BookID          int32           `json:"bookId"`
	Name            string          `json:"name"`
	Currency        string          `json:"currency"`
	InitialBalance  decimal.Decimal `json:"initialBalance"`
	TotalIncome     decimal.Decimal `json:"totalIncome"`
	TotalExpense    decimal.Decimal `json:"totalExpense"`
	HasTransactions bool            `json:"hasTransactions"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Balance is the derived current balance: initial + income - expense.
func (a *Account) Balance() decimal.Decimal {
	return a.InitialBalance.Add(a.TotalIncome).Sub(a.TotalExpense)
}

// AccountRepository defines the interface for account persistence operations
type AccountRepository interface {
	Create(account *Account) (*Account, error)
	GetByID(bookID int32, id int32) (*Account, error)
	GetAllByBook(bookID int32) ([]*Account, error)
	Update(bookID int32, id int32, name string, currency string, initialBalance decimal.Decimal) (*Account, error)
	Delete(bookID int32, id int32) error
}
