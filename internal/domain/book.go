package domain

import (
	"time"

	"github.com/google/uuid"
)

// Book is a ledger scoping accounts, transactions, and members.
// DefaultCurrency must always resolve to an entry in CurrencyCodes.
type Book struct {
	ID              int32     `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	CurrencyCodes   []string  `json:"currencyCodes"`
	DefaultCurrency string    `json:"defaultCurrency"`
	OwnerID         uuid.UUID `json:"ownerId"`
	Timezone        string    `json:"timezone"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// HasCurrency reports whether code is in the book's currency set.
func (b *Book) HasCurrency(code string) bool {
	for _, c := range b.CurrencyCodes {
		if c == code {
			return true
		}
	}
	return false
}

// BookRepository defines the interface for book persistence operations
type BookRepository interface {
	Create(book *Book, creator uuid.UUID) (*Book, error)
	GetByID(id int32) (*Book, error)
	GetAllByUser(userID uuid.UUID) ([]*Book, error)
	Update(id int32, name string, description *string, currencyCodes []string, defaultCurrency string) (*Book, error)
	Delete(id int32) error
	CountAccounts(id int32) (int64, error)
	// CurrencyUsedByAccount reports whether any account in the book is
	// denominated in code.
	CurrencyUsedByAccount(id int32, code string) (bool, error)
}
