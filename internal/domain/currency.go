package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Currency is a per-user currency definition. Rate is the canonical exchange
// field: units of this currency per one unit of the base currency, so the
// base currency itself has rate 1. Code never changes after creation.
type Currency struct {
	ID              int32           `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Symbol          string          `json:"symbol"`
	Rate            decimal.Decimal `json:"rate"`
	IsSystemDefault bool            `json:"isSystemDefault"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// SystemDefaultCurrencies is the fixed set seeded into a user's scope the
// first time their registry is read and found empty. CNY is the rate base.
var SystemDefaultCurrencies = []Currency{
	{Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", Rate: decimal.NewFromInt(1), IsSystemDefault: true},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Rate: decimal.RequireFromString("7.2"), IsSystemDefault: true},
	{Code: "EUR", Name: "Euro", Symbol: "€", Rate: decimal.RequireFromString("7.9"), IsSystemDefault: true},
}

// CurrencyRepository defines the interface for currency persistence.
// ListByUser returns rows in insertion order.
type CurrencyRepository interface {
	ListByUser(userID uuid.UUID) ([]*Currency, error)
	GetByCode(userID uuid.UUID, code string) (*Currency, error)
	Create(currency *Currency) (*Currency, error)
	Update(userID uuid.UUID, code string, name, symbol string, rate decimal.Decimal) (*Currency, error)
	Delete(userID uuid.UUID, code string) error
	SeedDefaults(userID uuid.UUID, defaults []Currency) ([]*Currency, error)
	// MigrateLegacyGlobal copies legacy global rows (no owning user) into the
	// user's scope and reports whether any were copied.
	MigrateLegacyGlobal(userID uuid.UUID) (bool, error)
	// IsReferenced reports whether any book or account of this user uses the code.
	IsReferenced(userID uuid.UUID, code string) (bool, error)
}
