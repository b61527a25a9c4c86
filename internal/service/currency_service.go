package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CurrencyService handles the per-user currency registry
type CurrencyService struct {
	currencyRepo domain.CurrencyRepository
}

// NewCurrencyService creates a new CurrencyService
func NewCurrencyService(currencyRepo domain.CurrencyRepository) *CurrencyService {
	return &CurrencyService{currencyRepo: currencyRepo}
}

// GetCurrencies lists the user's currencies. An empty registry is populated
// on first read: legacy global rows are migrated into the user's scope if
// any exist, otherwise the system defaults are seeded.
func (s *CurrencyService) GetCurrencies(userID uuid.UUID) ([]*domain.Currency, error) {
	currencies, err := s.currencyRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(currencies) > 0 {
		return currencies, nil
	}

	migrated, err := s.currencyRepo.MigrateLegacyGlobal(userID)
	if err != nil {
		return nil, err
	}
	if migrated {
		return s.currencyRepo.ListByUser(userID)
	}

	return s.currencyRepo.SeedDefaults(userID, domain.SystemDefaultCurrencies)
}

// GetCurrency retrieves one currency by code
func (s *CurrencyService) GetCurrency(userID uuid.UUID, code string) (*domain.Currency, error) {
	return s.currencyRepo.GetByCode(userID, normalizeCurrencyCode(code))
}

// CreateCurrencyInput holds the input for creating a currency
type CreateCurrencyInput struct {
	Code   string
	Name   string
	Symbol string
	Rate   decimal.Decimal
}

// CreateCurrency adds a currency to the user's registry
func (s *CurrencyService) CreateCurrency(userID uuid.UUID, input CreateCurrencyInput) (*domain.Currency, error) {
	code := normalizeCurrencyCode(input.Code)
	if code == "" {
		return nil, domain.ErrCodeRequired
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameLength
	}
	if !input.Rate.IsPositive() {
		return nil, domain.ErrInvalidRate
	}

	return s.currencyRepo.Create(&domain.Currency{
		UserID: userID,
		Code:   code,
		Name:   name,
		Symbol: strings.TrimSpace(input.Symbol),
		Rate:   input.Rate,
	})
}

// UpdateCurrencyInput holds the mutable currency fields. Code is immutable.
type UpdateCurrencyInput struct {
	Name   string
	Symbol string
	Rate   decimal.Decimal
}

// UpdateCurrency changes a currency's name, symbol, or rate
func (s *CurrencyService) UpdateCurrency(userID uuid.UUID, code string, input UpdateCurrencyInput) (*domain.Currency, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameLength
	}
	if !input.Rate.IsPositive() {
		return nil, domain.ErrInvalidRate
	}

	return s.currencyRepo.Update(userID, normalizeCurrencyCode(code), name, strings.TrimSpace(input.Symbol), input.Rate)
}

// DeleteCurrency removes a currency. System defaults and currencies still
// referenced by a book or account cannot be deleted.
func (s *CurrencyService) DeleteCurrency(userID uuid.UUID, code string) error {
	code = normalizeCurrencyCode(code)

	currency, err := s.currencyRepo.GetByCode(userID, code)
	if err != nil {
		return err
	}
	if currency.IsSystemDefault {
		return domain.ErrSystemDefaultCurrency
	}

	referenced, err := s.currencyRepo.IsReferenced(userID, code)
	if err != nil {
		return err
	}
	if referenced {
		return domain.ErrCurrencyInUse
	}

	return s.currencyRepo.Delete(userID, code)
}

func normalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
