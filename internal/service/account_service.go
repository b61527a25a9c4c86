package service

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo    domain.AccountRepository
	bookRepo       domain.BookRepository
	guard          guard
	converter      currencyConverter
	eventPublisher websocket.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository, bookRepo domain.BookRepository, currencyRepo domain.CurrencyRepository, memberRepo domain.MemberRepository) *AccountService {
	return &AccountService{
		accountRepo: accountRepo,
		bookRepo:    bookRepo,
		guard:       guard{memberRepo: memberRepo},
		converter:   currencyConverter{currencyRepo: currencyRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *AccountService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *AccountService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name           string
	Currency       string
	InitialBalance decimal.Decimal
}

// CreateAccount creates an account denominated in one of the book's currencies
func (s *AccountService) CreateAccount(actorID uuid.UUID, bookID int32, input CreateAccountInput) (*domain.Account, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	name, err := validateAccountName(input.Name)
	if err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, err
	}

	currency := normalizeCurrencyCode(input.Currency)
	if !book.HasCurrency(currency) {
		return nil, domain.ErrCurrencyNotInBook
	}

	account, err := s.accountRepo.Create(&domain.Account{
		BookID:         bookID,
		Name:           name,
		Currency:       currency,
		InitialBalance: input.InitialBalance,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.AccountCreated(account))
	return account, nil
}

// GetAccounts retrieves all accounts for a book
func (s *AccountService) GetAccounts(actorID uuid.UUID, bookID int32) ([]*domain.Account, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.accountRepo.GetAllByBook(bookID)
}

// GetAccountByID retrieves an account by ID within a book
func (s *AccountService) GetAccountByID(actorID uuid.UUID, bookID int32, id int32) (*domain.Account, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.accountRepo.GetByID(bookID, id)
}

// UpdateAccountInput holds the mutable account fields
type UpdateAccountInput struct {
	Name           string
	Currency       string
	InitialBalance decimal.Decimal
}

// UpdateAccount changes an account's name, currency, or initial balance.
// The currency is locked once the account has recorded a transaction.
func (s *AccountService) UpdateAccount(actorID uuid.UUID, bookID int32, id int32, input UpdateAccountInput) (*domain.Account, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.GetByID(bookID, id)
	if err != nil {
		return nil, err
	}

	name, err := validateAccountName(input.Name)
	if err != nil {
		return nil, err
	}

	currency := normalizeCurrencyCode(input.Currency)
	if currency != account.Currency {
		if account.HasTransactions {
			return nil, domain.ErrCurrencyLocked
		}
		book, err := s.bookRepo.GetByID(bookID)
		if err != nil {
			return nil, err
		}
		if !book.HasCurrency(currency) {
			return nil, domain.ErrCurrencyNotInBook
		}
	}

	updated, err := s.accountRepo.Update(bookID, id, name, currency, input.InitialBalance)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.AccountUpdated(updated))
	return updated, nil
}

// DeleteAccount removes an account that has never recorded a transaction
func (s *AccountService) DeleteAccount(actorID uuid.UUID, bookID int32, id int32) error {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return err
	}

	account, err := s.accountRepo.GetByID(bookID, id)
	if err != nil {
		return err
	}
	if account.HasTransactions {
		return domain.ErrAccountHasTxns
	}

	if err := s.accountRepo.Delete(bookID, id); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.AccountDeleted(map[string]int32{"id": id, "bookId": bookID}))
	return nil
}

// AccountBalance pairs an account with its derived balance, both in the
// account's own currency and normalized to the book's default currency.
type AccountBalance struct {
	Account          *domain.Account `json:"account"`
	Balance          decimal.Decimal `json:"balance"`
	BalanceInDefault decimal.Decimal `json:"balanceInDefault"`
}

// GetBalances computes current balances for all accounts in a book
func (s *AccountService) GetBalances(actorID uuid.UUID, bookID int32) ([]*AccountBalance, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.GetAllByBook(bookID)
	if err != nil {
		return nil, err
	}

	result := make([]*AccountBalance, 0, len(accounts))
	for _, account := range accounts {
		balance := account.Balance()
		normalized, err := s.converter.toDefault(book, balance, account.Currency)
		if err != nil {
			return nil, err
		}
		result = append(result, &AccountBalance{
			Account:          account,
			Balance:          balance,
			BalanceInDefault: normalized,
		})
	}
	return result, nil
}

func validateAccountName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if n := utf8.RuneCountInString(name); n < domain.MinAccountNameLength || n > domain.MaxAccountNameLength {
		return "", domain.ErrNameLength
	}
	return name, nil
}
