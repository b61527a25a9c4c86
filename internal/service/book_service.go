package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
)

// BookService handles book lifecycle and currency-set management
type BookService struct {
	bookRepo       domain.BookRepository
	currencyRepo   domain.CurrencyRepository
	guard          guard
	eventPublisher websocket.EventPublisher
}

// NewBookService creates a new BookService
func NewBookService(bookRepo domain.BookRepository, currencyRepo domain.CurrencyRepository, memberRepo domain.MemberRepository) *BookService {
	return &BookService{
		bookRepo:     bookRepo,
		currencyRepo: currencyRepo,
		guard:        guard{memberRepo: memberRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BookService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BookService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// CreateBookInput holds the input for creating a book
type CreateBookInput struct {
	Name            string
	Description     *string
	CurrencyCodes   []string
	DefaultCurrency string
	Timezone        string
}

// CreateBook creates a book owned by ownerID. The owner becomes the single
// creator member. Every currency code must exist in the owner's registry
// and the default currency must be one of the book's codes.
func (s *BookService) CreateBook(ownerID uuid.UUID, input CreateBookInput) (*domain.Book, error) {
	name, err := validateBookName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	codes, defaultCurrency, err := s.validateCurrencySet(ownerID, input.CurrencyCodes, input.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	timezone := strings.TrimSpace(input.Timezone)
	if timezone == "" {
		timezone = "UTC"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, domain.ErrInvalidTimezone
	}

	return s.bookRepo.Create(&domain.Book{
		Name:            name,
		Description:     input.Description,
		CurrencyCodes:   codes,
		DefaultCurrency: defaultCurrency,
		OwnerID:         ownerID,
		Timezone:        timezone,
	}, ownerID)
}

// GetBooks lists all books the user is a member of
func (s *BookService) GetBooks(userID uuid.UUID) ([]*domain.Book, error) {
	return s.bookRepo.GetAllByUser(userID)
}

// GetBook retrieves a book the caller is a member of
func (s *BookService) GetBook(userID uuid.UUID, bookID int32) (*domain.Book, error) {
	if err := s.guard.requireView(bookID, userID); err != nil {
		return nil, err
	}
	return s.bookRepo.GetByID(bookID)
}

// UpdateBookInput holds the mutable book fields
type UpdateBookInput struct {
	Name            string
	Description     *string
	CurrencyCodes   []string
	DefaultCurrency string
}

// UpdateBook changes a book's name, description, or currency set. A currency
// cannot leave the set while an account is still denominated in it.
func (s *BookService) UpdateBook(actorID uuid.UUID, bookID int32, input UpdateBookInput) (*domain.Book, error) {
	if err := s.guard.requireManageBook(bookID, actorID); err != nil {
		return nil, err
	}

	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, err
	}

	name, err := validateBookName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	codes, defaultCurrency, err := s.validateCurrencySet(book.OwnerID, input.CurrencyCodes, input.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	// Codes leaving the set must not be used by any account
	kept := make(map[string]bool, len(codes))
	for _, c := range codes {
		kept[c] = true
	}
	for _, old := range book.CurrencyCodes {
		if kept[old] {
			continue
		}
		used, err := s.bookRepo.CurrencyUsedByAccount(bookID, old)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, domain.ErrCurrencyInUse
		}
	}

	updated, err := s.bookRepo.Update(bookID, name, input.Description, codes, defaultCurrency)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.BookUpdated(updated))
	return updated, nil
}

// DeleteBook removes a book and its memberships. A book with accounts
// cannot be deleted; remove the accounts first.
func (s *BookService) DeleteBook(actorID uuid.UUID, bookID int32) error {
	if err := s.guard.requireManageBook(bookID, actorID); err != nil {
		return err
	}

	count, err := s.bookRepo.CountAccounts(bookID)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrBookHasAccounts
	}

	if err := s.bookRepo.Delete(bookID); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.BookDeleted(map[string]int32{"id": bookID}))
	return nil
}

// validateCurrencySet normalizes and deduplicates the codes, checks each
// exists in the owner's registry, and checks the default is in the set.
func (s *BookService) validateCurrencySet(ownerID uuid.UUID, rawCodes []string, rawDefault string) ([]string, string, error) {
	var codes []string
	seen := make(map[string]bool)
	for _, raw := range rawCodes {
		code := normalizeCurrencyCode(raw)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, "", domain.ErrEmptyCurrencySet
	}

	for _, code := range codes {
		if _, err := s.currencyRepo.GetByCode(ownerID, code); err != nil {
			return nil, "", err
		}
	}

	defaultCurrency := normalizeCurrencyCode(rawDefault)
	if !seen[defaultCurrency] {
		return nil, "", domain.ErrDefaultCurrencyMissing
	}

	return codes, defaultCurrency, nil
}

func validateBookName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return "", domain.ErrNameLength
	}
	return name, nil
}

func validateDescription(description *string) error {
	if description != nil && len(*description) > domain.MaxDescriptionLength {
		return domain.ErrDescriptionTooLong
	}
	return nil
}
