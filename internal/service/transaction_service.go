package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction and transfer business logic.
// Aggregate maintenance (account running totals and the has_transactions
// latch) happens inside the repository so the row write and the account
// update commit together.
type TransactionService struct {
	txRepo         domain.TransactionRepository
	accountRepo    domain.AccountRepository
	categoryRepo   domain.CategoryRepository
	personRepo     domain.PersonRepository
	tagRepo        domain.TagRepository
	guard          guard
	eventPublisher websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	txRepo domain.TransactionRepository,
	accountRepo domain.AccountRepository,
	categoryRepo domain.CategoryRepository,
	personRepo domain.PersonRepository,
	tagRepo domain.TagRepository,
	memberRepo domain.MemberRepository,
) *TransactionService {
	return &TransactionService{
		txRepo:       txRepo,
		accountRepo:  accountRepo,
		categoryRepo: categoryRepo,
		personRepo:   personRepo,
		tagRepo:      tagRepo,
		guard:        guard{memberRepo: memberRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TransactionService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	AccountID   int32
	CategoryID  int32
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Date        time.Time
	Description *string
	PersonIDs   []int32
	TagIDs      []int32
}

// CreateTransaction records an income or expense entry. Transfers go through
// CreateTransfer, which writes both legs atomically.
func (s *TransactionService) CreateTransaction(actorID uuid.UUID, bookID int32, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.GetByID(bookID, input.AccountID); err != nil {
		return nil, err
	}
	if err := s.validateCategory(bookID, input.CategoryID, input.Type); err != nil {
		return nil, err
	}

	personIDs, err := s.validatePersons(bookID, input.PersonIDs)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.validateTags(bookID, input.TagIDs)
	if err != nil {
		return nil, err
	}

	created, err := s.txRepo.Create(&domain.Transaction{
		BookID:          bookID,
		AccountID:       input.AccountID,
		CategoryID:      input.CategoryID,
		Type:            input.Type,
		Amount:          input.Amount,
		TransactionDate: input.Date,
		Description:     input.Description,
		PersonIDs:       personIDs,
		TagIDs:          tagIDs,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.TransactionCreated(created))
	return created, nil
}

// GetTransaction retrieves a transaction by ID within a book
func (s *TransactionService) GetTransaction(actorID uuid.UUID, bookID int32, id int32) (*domain.Transaction, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.txRepo.GetByID(bookID, id)
}

// GetTransactions lists transactions with filters, newest first
func (s *TransactionService) GetTransactions(actorID uuid.UUID, bookID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}

	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultPageSize
	}
	if filters.PageSize > domain.MaxPageSize {
		filters.PageSize = domain.MaxPageSize
	}

	return s.txRepo.GetByBook(bookID, filters)
}

// UpdateTransaction rewrites an income or expense entry. Transfer legs are
// locked; delete the transfer and record a new one instead.
func (s *TransactionService) UpdateTransaction(actorID uuid.UUID, bookID int32, id int32, input CreateTransactionInput) (*domain.Transaction, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	existing, err := s.txRepo.GetByID(bookID, id)
	if err != nil {
		return nil, err
	}
	if existing.TransferPairID != nil {
		return nil, domain.ErrTransferLegLocked
	}

	if input.Type != domain.TransactionTypeIncome && input.Type != domain.TransactionTypeExpense {
		return nil, domain.ErrInvalidTransactionType
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.GetByID(bookID, input.AccountID); err != nil {
		return nil, err
	}
	if err := s.validateCategory(bookID, input.CategoryID, input.Type); err != nil {
		return nil, err
	}

	personIDs, err := s.validatePersons(bookID, input.PersonIDs)
	if err != nil {
		return nil, err
	}
	tagIDs, err := s.validateTags(bookID, input.TagIDs)
	if err != nil {
		return nil, err
	}

	updated, err := s.txRepo.Update(bookID, id, &domain.Transaction{
		BookID:          bookID,
		AccountID:       input.AccountID,
		CategoryID:      input.CategoryID,
		Type:            input.Type,
		Amount:          input.Amount,
		TransactionDate: input.Date,
		Description:     input.Description,
		PersonIDs:       personIDs,
		TagIDs:          tagIDs,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// DeleteTransaction removes a transaction and reverses its aggregate effect.
// Deleting either leg of a transfer removes both legs.
func (s *TransactionService) DeleteTransaction(actorID uuid.UUID, bookID int32, id int32) error {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return err
	}

	existing, err := s.txRepo.GetByID(bookID, id)
	if err != nil {
		return err
	}

	if existing.TransferPairID != nil {
		pairID := *existing.TransferPairID
		if err := s.txRepo.DeleteTransferPair(bookID, pairID); err != nil {
			return err
		}
		s.publishEvent(bookID, websocket.TransferDeleted(map[string]any{"transferPairId": pairID}))
		return nil
	}

	if err := s.txRepo.Delete(bookID, id); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.TransactionDeleted(map[string]int32{"id": id, "bookId": bookID}))
	return nil
}

// CreateTransferInput holds the input for a transfer between two accounts
type CreateTransferInput struct {
	FromAccountID int32
	ToAccountID   int32
	CategoryID    int32
	Amount        decimal.Decimal
	Date          time.Time
	Description   *string
}

// TransferResult carries both legs of a created transfer
type TransferResult struct {
	TransferPairID uuid.UUID           `json:"transferPairId"`
	Out            *domain.Transaction `json:"out"`
	In             *domain.Transaction `json:"in"`
}

// CreateTransfer moves money between two accounts of the same book as a
// linked pair: an expense-side leg on the source and an income-side leg on
// the destination, both written in one database transaction.
func (s *TransactionService) CreateTransfer(actorID uuid.UUID, bookID int32, input CreateTransferInput) (*TransferResult, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	if input.FromAccountID == input.ToAccountID {
		return nil, domain.ErrSameAccountTransfer
	}
	if err := validateAmount(input.Amount); err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}

	if _, err := s.accountRepo.GetByID(bookID, input.FromAccountID); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.GetByID(bookID, input.ToAccountID); err != nil {
		return nil, err
	}
	if err := s.validateCategory(bookID, input.CategoryID, domain.TransactionTypeTransfer); err != nil {
		return nil, err
	}

	pairID := uuid.New()
	out := &domain.Transaction{
		BookID:          bookID,
		AccountID:       input.FromAccountID,
		CategoryID:      input.CategoryID,
		Type:            domain.TransactionTypeExpense,
		Amount:          input.Amount,
		TransactionDate: input.Date,
		Description:     input.Description,
		TransferPairID:  &pairID,
	}
	in := &domain.Transaction{
		BookID:          bookID,
		AccountID:       input.ToAccountID,
		CategoryID:      input.CategoryID,
		Type:            domain.TransactionTypeIncome,
		Amount:          input.Amount,
		TransactionDate: input.Date,
		Description:     input.Description,
		TransferPairID:  &pairID,
	}

	outCreated, inCreated, err := s.txRepo.CreateTransferPair(out, in)
	if err != nil {
		return nil, err
	}

	result := &TransferResult{TransferPairID: pairID, Out: outCreated, In: inCreated}
	s.publishEvent(bookID, websocket.TransferCreated(result))
	return result, nil
}

func (s *TransactionService) validateCategory(bookID int32, categoryID int32, txType domain.TransactionType) error {
	category, err := s.categoryRepo.GetByID(bookID, categoryID)
	if err != nil {
		return err
	}
	if category.Type != txType {
		return domain.ErrCategoryTypeMismatch
	}
	return nil
}

func (s *TransactionService) validatePersons(bookID int32, ids []int32) ([]int32, error) {
	deduped := dedupeIDs(ids)
	for _, id := range deduped {
		if _, err := s.personRepo.GetByID(bookID, id); err != nil {
			return nil, err
		}
	}
	return deduped, nil
}

func (s *TransactionService) validateTags(bookID int32, ids []int32) ([]int32, error) {
	deduped := dedupeIDs(ids)
	for _, id := range deduped {
		if _, err := s.tagRepo.GetByID(bookID, id); err != nil {
			return nil, err
		}
	}
	return deduped, nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.LessThan(domain.MinTransactionAmount) || amount.GreaterThan(domain.MaxTransactionAmount) {
		return domain.ErrInvalidAmount
	}
	return nil
}

func dedupeIDs(ids []int32) []int32 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int32]bool, len(ids))
	out := make([]int32, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
