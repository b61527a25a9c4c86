package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo     domain.BudgetRepository
	categoryRepo   domain.CategoryRepository
	guard          guard
	eventPublisher websocket.EventPublisher
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, categoryRepo domain.CategoryRepository, memberRepo domain.MemberRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:   budgetRepo,
		categoryRepo: categoryRepo,
		guard:        guard{memberRepo: memberRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BudgetService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BudgetService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// BudgetInput holds the input for creating or updating a budget
type BudgetInput struct {
	Name       string
	Amount     decimal.Decimal
	Period     domain.BudgetPeriod
	StartDate  time.Time
	EndDate    time.Time
	CategoryID *int32
}

// CreateBudget creates a spending target, optionally scoped to an expense category
func (s *BudgetService) CreateBudget(actorID uuid.UUID, bookID int32, input BudgetInput) (*domain.Budget, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	budget, err := s.validateBudget(bookID, input)
	if err != nil {
		return nil, err
	}

	created, err := s.budgetRepo.Create(budget)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.BudgetCreated(created))
	return created, nil
}

// GetBudgets retrieves all budgets for a book
func (s *BudgetService) GetBudgets(actorID uuid.UUID, bookID int32) ([]*domain.Budget, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.budgetRepo.GetAllByBook(bookID)
}

// GetBudgetByID retrieves a budget by ID within a book
func (s *BudgetService) GetBudgetByID(actorID uuid.UUID, bookID int32, id int32) (*domain.Budget, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.budgetRepo.GetByID(bookID, id)
}

// UpdateBudget rewrites a budget's fields
func (s *BudgetService) UpdateBudget(actorID uuid.UUID, bookID int32, id int32, input BudgetInput) (*domain.Budget, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	budget, err := s.validateBudget(bookID, input)
	if err != nil {
		return nil, err
	}

	updated, err := s.budgetRepo.Update(bookID, id, budget)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.BudgetUpdated(updated))
	return updated, nil
}

// DeleteBudget removes a budget
func (s *BudgetService) DeleteBudget(actorID uuid.UUID, bookID int32, id int32) error {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return err
	}

	if err := s.budgetRepo.Delete(bookID, id); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.BudgetDeleted(map[string]int32{"id": id, "bookId": bookID}))
	return nil
}

func (s *BudgetService) validateBudget(bookID int32, input BudgetInput) (*domain.Budget, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameLength
	}
	if !input.Amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Period.Valid() {
		return nil, domain.ErrInvalidPeriod
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || input.EndDate.Before(input.StartDate) {
		return nil, domain.ErrInvalidPeriod
	}

	// A category-scoped budget tracks spending, so only expense categories apply
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(bookID, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != domain.TransactionTypeExpense {
			return nil, domain.ErrCategoryTypeMismatch
		}
	}

	return &domain.Budget{
		BookID:     bookID,
		Name:       name,
		Amount:     input.Amount,
		Period:     input.Period,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		CategoryID: input.CategoryID,
	}, nil
}
