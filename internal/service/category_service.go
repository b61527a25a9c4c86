package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
)

// CategoryService handles category-related business logic
type CategoryService struct {
	categoryRepo   domain.CategoryRepository
	txRepo         domain.TransactionRepository
	guard          guard
	eventPublisher websocket.EventPublisher
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo domain.CategoryRepository, txRepo domain.TransactionRepository, memberRepo domain.MemberRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		txRepo:       txRepo,
		guard:        guard{memberRepo: memberRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *CategoryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *CategoryService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// CreateCategory creates a category typed income, expense, or transfer.
// The type is fixed at creation.
func (s *CategoryService) CreateCategory(actorID uuid.UUID, bookID int32, name string, categoryType domain.TransactionType) (*domain.Category, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameLength
	}
	switch categoryType {
	case domain.TransactionTypeIncome, domain.TransactionTypeExpense, domain.TransactionTypeTransfer:
	default:
		return nil, domain.ErrInvalidTransactionType
	}

	category, err := s.categoryRepo.Create(&domain.Category{
		BookID: bookID,
		Name:   name,
		Type:   categoryType,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.CategoryCreated(category))
	return category, nil
}

// GetCategories retrieves all categories for a book
func (s *CategoryService) GetCategories(actorID uuid.UUID, bookID int32) ([]*domain.Category, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetAllByBook(bookID)
}

// GetCategoryByID retrieves a category by ID within a book
func (s *CategoryService) GetCategoryByID(actorID uuid.UUID, bookID int32, id int32) (*domain.Category, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.categoryRepo.GetByID(bookID, id)
}

// UpdateCategory renames a category (only the name is editable)
func (s *CategoryService) UpdateCategory(actorID uuid.UUID, bookID int32, id int32, name string) (*domain.Category, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return nil, domain.ErrNameLength
	}

	category, err := s.categoryRepo.Update(bookID, id, name)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.CategoryUpdated(category))
	return category, nil
}

// DeleteCategory removes a category that no transaction references
func (s *CategoryService) DeleteCategory(actorID uuid.UUID, bookID int32, id int32) error {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return err
	}

	if _, err := s.categoryRepo.GetByID(bookID, id); err != nil {
		return err
	}

	count, err := s.txRepo.CountByCategory(bookID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(bookID, id); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.CategoryDeleted(map[string]int32{"id": id, "bookId": bookID}))
	return nil
}
