package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
)

// TagService handles tag-related business logic
type TagService struct {
	tagRepo        domain.TagRepository
	txRepo         domain.TransactionRepository
	guard          guard
	eventPublisher websocket.EventPublisher
}

// NewTagService creates a new TagService
func NewTagService(tagRepo domain.TagRepository, txRepo domain.TransactionRepository, memberRepo domain.MemberRepository) *TagService {
	return &TagService{
		tagRepo: tagRepo,
		txRepo:  txRepo,
		guard:   guard{memberRepo: memberRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TagService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *TagService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// CreateTag creates a tag with a canonical "#rrggbb" color
func (s *TagService) CreateTag(actorID uuid.UUID, bookID int32, name, color string) (*domain.Tag, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	name, normalizedColor, err := validateTag(name, color)
	if err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.Create(&domain.Tag{
		BookID: bookID,
		Name:   name,
		Color:  normalizedColor,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.TagCreated(tag))
	return tag, nil
}

// GetTags retrieves all tags for a book
func (s *TagService) GetTags(actorID uuid.UUID, bookID int32) ([]*domain.Tag, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.tagRepo.GetAllByBook(bookID)
}

// GetTagByID retrieves a tag by ID within a book
func (s *TagService) GetTagByID(actorID uuid.UUID, bookID int32, id int32) (*domain.Tag, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.tagRepo.GetByID(bookID, id)
}

// UpdateTag changes a tag's name and color
func (s *TagService) UpdateTag(actorID uuid.UUID, bookID int32, id int32, name, color string) (*domain.Tag, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	name, normalizedColor, err := validateTag(name, color)
	if err != nil {
		return nil, err
	}

	tag, err := s.tagRepo.Update(bookID, id, name, normalizedColor)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.TagUpdated(tag))
	return tag, nil
}

// DeleteTag removes a tag that no transaction references
func (s *TagService) DeleteTag(actorID uuid.UUID, bookID int32, id int32) error {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return err
	}

	if _, err := s.tagRepo.GetByID(bookID, id); err != nil {
		return err
	}

	count, err := s.txRepo.CountByTag(bookID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrTagInUse
	}

	if err := s.tagRepo.Delete(bookID, id); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.TagDeleted(map[string]int32{"id": id, "bookId": bookID}))
	return nil
}

func validateTag(name, color string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return "", "", domain.ErrNameLength
	}
	normalized, err := domain.NormalizeHexColor(color)
	if err != nil {
		return "", "", err
	}
	return name, normalized, nil
}
