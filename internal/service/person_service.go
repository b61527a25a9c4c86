package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
)

// PersonService handles counterparty (person/organization) business logic
type PersonService struct {
	personRepo     domain.PersonRepository
	txRepo         domain.TransactionRepository
	guard          guard
	eventPublisher websocket.EventPublisher
}

// NewPersonService creates a new PersonService
func NewPersonService(personRepo domain.PersonRepository, txRepo domain.TransactionRepository, memberRepo domain.MemberRepository) *PersonService {
	return &PersonService{
		personRepo: personRepo,
		txRepo:     txRepo,
		guard:      guard{memberRepo: memberRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PersonService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PersonService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// CreatePersonInput holds the input for creating a person
type CreatePersonInput struct {
	Name    string
	Type    domain.PersonType
	Contact *string
	Notes   *string
}

// CreatePerson creates a person or organization in the book
func (s *PersonService) CreatePerson(actorID uuid.UUID, bookID int32, input CreatePersonInput) (*domain.Person, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	name, err := validatePerson(input.Name, input.Type)
	if err != nil {
		return nil, err
	}

	person, err := s.personRepo.Create(&domain.Person{
		BookID:  bookID,
		Name:    name,
		Type:    input.Type,
		Contact: input.Contact,
		Notes:   input.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.PersonCreated(person))
	return person, nil
}

// GetPersons retrieves all persons for a book
func (s *PersonService) GetPersons(actorID uuid.UUID, bookID int32) ([]*domain.Person, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.personRepo.GetAllByBook(bookID)
}

// GetPersonByID retrieves a person by ID within a book
func (s *PersonService) GetPersonByID(actorID uuid.UUID, bookID int32, id int32) (*domain.Person, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.personRepo.GetByID(bookID, id)
}

// UpdatePerson changes a person's fields
func (s *PersonService) UpdatePerson(actorID uuid.UUID, bookID int32, id int32, input CreatePersonInput) (*domain.Person, error) {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return nil, err
	}

	name, err := validatePerson(input.Name, input.Type)
	if err != nil {
		return nil, err
	}

	person, err := s.personRepo.Update(bookID, id, name, input.Type, input.Contact, input.Notes)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.PersonUpdated(person))
	return person, nil
}

// DeletePerson removes a person that no transaction references
func (s *PersonService) DeletePerson(actorID uuid.UUID, bookID int32, id int32) error {
	if err := s.guard.requireTransact(bookID, actorID); err != nil {
		return err
	}

	if _, err := s.personRepo.GetByID(bookID, id); err != nil {
		return err
	}

	count, err := s.txRepo.CountByPerson(bookID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrPersonInUse
	}

	if err := s.personRepo.Delete(bookID, id); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.PersonDeleted(map[string]int32{"id": id, "bookId": bookID}))
	return nil
}

func validatePerson(rawName string, personType domain.PersonType) (string, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return "", domain.ErrNameRequired
	}
	if len(name) > domain.MaxNameLength {
		return "", domain.ErrNameLength
	}
	switch personType {
	case domain.PersonTypeIndividual, domain.PersonTypeOrganization:
	default:
		return "", domain.ErrInvalidPersonType
	}
	return name, nil
}
