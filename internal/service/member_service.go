package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/websocket"
)

// MemberService handles book membership and role management
type MemberService struct {
	memberRepo     domain.MemberRepository
	userRepo       domain.UserRepository
	bookRepo       domain.BookRepository
	currencyRepo   domain.CurrencyRepository
	guard          guard
	eventPublisher websocket.EventPublisher
}

// NewMemberService creates a new MemberService
func NewMemberService(memberRepo domain.MemberRepository, userRepo domain.UserRepository, bookRepo domain.BookRepository, currencyRepo domain.CurrencyRepository) *MemberService {
	return &MemberService{
		memberRepo:   memberRepo,
		userRepo:     userRepo,
		bookRepo:     bookRepo,
		currencyRepo: currencyRepo,
		guard:        guard{memberRepo: memberRepo},
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *MemberService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *MemberService) publishEvent(bookID int32, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(bookID, event)
	}
}

// GetMembers lists a book's members, creator first
func (s *MemberService) GetMembers(actorID uuid.UUID, bookID int32) ([]*domain.Member, error) {
	if err := s.guard.requireView(bookID, actorID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListByBook(bookID)
}

// InviteMember adds an existing user to the book by email. The creator role
// cannot be granted this way.
func (s *MemberService) InviteMember(actorID uuid.UUID, bookID int32, email string, permission domain.Permission) (*domain.Member, error) {
	if _, err := s.guard.requireManageMembers(bookID, actorID); err != nil {
		return nil, err
	}

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if !permission.Valid() || permission.IsCreator() {
		return nil, domain.ErrInvalidPermission
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}

	member, err := s.memberRepo.Add(&domain.Member{
		BookID:     bookID,
		UserID:     user.ID,
		Permission: permission,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.MemberAdded(member))
	return member, nil
}

// UpdateMemberPermission changes a member's role. The creator cannot be
// reroled except through TransferBook.
func (s *MemberService) UpdateMemberPermission(actorID uuid.UUID, bookID int32, targetID uuid.UUID, permission domain.Permission) (*domain.Member, error) {
	if _, err := s.guard.requireManageMembers(bookID, actorID); err != nil {
		return nil, err
	}
	if !permission.Valid() || permission.IsCreator() {
		return nil, domain.ErrInvalidPermission
	}

	target, err := s.memberRepo.Get(bookID, targetID)
	if err != nil {
		return nil, err
	}
	if target.Permission.IsCreator() {
		return nil, domain.ErrCreatorImmutable
	}

	member, err := s.memberRepo.UpdatePermission(bookID, targetID, permission)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.MemberUpdated(member))
	return member, nil
}

// RemoveMember removes a member from the book. The creator can never be
// removed, and managers cannot remove themselves.
func (s *MemberService) RemoveMember(actorID uuid.UUID, bookID int32, targetID uuid.UUID) error {
	if _, err := s.guard.requireManageMembers(bookID, actorID); err != nil {
		return err
	}

	target, err := s.memberRepo.Get(bookID, targetID)
	if err != nil {
		return err
	}
	if target.Permission.IsCreator() {
		return domain.ErrCreatorImmutable
	}
	if target.UserID == actorID {
		return domain.ErrCannotRemoveSelf
	}

	if err := s.memberRepo.Remove(bookID, targetID); err != nil {
		return err
	}

	s.publishEvent(bookID, websocket.MemberRemoved(map[string]any{"bookId": bookID, "userId": targetID}))
	return nil
}

// TransferBook hands the creator role to another member. The former creator
// stays on the book as a manager, so exactly one creator exists afterwards.
func (s *MemberService) TransferBook(actorID uuid.UUID, bookID int32, newOwnerID uuid.UUID) ([]*domain.Member, error) {
	if _, err := s.guard.requireCreator(bookID, actorID); err != nil {
		return nil, err
	}
	if newOwnerID == actorID {
		return nil, domain.ErrTransferToSelf
	}

	if _, err := s.memberRepo.Get(bookID, newOwnerID); err != nil {
		return nil, err
	}

	// Rates resolve from the owner's currency registry, so every currency in
	// the book's set must exist in the new owner's scope before ownership
	// moves. Copy the ones they are missing.
	book, err := s.bookRepo.GetByID(bookID)
	if err != nil {
		return nil, err
	}
	for _, code := range book.CurrencyCodes {
		if _, err := s.currencyRepo.GetByCode(newOwnerID, code); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrCurrencyNotFound) {
			return nil, err
		}
		cur, err := s.currencyRepo.GetByCode(book.OwnerID, code)
		if err != nil {
			return nil, err
		}
		if _, err := s.currencyRepo.Create(&domain.Currency{
			UserID:          newOwnerID,
			Code:            cur.Code,
			Name:            cur.Name,
			Symbol:          cur.Symbol,
			Rate:            cur.Rate,
			IsSystemDefault: cur.IsSystemDefault,
		}); err != nil {
			return nil, err
		}
	}

	if err := s.memberRepo.Transfer(bookID, actorID, newOwnerID); err != nil {
		return nil, err
	}

	members, err := s.memberRepo.ListByBook(bookID)
	if err != nil {
		return nil, err
	}

	s.publishEvent(bookID, websocket.MemberUpdated(members))
	return members, nil
}
