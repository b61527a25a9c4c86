package service

import (
	"errors"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// guard centralizes per-book permission checks shared by the services.
// Every book-scoped operation resolves the caller's membership first and
// maps a missing row to ErrNotMember so outsiders cannot probe book IDs.
type guard struct {
	memberRepo domain.MemberRepository
}

func (g guard) member(bookID int32, userID uuid.UUID) (*domain.Member, error) {
	m, err := g.memberRepo.Get(bookID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrMemberNotFound) {
			return nil, domain.ErrNotMember
		}
		return nil, err
	}
	return m, nil
}

func (g guard) requireView(bookID int32, userID uuid.UUID) error {
	_, err := g.member(bookID, userID)
	return err
}

func (g guard) requireTransact(bookID int32, userID uuid.UUID) error {
	m, err := g.member(bookID, userID)
	if err != nil {
		return err
	}
	if !m.Permission.CanTransact() {
		return domain.ErrInsufficientRole
	}
	return nil
}

func (g guard) requireManageBook(bookID int32, userID uuid.UUID) error {
	m, err := g.member(bookID, userID)
	if err != nil {
		return err
	}
	if !m.Permission.CanManageBook() {
		return domain.ErrInsufficientRole
	}
	return nil
}

func (g guard) requireManageMembers(bookID int32, userID uuid.UUID) (*domain.Member, error) {
	m, err := g.member(bookID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Permission.CanManageMembers() {
		return nil, domain.ErrInsufficientRole
	}
	return m, nil
}

func (g guard) requireCreator(bookID int32, userID uuid.UUID) (*domain.Member, error) {
	m, err := g.member(bookID, userID)
	if err != nil {
		return nil, err
	}
	if !m.Permission.IsCreator() {
		return nil, domain.ErrOnlyCreatorTransfer
	}
	return m, nil
}
