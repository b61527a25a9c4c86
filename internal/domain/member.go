package domain

import (
	"time"

	"github.com/google/uuid"
)

// Permission is a book member's role. Roles form a strict capability order:
// creator > manager > collaborator > viewer.
type Permission string

const (
	PermissionCreator      Permission = "creator"
	PermissionManager      Permission = "manager"
	PermissionCollaborator Permission = "collaborator"
	PermissionViewer       Permission = "viewer"
)

var permissionRank = map[Permission]int{
	PermissionViewer:       0,
	PermissionCollaborator: 1,
	PermissionManager:      2,
	PermissionCreator:      3,
}

// Valid reports whether p is one of the four known roles.
func (p Permission) Valid() bool {
	_, ok := permissionRank[p]
	return ok
}

// CanView reports whether the role can read book data. Every member can.
func (p Permission) CanView() bool {
	return p.Valid()
}

// CanTransact reports whether the role can create, edit, and delete
// transactions, accounts, categories, tags, persons, and budgets.
func (p Permission) CanTransact() bool {
	return permissionRank[p] >= permissionRank[PermissionCollaborator]
}

// CanManageBook reports whether the role can edit or delete the book itself.
func (p Permission) CanManageBook() bool {
	return permissionRank[p] >= permissionRank[PermissionManager]
}

// CanManageMembers reports whether the role can invite, remove, or rerole
// other members.
func (p Permission) CanManageMembers() bool {
	return permissionRank[p] >= permissionRank[PermissionManager]
}

// IsCreator reports whether the role is the single book creator.
func (p Permission) IsCreator() bool {
	return p == PermissionCreator
}

// Member is a user's role within a book. Exactly one member per book holds
// the creator role, changeable only through an explicit transfer.
type Member struct {
	BookID     int32      `json:"bookId"`
	UserID     uuid.UUID  `json:"userId"`
	Email      string     `json:"email"`
	Name       *string    `json:"name,omitempty"`
	Permission Permission `json:"permission"`
	JoinedAt   time.Time  `json:"joinedAt"`
}

// MemberRepository defines the interface for membership persistence.
// Transfer swaps the creator role to newOwner and demotes the current
// creator to manager in a single transaction.
type MemberRepository interface {
	Get(bookID int32, userID uuid.UUID) (*Member, error)
	ListByBook(bookID int32) ([]*Member, error)
	Add(member *Member) (*Member, error)
	UpdatePermission(bookID int32, userID uuid.UUID, permission Permission) (*Member, error)
	Remove(bookID int32, userID uuid.UUID) error
	Transfer(bookID int32, oldOwner, newOwner uuid.UUID) error
}
