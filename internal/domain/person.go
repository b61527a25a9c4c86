package domain

import "time"

type PersonType string

const (
	PersonTypeIndividual   PersonType = "person"
	PersonTypeOrganization PersonType = "organization"
)

// Person is a book-scoped counterparty: an individual or an organization.
type Person struct {
	ID        int32      `json:"id"`
	BookID    int32      `json:"bookId"`
	Name      string     `json:"name"`
	Type      PersonType `json:"type"`
	Contact   *string    `json:"contact,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// PersonRepository defines the interface for person persistence operations
type PersonRepository interface {
	Create(person *Person) (*Person, error)
	GetByID(bookID int32, id int32) (*Person, error)
	GetAllByBook(bookID int32) ([]*Person, error)
	Update(bookID int32, id int32, name string, personType PersonType, contact, notes *string) (*Person, error)
	Delete(bookID int32, id int32) error
}
