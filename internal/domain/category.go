package domain

import "time"

// Category is a book-scoped transaction label typed income, expense, or
// transfer. A transaction may only reference a category of matching type.
type Category struct {
	ID        int32           `json:"id"`
	BookID    int32           `json:"bookId"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// CategoryRepository defines the interface for category persistence operations
type CategoryRepository interface {
	Create(category *Category) (*Category, error)
	GetByID(bookID int32, id int32) (*Category, error)
	GetAllByBook(bookID int32) ([]*Category, error)
	Update(bookID int32, id int32, name string) (*Category, error)
	Delete(bookID int32, id int32) error
}
