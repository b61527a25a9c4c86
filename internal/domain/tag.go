package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Tag is a book-scoped label with a color, stored as "#rrggbb".
type Tag struct {
	ID        int32     `json:"id"`
	BookID    int32     `json:"bookId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var hexColorPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{6})$`)

// NormalizeHexColor canonicalizes a color string to lowercase "#rrggbb".
func NormalizeHexColor(s string) (string, error) {
	m := hexColorPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", ErrInvalidColor
	}
	return "#" + strings.ToLower(m[1]), nil
}

// NormalizeRGBColor canonicalizes an {r,g,b} component color to "#rrggbb".
func NormalizeRGBColor(r, g, b int) (string, error) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return "", ErrInvalidColor
		}
	}
	return fmt.Sprintf("#%02x%02x%02x", r, g, b), nil
}

// TagRepository defines the interface for tag persistence operations
type TagRepository interface {
	Create(tag *Tag) (*Tag, error)
	GetByID(bookID int32, id int32) (*Tag, error)
	GetAllByBook(bookID int32) ([]*Tag, error)
	Update(bookID int32, id int32, name, color string) (*Tag, error)
	Delete(bookID int32, id int32) error
}
