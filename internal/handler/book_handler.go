package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/middleware"
	"github.com/moneybook/moneybook-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// BookHandler handles book-related HTTP requests
type BookHandler struct {
	bookService *service.BookService
}

// NewBookHandler creates a new BookHandler
func NewBookHandler(bookService *service.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// CreateBookRequest represents the create book request body
type CreateBookRequest struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	CurrencyCodes   []string `json:"currencyCodes"`
	DefaultCurrency string   `json:"defaultCurrency"`
	Timezone        string   `json:"timezone,omitempty"`
}

// UpdateBookRequest represents the update book request body. The timezone
// is fixed at creation.
type UpdateBookRequest struct {
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	CurrencyCodes   []string `json:"currencyCodes"`
	DefaultCurrency string   `json:"defaultCurrency"`
}

// BookResponse represents a book in API responses
type BookResponse struct {
	ID              int32    `json:"id"`
	Name            string   `json:"name"`
	Description     *string  `json:"description,omitempty"`
	CurrencyCodes   []string `json:"currencyCodes"`
	DefaultCurrency string   `json:"defaultCurrency"`
	OwnerID         string   `json:"ownerId"`
	Timezone        string   `json:"timezone"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
}

// CreateBook godoc
// @Summary Create a book
// @Description Create a ledger with a currency set. The caller becomes its creator member.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBookRequest true "Book creation request"
// @Success 201 {object} BookResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /books [post]
func (h *BookHandler) CreateBook(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	book, err := h.bookService.CreateBook(userID, service.CreateBookInput{
		Name:            req.Name,
		Description:     req.Description,
		CurrencyCodes:   req.CurrencyCodes,
		DefaultCurrency: req.DefaultCurrency,
		Timezone:        req.Timezone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDefaultCurrencyMissing) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "defaultCurrency", Message: "Must be one of the book's currency codes"},
			})
		}
		if errors.Is(err, domain.ErrCurrencyNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "currencyCodes", Message: "Every code must exist in your currency registry"},
			})
		}
		return respondDomainError(c, err, "Failed to create book")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", book.ID).Str("name", book.Name).Msg("Book created")
	return c.JSON(http.StatusCreated, toBookResponse(book))
}

// GetBooks godoc
// @Summary List books
// @Description Get all books the user is a member of
// @Tags books
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BookResponse
// @Failure 401 {object} ProblemDetails
// @Router /books [get]
func (h *BookHandler) GetBooks(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	books, err := h.bookService.GetBooks(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get books")
		return NewInternalError(c, "Failed to get books")
	}

	response := make([]BookResponse, len(books))
	for i, book := range books {
		response[i] = toBookResponse(book)
	}
	return c.JSON(http.StatusOK, response)
}

// GetBook handles GET /api/v1/books/:bookId
func (h *BookHandler) GetBook(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	book, err := h.bookService.GetBook(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get book")
	}

	return c.JSON(http.StatusOK, toBookResponse(book))
}

// UpdateBook handles PUT /api/v1/books/:bookId
func (h *BookHandler) UpdateBook(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req UpdateBookRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	book, err := h.bookService.UpdateBook(userID, bookID, service.UpdateBookInput{
		Name:            req.Name,
		Description:     req.Description,
		CurrencyCodes:   req.CurrencyCodes,
		DefaultCurrency: req.DefaultCurrency,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCurrencyInUse) {
			return NewConflictError(c, "A removed currency is still used by an account")
		}
		return respondDomainError(c, err, "Failed to update book")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", book.ID).Msg("Book updated")
	return c.JSON(http.StatusOK, toBookResponse(book))
}

// DeleteBook handles DELETE /api/v1/books/:bookId
func (h *BookHandler) DeleteBook(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	if err := h.bookService.DeleteBook(userID, bookID); err != nil {
		if errors.Is(err, domain.ErrBookHasAccounts) {
			return NewConflictError(c, "Delete all accounts before deleting the book")
		}
		return respondDomainError(c, err, "Failed to delete book")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Msg("Book deleted")
	return c.NoContent(http.StatusNoContent)
}

func toBookResponse(book *domain.Book) BookResponse {
	return BookResponse{
		ID:              book.ID,
		Name:            book.Name,
		Description:     book.Description,
		CurrencyCodes:   book.CurrencyCodes,
		DefaultCurrency: book.DefaultCurrency,
		OwnerID:         book.OwnerID.String(),
		Timezone:        book.Timezone,
		CreatedAt:       book.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       book.UpdatedAt.Format(time.RFC3339),
	}
}
