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

// CategoryHandler handles category HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// CategoryRequest represents the create/update category request body.
// The type is ignored on update; it is fixed at creation.
type CategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        int32  `json:"id"`
	BookID    int32  `json:"bookId"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateCategory godoc
// @Summary Create a category
// @Description Create an income, expense or transfer category in the book
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body CategoryRequest true "Category creation request"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(userID, bookID, req.Name, domain.TransactionType(req.Type))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransactionType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Must be one of: income, expense, transfer"},
			})
		}
		if errors.Is(err, domain.ErrNameLength) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 1-20 characters"},
			})
		}
		return respondDomainError(c, err, "Failed to create category")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("category_id", category.ID).Msg("Category created")
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories handles GET /api/v1/books/:bookId/categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	categories, err := h.categoryService.GetCategories(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get categories")
	}

	response := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		response[i] = toCategoryResponse(category)
	}
	return c.JSON(http.StatusOK, response)
}

// GetCategory handles GET /api/v1/books/:bookId/categories/:id
func (h *CategoryHandler) GetCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	category, err := h.categoryService.GetCategoryByID(userID, bookID, id)
	if err != nil {
		return respondDomainError(c, err, "Failed to get category")
	}

	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// UpdateCategory handles PUT /api/v1/books/:bookId/categories/:id. Only the
// name can change.
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.UpdateCategory(userID, bookID, id, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNameLength) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 1-20 characters"},
			})
		}
		return respondDomainError(c, err, "Failed to update category")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("category_id", category.ID).Msg("Category updated")
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /api/v1/books/:bookId/categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}
	id, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category ID", nil)
	}

	if err := h.categoryService.DeleteCategory(userID, bookID, id); err != nil {
		if errors.Is(err, domain.ErrCategoryInUse) {
			return NewConflictError(c, "Category is referenced by transactions or budgets")
		}
		return respondDomainError(c, err, "Failed to delete category")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("category_id", id).Msg("Category deleted")
	return c.NoContent(http.StatusNoContent)
}

func toCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID,
		BookID:    category.BookID,
		Name:      category.Name,
		Type:      string(category.Type),
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
		UpdatedAt: category.UpdatedAt.Format(time.RFC3339),
	}
}
