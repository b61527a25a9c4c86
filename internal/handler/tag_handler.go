package handler

import (
	"encoding/json"
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

// TagHandler handles tag HTTP requests
type TagHandler struct {
	tagService *service.TagService
}

// NewTagHandler creates a new TagHandler
func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{
		tagService: tagService,
	}
}

// TagRequest represents the create/update tag request body. Color accepts
// either a hex string or an {r,g,b} component object.
type TagRequest struct {
	Name  string          `json:"name"`
	Color json.RawMessage `json:"color"`
}

// decodeTagColor reads the polymorphic color field. String input is passed
// through for the service to normalize; component objects are converted to
// hex here.
func decodeTagColor(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var rgb struct {
		R int `json:"r"`
		G int `json:"g"`
		B int `json:"b"`
	}
	if err := json.Unmarshal(raw, &rgb); err != nil {
		return "", domain.ErrInvalidColor
	}
	return domain.NormalizeRGBColor(rgb.R, rgb.G, rgb.B)
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID        int32  `json:"id"`
	BookID    int32  `json:"bookId"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateTag godoc
// @Summary Create a tag
// @Description Create a tag. Color accepts a hex string or an {r,g,b} object; both are stored as lowercase #rrggbb.
// @Tags tags
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body TagRequest true "Tag creation request"
// @Success 201 {object} TagResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/tags [post]
func (h *TagHandler) CreateTag(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req TagRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	color, err := decodeTagColor(req.Color)
	if err != nil {
		return respondTagError(c, err, "Failed to create tag")
	}

	tag, err := h.tagService.CreateTag(userID, bookID, req.Name, color)
	if err != nil {
		return respondTagError(c, err, "Failed to create tag")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("tag_id", tag.ID).Msg("Tag created")
	return c.JSON(http.StatusCreated, toTagResponse(tag))
}

// GetTags handles GET /api/v1/books/:bookId/tags
func (h *TagHandler) GetTags(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	tags, err := h.tagService.GetTags(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get tags")
	}

	response := make([]TagResponse, len(tags))
	for i, tag := range tags {
		response[i] = toTagResponse(tag)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTag handles GET /api/v1/books/:bookId/tags/:id
func (h *TagHandler) GetTag(c echo.Context) error {
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
		return NewValidationError(c, "Invalid tag ID", nil)
	}

	tag, err := h.tagService.GetTagByID(userID, bookID, id)
	if err != nil {
		return respondDomainError(c, err, "Failed to get tag")
	}

	return c.JSON(http.StatusOK, toTagResponse(tag))
}

// UpdateTag handles PUT /api/v1/books/:bookId/tags/:id
func (h *TagHandler) UpdateTag(c echo.Context) error {
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
		return NewValidationError(c, "Invalid tag ID", nil)
	}

	var req TagRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	color, err := decodeTagColor(req.Color)
	if err != nil {
		return respondTagError(c, err, "Failed to update tag")
	}

	tag, err := h.tagService.UpdateTag(userID, bookID, id, req.Name, color)
	if err != nil {
		return respondTagError(c, err, "Failed to update tag")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("tag_id", tag.ID).Msg("Tag updated")
	return c.JSON(http.StatusOK, toTagResponse(tag))
}

// DeleteTag handles DELETE /api/v1/books/:bookId/tags/:id
func (h *TagHandler) DeleteTag(c echo.Context) error {
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
		return NewValidationError(c, "Invalid tag ID", nil)
	}

	if err := h.tagService.DeleteTag(userID, bookID, id); err != nil {
		if errors.Is(err, domain.ErrTagInUse) {
			return NewConflictError(c, "Tag is referenced by transactions")
		}
		return respondDomainError(c, err, "Failed to delete tag")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("tag_id", id).Msg("Tag deleted")
	return c.NoContent(http.StatusNoContent)
}

func respondTagError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, domain.ErrNameLength) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 1-20 characters"},
		})
	}
	if errors.Is(err, domain.ErrInvalidColor) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "color", Message: "Must be a 6-digit hex color like #1a2b3c"},
		})
	}
	return respondDomainError(c, err, fallback)
}

func toTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		BookID:    tag.BookID,
		Name:      tag.Name,
		Color:     tag.Color,
		CreatedAt: tag.CreatedAt.Format(time.RFC3339),
		UpdatedAt: tag.UpdatedAt.Format(time.RFC3339),
	}
}
