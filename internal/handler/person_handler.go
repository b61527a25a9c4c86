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

// PersonHandler handles person/organization HTTP requests
type PersonHandler struct {
	personService *service.PersonService
}

// NewPersonHandler creates a new PersonHandler
func NewPersonHandler(personService *service.PersonService) *PersonHandler {
	return &PersonHandler{
		personService: personService,
	}
}

// PersonRequest represents the create/update person request body
type PersonRequest struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Contact *string `json:"contact,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// PersonResponse represents a person in API responses
type PersonResponse struct {
	ID        int32   `json:"id"`
	BookID    int32   `json:"bookId"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Contact   *string `json:"contact,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
}

// CreatePerson godoc
// @Summary Create a person
// @Description Create a person or organization counterparty in the book
// @Tags persons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body PersonRequest true "Person creation request"
// @Success 201 {object} PersonResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/persons [post]
func (h *PersonHandler) CreatePerson(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req PersonRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	person, err := h.personService.CreatePerson(userID, bookID, service.CreatePersonInput{
		Name:    req.Name,
		Type:    domain.PersonType(req.Type),
		Contact: req.Contact,
		Notes:   req.Notes,
	})
	if err != nil {
		return respondPersonError(c, err, "Failed to create person")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("person_id", person.ID).Msg("Person created")
	return c.JSON(http.StatusCreated, toPersonResponse(person))
}

// GetPersons handles GET /api/v1/books/:bookId/persons
func (h *PersonHandler) GetPersons(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	persons, err := h.personService.GetPersons(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get persons")
	}

	response := make([]PersonResponse, len(persons))
	for i, person := range persons {
		response[i] = toPersonResponse(person)
	}
	return c.JSON(http.StatusOK, response)
}

// GetPerson handles GET /api/v1/books/:bookId/persons/:id
func (h *PersonHandler) GetPerson(c echo.Context) error {
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
		return NewValidationError(c, "Invalid person ID", nil)
	}

	person, err := h.personService.GetPersonByID(userID, bookID, id)
	if err != nil {
		return respondDomainError(c, err, "Failed to get person")
	}

	return c.JSON(http.StatusOK, toPersonResponse(person))
}

// UpdatePerson handles PUT /api/v1/books/:bookId/persons/:id
func (h *PersonHandler) UpdatePerson(c echo.Context) error {
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
		return NewValidationError(c, "Invalid person ID", nil)
	}

	var req PersonRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	person, err := h.personService.UpdatePerson(userID, bookID, id, service.CreatePersonInput{
		Name:    req.Name,
		Type:    domain.PersonType(req.Type),
		Contact: req.Contact,
		Notes:   req.Notes,
	})
	if err != nil {
		return respondPersonError(c, err, "Failed to update person")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("person_id", person.ID).Msg("Person updated")
	return c.JSON(http.StatusOK, toPersonResponse(person))
}

// DeletePerson handles DELETE /api/v1/books/:bookId/persons/:id
func (h *PersonHandler) DeletePerson(c echo.Context) error {
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
		return NewValidationError(c, "Invalid person ID", nil)
	}

	if err := h.personService.DeletePerson(userID, bookID, id); err != nil {
		if errors.Is(err, domain.ErrPersonInUse) {
			return NewConflictError(c, "Person is referenced by transactions")
		}
		return respondDomainError(c, err, "Failed to delete person")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("person_id", id).Msg("Person deleted")
	return c.NoContent(http.StatusNoContent)
}

func respondPersonError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, domain.ErrNameLength) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "name", Message: "Name must be 1-50 characters"},
		})
	}
	if errors.Is(err, domain.ErrInvalidPersonType) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be one of: person, organization"},
		})
	}
	return respondDomainError(c, err, fallback)
}

func toPersonResponse(person *domain.Person) PersonResponse {
	return PersonResponse{
		ID:        person.ID,
		BookID:    person.BookID,
		Name:      person.Name,
		Type:      string(person.Type),
		Contact:   person.Contact,
		Notes:     person.Notes,
		CreatedAt: person.CreatedAt.Format(time.RFC3339),
		UpdatedAt: person.UpdatedAt.Format(time.RFC3339),
	}
}
