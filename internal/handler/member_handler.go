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

// MemberHandler handles book membership HTTP requests
type MemberHandler struct {
	memberService *service.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
	}
}

// InviteMemberRequest represents the invite member request body
type InviteMemberRequest struct {
	Email      string `json:"email"`
	Permission string `json:"permission"`
}

// UpdateMemberRequest represents the update member permission request body
type UpdateMemberRequest struct {
	Permission string `json:"permission"`
}

// TransferBookRequest represents the book ownership transfer request body
type TransferBookRequest struct {
	NewOwnerID string `json:"newOwnerId"`
}

// MemberResponse represents a book member in API responses
type MemberResponse struct {
	UserID     string  `json:"userId"`
	Email      string  `json:"email"`
	Name       *string `json:"name,omitempty"`
	Permission string  `json:"permission"`
	JoinedAt   string  `json:"joinedAt"`
}

// GetMembers godoc
// @Summary List book members
// @Tags members
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Success 200 {array} MemberResponse
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/members [get]
func (h *MemberHandler) GetMembers(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	members, err := h.memberService.GetMembers(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get members")
	}

	return c.JSON(http.StatusOK, toMemberResponses(members))
}

// InviteMember godoc
// @Summary Invite a user to a book
// @Description Add an existing user as a member by email. The creator role cannot be granted.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body InviteMemberRequest true "Invitation request"
// @Success 201 {object} MemberResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /books/{bookId}/members [post]
func (h *MemberHandler) InviteMember(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req InviteMemberRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	member, err := h.memberService.InviteMember(userID, bookID, req.Email, domain.Permission(req.Permission))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPermission) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "permission", Message: "Must be one of: manager, collaborator, viewer"},
			})
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "email", Message: "No user with this email"},
			})
		}
		if errors.Is(err, domain.ErrAlreadyMember) {
			return NewConflictError(c, "User is already a member of this book")
		}
		return respondDomainError(c, err, "Failed to invite member")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Str("member_id", member.UserID.String()).
		Str("permission", string(member.Permission)).
		Msg("Member invited")

	return c.JSON(http.StatusCreated, toMemberResponse(member))
}

// UpdateMemberPermission handles PUT /api/v1/books/:bookId/members/:userId
func (h *MemberHandler) UpdateMemberPermission(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	var req UpdateMemberRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	member, err := h.memberService.UpdateMemberPermission(userID, bookID, targetID, domain.Permission(req.Permission))
	if err != nil {
		if errors.Is(err, domain.ErrCreatorImmutable) {
			return NewForbiddenError(c, "The creator's role can only change through an ownership transfer")
		}
		return respondDomainError(c, err, "Failed to update member")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Str("member_id", targetID.String()).
		Str("permission", string(member.Permission)).
		Msg("Member permission updated")

	return c.JSON(http.StatusOK, toMemberResponse(member))
}

// RemoveMember handles DELETE /api/v1/books/:bookId/members/:userId
func (h *MemberHandler) RemoveMember(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	targetID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	if err := h.memberService.RemoveMember(userID, bookID, targetID); err != nil {
		if errors.Is(err, domain.ErrCreatorImmutable) {
			return NewForbiddenError(c, "The creator cannot be removed")
		}
		if errors.Is(err, domain.ErrCannotRemoveSelf) {
			return NewForbiddenError(c, "You cannot remove yourself from a book")
		}
		return respondDomainError(c, err, "Failed to remove member")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Str("member_id", targetID.String()).
		Msg("Member removed")

	return c.NoContent(http.StatusNoContent)
}

// TransferBook godoc
// @Summary Transfer book ownership
// @Description Move the creator role to another member. The former creator becomes a manager.
// @Tags members
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body TransferBookRequest true "Transfer request"
// @Success 200 {array} MemberResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/transfer [post]
func (h *MemberHandler) TransferBook(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req TransferBookRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	newOwnerID, err := uuid.Parse(req.NewOwnerID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "newOwnerId", Message: "Must be a valid user ID"},
		})
	}

	members, err := h.memberService.TransferBook(userID, bookID, newOwnerID)
	if err != nil {
		if errors.Is(err, domain.ErrOnlyCreatorTransfer) {
			return NewForbiddenError(c, "Only the creator can transfer a book")
		}
		if errors.Is(err, domain.ErrMemberNotFound) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "newOwnerId", Message: "New owner must already be a member"},
			})
		}
		return respondDomainError(c, err, "Failed to transfer book")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Str("new_owner_id", newOwnerID.String()).
		Msg("Book ownership transferred")

	return c.JSON(http.StatusOK, toMemberResponses(members))
}

func toMemberResponse(member *domain.Member) MemberResponse {
	return MemberResponse{
		UserID:     member.UserID.String(),
		Email:      member.Email,
		Name:       member.Name,
		Permission: string(member.Permission),
		JoinedAt:   member.JoinedAt.Format(time.RFC3339),
	}
}

func toMemberResponses(members []*domain.Member) []MemberResponse {
	response := make([]MemberResponse, len(members))
	for i, member := range members {
		response[i] = toMemberResponse(member)
	}
	return response
}
