package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/middleware"
	"github.com/moneybook/moneybook-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// APITokenHandler handles API token management HTTP requests. These routes
// only accept session (JWT) authentication; a token cannot mint or revoke
// other tokens.
type APITokenHandler struct {
	apiTokenService *service.APITokenService
}

// NewAPITokenHandler creates a new APITokenHandler
func NewAPITokenHandler(apiTokenService *service.APITokenService) *APITokenHandler {
	return &APITokenHandler{
		apiTokenService: apiTokenService,
	}
}

// CreateAPITokenRequest represents the create token request body
type CreateAPITokenRequest struct {
	Description string `json:"description"`
}

// CreateAPIToken godoc
// @Summary Create an API token
// @Description Create a personal access token. The full token is shown exactly once.
// @Tags api-tokens
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAPITokenRequest true "Token creation request"
// @Success 201 {object} domain.CreateAPITokenResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /api-tokens [post]
func (h *APITokenHandler) CreateAPIToken(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateAPITokenRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description is required"},
		})
	}
	if len(description) > 255 {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "description", Message: "Description must be at most 255 characters"},
		})
	}

	token, err := h.apiTokenService.Create(c.Request().Context(), userID, description)
	if err != nil {
		if errors.Is(err, domain.ErrTooManyAPITokens) {
			return NewConflictError(c, "Active token limit reached; revoke an existing token first")
		}
		return respondDomainError(c, err, "Failed to create API token")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("token_id", token.ID.String()).
		Msg("API token created")

	return c.JSON(http.StatusCreated, token)
}

// GetAPITokens godoc
// @Summary List API tokens
// @Description Get the user's active tokens. Hashes and full tokens are never returned.
// @Tags api-tokens
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.APITokenResponse
// @Failure 401 {object} ProblemDetails
// @Router /api-tokens [get]
func (h *APITokenHandler) GetAPITokens(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	tokens, err := h.apiTokenService.GetByUser(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get API tokens")
		return NewInternalError(c, "Failed to get API tokens")
	}

	return c.JSON(http.StatusOK, tokens)
}

// RevokeAPIToken godoc
// @Summary Revoke an API token
// @Description Revoke a token permanently. Requests using it fail from the next call on.
// @Tags api-tokens
// @Security BearerAuth
// @Param id path string true "Token ID"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Router /api-tokens/{id} [delete]
func (h *APITokenHandler) RevokeAPIToken(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	tokenID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "Invalid token ID", nil)
	}

	if err := h.apiTokenService.Revoke(c.Request().Context(), userID, tokenID); err != nil {
		return respondDomainError(c, err, "Failed to revoke API token")
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("token_id", tokenID.String()).
		Msg("API token revoked")

	return c.NoContent(http.StatusNoContent)
}
