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
	"github.com/shopspring/decimal"
)

// CurrencyHandler handles currency registry HTTP requests
type CurrencyHandler struct {
	currencyService *service.CurrencyService
}

// NewCurrencyHandler creates a new CurrencyHandler
func NewCurrencyHandler(currencyService *service.CurrencyService) *CurrencyHandler {
	return &CurrencyHandler{
		currencyService: currencyService,
	}
}

// CurrencyRequest represents the create/update currency request body
type CurrencyRequest struct {
	Code   string `json:"code,omitempty"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Rate   string `json:"rate"`
}

// CurrencyResponse represents a currency in API responses
type CurrencyResponse struct {
	Code            string `json:"code"`
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Rate            string `json:"rate"`
	IsSystemDefault bool   `json:"isSystemDefault"`
	CreatedAt       string `json:"createdAt"`
}

// GetCurrencies godoc
// @Summary List the user's currency registry
// @Description Get all currencies in the user's registry. A first read seeds the system defaults.
// @Tags currencies
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CurrencyResponse
// @Failure 401 {object} ProblemDetails
// @Router /currencies [get]
func (h *CurrencyHandler) GetCurrencies(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	currencies, err := h.currencyService.GetCurrencies(userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get currencies")
		return NewInternalError(c, "Failed to get currencies")
	}

	response := make([]CurrencyResponse, len(currencies))
	for i, currency := range currencies {
		response[i] = toCurrencyResponse(currency)
	}
	return c.JSON(http.StatusOK, response)
}

// GetCurrency handles GET /api/v1/currencies/:code
func (h *CurrencyHandler) GetCurrency(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	currency, err := h.currencyService.GetCurrency(userID, c.Param("code"))
	if err != nil {
		if errors.Is(err, domain.ErrCurrencyNotFound) {
			return NewNotFoundError(c, "Currency not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get currency")
		return NewInternalError(c, "Failed to get currency")
	}

	return c.JSON(http.StatusOK, toCurrencyResponse(currency))
}

// CreateCurrency godoc
// @Summary Add a currency to the registry
// @Description Rate is units of this currency per one unit of the base currency
// @Tags currencies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CurrencyRequest true "Currency creation request"
// @Success 201 {object} CurrencyResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /currencies [post]
func (h *CurrencyHandler) CreateCurrency(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CurrencyRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return NewValidationError(c, "Invalid rate", []ValidationError{
			{Field: "rate", Message: "Must be a valid decimal number"},
		})
	}

	currency, err := h.currencyService.CreateCurrency(userID, service.CreateCurrencyInput{
		Code:   req.Code,
		Name:   req.Name,
		Symbol: req.Symbol,
		Rate:   rate,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateCurrency) {
			return NewConflictError(c, "Currency code already exists")
		}
		return respondDomainError(c, err, "Failed to create currency")
	}

	log.Info().Str("user_id", userID.String()).Str("code", currency.Code).Msg("Currency created")
	return c.JSON(http.StatusCreated, toCurrencyResponse(currency))
}

// UpdateCurrency handles PUT /api/v1/currencies/:code. The code itself never changes.
func (h *CurrencyHandler) UpdateCurrency(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CurrencyRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		return NewValidationError(c, "Invalid rate", []ValidationError{
			{Field: "rate", Message: "Must be a valid decimal number"},
		})
	}

	currency, err := h.currencyService.UpdateCurrency(userID, c.Param("code"), service.UpdateCurrencyInput{
		Name:   req.Name,
		Symbol: req.Symbol,
		Rate:   rate,
	})
	if err != nil {
		return respondDomainError(c, err, "Failed to update currency")
	}

	log.Info().Str("user_id", userID.String()).Str("code", currency.Code).Msg("Currency updated")
	return c.JSON(http.StatusOK, toCurrencyResponse(currency))
}

// DeleteCurrency handles DELETE /api/v1/currencies/:code
func (h *CurrencyHandler) DeleteCurrency(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	code := c.Param("code")
	if err := h.currencyService.DeleteCurrency(userID, code); err != nil {
		if errors.Is(err, domain.ErrSystemDefaultCurrency) {
			return NewConflictError(c, "System default currencies cannot be deleted")
		}
		if errors.Is(err, domain.ErrCurrencyInUse) {
			return NewConflictError(c, "Currency is used by a book or account")
		}
		return respondDomainError(c, err, "Failed to delete currency")
	}

	log.Info().Str("user_id", userID.String()).Str("code", code).Msg("Currency deleted")
	return c.NoContent(http.StatusNoContent)
}

func toCurrencyResponse(currency *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:            currency.Code,
		Name:            currency.Name,
		Symbol:          currency.Symbol,
		Rate:            currency.Rate.String(),
		IsSystemDefault: currency.IsSystemDefault,
		CreatedAt:       currency.CreatedAt.Format(time.RFC3339),
	}
}
