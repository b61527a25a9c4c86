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

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// AccountRequest represents the create/update account request body
type AccountRequest struct {
	Name           string `json:"name"`
	Currency       string `json:"currency"`
	InitialBalance string `json:"initialBalance,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID              int32  `json:"id"`
	BookID          int32  `json:"bookId"`
	Name            string `json:"name"`
	Currency        string `json:"currency"`
	InitialBalance  string `json:"initialBalance"`
	TotalIncome     string `json:"totalIncome"`
	TotalExpense    string `json:"totalExpense"`
	Balance         string `json:"balance"`
	HasTransactions bool   `json:"hasTransactions"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// AccountBalanceResponse pairs an account with its normalized balance
type AccountBalanceResponse struct {
	Account          AccountResponse `json:"account"`
	Balance          string          `json:"balance"`
	BalanceInDefault string          `json:"balanceInDefault"`
}

// CreateAccount godoc
// @Summary Create an account
// @Description Create an account denominated in one of the book's currencies
// @Tags accounts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body AccountRequest true "Account creation request"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	initialBalance, err := parseOptionalDecimal(req.InitialBalance)
	if err != nil {
		return NewValidationError(c, "Invalid initialBalance", []ValidationError{
			{Field: "initialBalance", Message: "Must be a valid decimal number"},
		})
	}

	account, err := h.accountService.CreateAccount(userID, bookID, service.CreateAccountInput{
		Name:           req.Name,
		Currency:       req.Currency,
		InitialBalance: initialBalance,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameLength) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 2-20 characters"},
			})
		}
		if errors.Is(err, domain.ErrCurrencyNotInBook) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "currency", Message: "Must be one of the book's currencies"},
			})
		}
		return respondDomainError(c, err, "Failed to create account")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("account_id", account.ID).Msg("Account created")
	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/books/:bookId/accounts
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	accounts, err := h.accountService.GetAccounts(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		response[i] = toAccountResponse(account)
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/books/:bookId/accounts/:id
func (h *AccountHandler) GetAccount(c echo.Context) error {
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
		return NewValidationError(c, "Invalid account ID", nil)
	}

	account, err := h.accountService.GetAccountByID(userID, bookID, id)
	if err != nil {
		return respondDomainError(c, err, "Failed to get account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// UpdateAccount handles PUT /api/v1/books/:bookId/accounts/:id
func (h *AccountHandler) UpdateAccount(c echo.Context) error {
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
		return NewValidationError(c, "Invalid account ID", nil)
	}

	var req AccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	initialBalance, err := parseOptionalDecimal(req.InitialBalance)
	if err != nil {
		return NewValidationError(c, "Invalid initialBalance", []ValidationError{
			{Field: "initialBalance", Message: "Must be a valid decimal number"},
		})
	}

	account, err := h.accountService.UpdateAccount(userID, bookID, id, service.UpdateAccountInput{
		Name:           req.Name,
		Currency:       req.Currency,
		InitialBalance: initialBalance,
	})
	if err != nil {
		if errors.Is(err, domain.ErrCurrencyLocked) {
			return NewConflictError(c, "The currency is locked once the account has transactions")
		}
		return respondDomainError(c, err, "Failed to update account")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("account_id", account.ID).Msg("Account updated")
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// DeleteAccount handles DELETE /api/v1/books/:bookId/accounts/:id
func (h *AccountHandler) DeleteAccount(c echo.Context) error {
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
		return NewValidationError(c, "Invalid account ID", nil)
	}

	if err := h.accountService.DeleteAccount(userID, bookID, id); err != nil {
		if errors.Is(err, domain.ErrAccountHasTxns) {
			return NewConflictError(c, "Accounts that have recorded transactions cannot be deleted")
		}
		return respondDomainError(c, err, "Failed to delete account")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("account_id", id).Msg("Account deleted")
	return c.NoContent(http.StatusNoContent)
}

// GetBalances godoc
// @Summary Get account balances
// @Description Current balances per account, also normalized to the book's default currency
// @Tags accounts
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Success 200 {array} AccountBalanceResponse
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/accounts/balances [get]
func (h *AccountHandler) GetBalances(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	balances, err := h.accountService.GetBalances(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get balances")
	}

	response := make([]AccountBalanceResponse, len(balances))
	for i, balance := range balances {
		response[i] = AccountBalanceResponse{
			Account:          toAccountResponse(balance.Account),
			Balance:          balance.Balance.StringFixed(2),
			BalanceInDefault: balance.BalanceInDefault.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:              account.ID,
		BookID:          account.BookID,
		Name:            account.Name,
		Currency:        account.Currency,
		InitialBalance:  account.InitialBalance.StringFixed(2),
		TotalIncome:     account.TotalIncome.StringFixed(2),
		TotalExpense:    account.TotalExpense.StringFixed(2),
		Balance:         account.Balance().StringFixed(2),
		HasTransactions: account.HasTransactions,
		CreatedAt:       account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       account.UpdatedAt.Format(time.RFC3339),
	}
}
