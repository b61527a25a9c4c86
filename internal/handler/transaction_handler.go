package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/middleware"
	"github.com/moneybook/moneybook-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction and transfer HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// TransactionRequest represents the create/update transaction request body
type TransactionRequest struct {
	AccountID   int32   `json:"accountId"`
	CategoryID  int32   `json:"categoryId"`
	Type        string  `json:"type"`
	Amount      string  `json:"amount"`
	Date        string  `json:"date"`
	Description *string `json:"description,omitempty"`
	PersonIDs   []int32 `json:"personIds,omitempty"`
	TagIDs      []int32 `json:"tagIds,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID              int32   `json:"id"`
	BookID          int32   `json:"bookId"`
	AccountID       int32   `json:"accountId"`
	CategoryID      int32   `json:"categoryId"`
	Type            string  `json:"type"`
	Amount          string  `json:"amount"`
	TransactionDate string  `json:"transactionDate"`
	Description     *string `json:"description,omitempty"`
	PersonIDs       []int32 `json:"personIds,omitempty"`
	TagIDs          []int32 `json:"tagIds,omitempty"`
	TransferPairID  *string `json:"transferPairId,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// PaginatedTransactionsResponse represents paginated transactions in API responses
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

// CreateTransferRequest represents the create transfer request body
type CreateTransferRequest struct {
	FromAccountID int32   `json:"fromAccountId"`
	ToAccountID   int32   `json:"toAccountId"`
	CategoryID    int32   `json:"categoryId"`
	Amount        string  `json:"amount"`
	Date          string  `json:"date,omitempty"`
	Description   *string `json:"description,omitempty"`
}

// TransferResponse represents a transfer pair in API responses
type TransferResponse struct {
	TransferPairID string              `json:"transferPairId"`
	Out            TransactionResponse `json:"out"`
	In             TransactionResponse `json:"in"`
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Create an income or expense entry. Transfers go through the transfer endpoint.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body TransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	input, verr := bindTransactionInput(c)
	if verr != nil {
		return verr
	}

	transaction, err := h.transactionService.CreateTransaction(userID, bookID, *input)
	if err != nil {
		return respondTransactionError(c, err, "Failed to create transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Int32("transaction_id", transaction.ID).
		Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransactions godoc
// @Summary List transactions
// @Description Get paginated transactions with optional filters
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param accountId query int false "Filter by account ID"
// @Param categoryId query int false "Filter by category ID"
// @Param personId query int false "Filter by person ID"
// @Param tagId query int false "Filter by tag ID"
// @Param type query string false "Transaction type (income or expense)"
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page" default(20)
// @Success 200 {object} PaginatedTransactionsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	filters := &domain.TransactionFilters{
		Page:     1,
		PageSize: domain.DefaultPageSize,
	}

	if verr := bindIDFilter(c, "accountId", &filters.AccountID); verr != nil {
		return verr
	}
	if verr := bindIDFilter(c, "categoryId", &filters.CategoryID); verr != nil {
		return verr
	}
	if verr := bindIDFilter(c, "personId", &filters.PersonID); verr != nil {
		return verr
	}
	if verr := bindIDFilter(c, "tagId", &filters.TagID); verr != nil {
		return verr
	}

	if typeStr := c.QueryParam("type"); typeStr != "" {
		transactionType := domain.TransactionType(typeStr)
		if transactionType != domain.TransactionTypeIncome && transactionType != domain.TransactionTypeExpense {
			return NewValidationError(c, "Invalid type (must be 'income' or 'expense')", nil)
		}
		filters.Type = &transactionType
	}

	if startDateStr := c.QueryParam("startDate"); startDateStr != "" {
		parsed, err := time.Parse("2006-01-02", startDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid startDate format (use YYYY-MM-DD)", nil)
		}
		filters.StartDate = &parsed
	}

	if endDateStr := c.QueryParam("endDate"); endDateStr != "" {
		parsed, err := time.Parse("2006-01-02", endDateStr)
		if err != nil {
			return NewValidationError(c, "Invalid endDate format (use YYYY-MM-DD)", nil)
		}
		filters.EndDate = &parsed
	}

	if pageStr := c.QueryParam("page"); pageStr != "" {
		page, err := strconv.ParseInt(pageStr, 10, 32)
		if err != nil || page < 1 {
			return NewValidationError(c, "Invalid page (must be positive integer)", nil)
		}
		filters.Page = int32(page)
	}

	if pageSizeStr := c.QueryParam("pageSize"); pageSizeStr != "" {
		pageSize, err := strconv.ParseInt(pageSizeStr, 10, 32)
		if err != nil || pageSize < 1 {
			return NewValidationError(c, "Invalid pageSize (must be positive integer)", nil)
		}
		filters.PageSize = int32(pageSize)
	}

	result, err := h.transactionService.GetTransactions(userID, bookID, filters)
	if err != nil {
		return respondDomainError(c, err, "Failed to get transactions")
	}

	response := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, len(result.Data)),
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	}
	for i, transaction := range result.Data {
		response.Data[i] = toTransactionResponse(transaction)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTransaction handles GET /api/v1/books/:bookId/transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
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
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	transaction, err := h.transactionService.GetTransaction(userID, bookID, id)
	if err != nil {
		return respondDomainError(c, err, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction handles PUT /api/v1/books/:bookId/transactions/:id.
// Transfer legs cannot be edited; delete the pair and recreate instead.
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
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
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	input, verr := bindTransactionInput(c)
	if verr != nil {
		return verr
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, bookID, id, *input)
	if err != nil {
		if errors.Is(err, domain.ErrTransferLegLocked) {
			return NewConflictError(c, "Transfer legs cannot be edited; delete the transfer and recreate it")
		}
		return respondTransactionError(c, err, "Failed to update transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Int32("transaction_id", transaction.ID).
		Msg("Transaction updated")

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE /api/v1/books/:bookId/transactions/:id.
// Deleting a transfer leg removes both legs of the pair.
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
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
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.transactionService.DeleteTransaction(userID, bookID, id); err != nil {
		return respondDomainError(c, err, "Failed to delete transaction")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Int32("transaction_id", id).
		Msg("Transaction deleted")

	return c.NoContent(http.StatusNoContent)
}

// CreateTransfer godoc
// @Summary Create a transfer
// @Description Move money between two accounts as a linked pair of entries
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body CreateTransferRequest true "Transfer creation request"
// @Success 201 {object} TransferResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/transfers [post]
func (h *TransactionHandler) CreateTransfer(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	var req CreateTransferRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	transferDate := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		transferDate = parsed
	}

	result, err := h.transactionService.CreateTransfer(userID, bookID, service.CreateTransferInput{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		CategoryID:    req.CategoryID,
		Amount:        amount,
		Date:          transferDate,
		Description:   req.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrSameAccountTransfer) {
			return NewValidationError(c, "Cannot transfer to the same account", []ValidationError{
				{Field: "toAccountId", Message: "Must be different from source account"},
			})
		}
		if errors.Is(err, domain.ErrCategoryTypeMismatch) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "categoryId", Message: "Transfers require a transfer-type category"},
			})
		}
		return respondTransactionError(c, err, "Failed to create transfer")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Str("pair_id", result.TransferPairID.String()).
		Msg("Transfer created")

	return c.JSON(http.StatusCreated, TransferResponse{
		TransferPairID: result.TransferPairID.String(),
		Out:            toTransactionResponse(result.Out),
		In:             toTransactionResponse(result.In),
	})
}

// bindTransactionInput binds and pre-validates the shared transaction body
func bindTransactionInput(c echo.Context) (*service.CreateTransactionInput, error) {
	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	if req.AccountID <= 0 {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account ID is required"},
		})
	}
	if req.CategoryID <= 0 {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category ID is required"},
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = parsed
	}

	return &service.CreateTransactionInput{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Type:        domain.TransactionType(req.Type),
		Amount:      amount,
		Date:        date,
		Description: req.Description,
		PersonIDs:   req.PersonIDs,
		TagIDs:      req.TagIDs,
	}, nil
}

// respondTransactionError adds field hints for the common validation errors
func respondTransactionError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, domain.ErrInvalidTransactionType) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Type must be one of: income, expense"},
		})
	}
	if errors.Is(err, domain.ErrInvalidAmount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be between 0.01 and 9999999.99"},
		})
	}
	if errors.Is(err, domain.ErrCategoryTypeMismatch) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Category type must match the transaction type"},
		})
	}
	return respondDomainError(c, err, fallback)
}

// bindIDFilter parses an optional positive integer query parameter
func bindIDFilter(c echo.Context, name string, target **int32) error {
	s := c.QueryParam(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil || v <= 0 {
		return NewValidationError(c, "Invalid "+name, nil)
	}
	id := int32(v)
	*target = &id
	return nil
}

func toTransactionResponse(transaction *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              transaction.ID,
		BookID:          transaction.BookID,
		AccountID:       transaction.AccountID,
		CategoryID:      transaction.CategoryID,
		Type:            string(transaction.Type),
		Amount:          transaction.Amount.StringFixed(2),
		TransactionDate: transaction.TransactionDate.Format("2006-01-02"),
		Description:     transaction.Description,
		PersonIDs:       transaction.PersonIDs,
		TagIDs:          transaction.TagIDs,
		CreatedAt:       transaction.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       transaction.UpdatedAt.Format(time.RFC3339),
	}
	if transaction.TransferPairID != nil {
		pairID := transaction.TransferPairID.String()
		resp.TransferPairID = &pairID
	}
	return resp
}
