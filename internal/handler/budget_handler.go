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

// BudgetHandler handles budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
	}
}

// BudgetRequest represents the create/update budget request body
type BudgetRequest struct {
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	CategoryID *int32 `json:"categoryId,omitempty"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID         int32  `json:"id"`
	BookID     int32  `json:"bookId"`
	Name       string `json:"name"`
	Amount     string `json:"amount"`
	Period     string `json:"period"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	CategoryID *int32 `json:"categoryId,omitempty"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

// CreateBudget godoc
// @Summary Create a budget
// @Description Create a spending target for the whole book or a single expense category
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param request body BudgetRequest true "Budget creation request"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	input, verr := bindBudgetInput(c)
	if verr != nil {
		return verr
	}

	budget, err := h.budgetService.CreateBudget(userID, bookID, *input)
	if err != nil {
		return respondBudgetError(c, err, "Failed to create budget")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("budget_id", budget.ID).Msg("Budget created")
	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// GetBudgets handles GET /api/v1/books/:bookId/budgets
func (h *BudgetHandler) GetBudgets(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	budgets, err := h.budgetService.GetBudgets(userID, bookID)
	if err != nil {
		return respondDomainError(c, err, "Failed to get budgets")
	}

	response := make([]BudgetResponse, len(budgets))
	for i, budget := range budgets {
		response[i] = toBudgetResponse(budget)
	}
	return c.JSON(http.StatusOK, response)
}

// GetBudget handles GET /api/v1/books/:bookId/budgets/:id
func (h *BudgetHandler) GetBudget(c echo.Context) error {
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
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	budget, err := h.budgetService.GetBudgetByID(userID, bookID, id)
	if err != nil {
		return respondDomainError(c, err, "Failed to get budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// UpdateBudget handles PUT /api/v1/books/:bookId/budgets/:id
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
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
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	input, verr := bindBudgetInput(c)
	if verr != nil {
		return verr
	}

	budget, err := h.budgetService.UpdateBudget(userID, bookID, id, *input)
	if err != nil {
		return respondBudgetError(c, err, "Failed to update budget")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("budget_id", budget.ID).Msg("Budget updated")
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// DeleteBudget handles DELETE /api/v1/books/:bookId/budgets/:id
func (h *BudgetHandler) DeleteBudget(c echo.Context) error {
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
		return NewValidationError(c, "Invalid budget ID", nil)
	}

	if err := h.budgetService.DeleteBudget(userID, bookID, id); err != nil {
		return respondDomainError(c, err, "Failed to delete budget")
	}

	log.Info().Str("user_id", userID.String()).Int32("book_id", bookID).Int32("budget_id", id).Msg("Budget deleted")
	return c.NoContent(http.StatusNoContent)
}

func bindBudgetInput(c echo.Context) (*service.BudgetInput, error) {
	var req BudgetRequest
	if err := c.Bind(&req); err != nil {
		return nil, NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return nil, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, NewValidationError(c, "Invalid startDate", []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, NewValidationError(c, "Invalid endDate", []ValidationError{
			{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}

	return &service.BudgetInput{
		Name:       req.Name,
		Amount:     amount,
		Period:     domain.BudgetPeriod(req.Period),
		StartDate:  startDate,
		EndDate:    endDate,
		CategoryID: req.CategoryID,
	}, nil
}

func respondBudgetError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, domain.ErrInvalidAmount) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "amount", Message: "Amount must be positive"},
		})
	}
	if errors.Is(err, domain.ErrInvalidPeriod) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "period", Message: "Must be one of: monthly, yearly, custom (with a valid date range)"},
		})
	}
	if errors.Is(err, domain.ErrCategoryTypeMismatch) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "categoryId", Message: "Budgets can only target expense categories"},
		})
	}
	return respondDomainError(c, err, fallback)
}

func toBudgetResponse(budget *domain.Budget) BudgetResponse {
	return BudgetResponse{
		ID:         budget.ID,
		BookID:     budget.BookID,
		Name:       budget.Name,
		Amount:     budget.Amount.StringFixed(2),
		Period:     string(budget.Period),
		StartDate:  budget.StartDate.Format("2006-01-02"),
		EndDate:    budget.EndDate.Format("2006-01-02"),
		CategoryID: budget.CategoryID,
		CreatedAt:  budget.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  budget.UpdatedAt.Format(time.RFC3339),
	}
}
