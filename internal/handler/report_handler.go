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
	"github.com/moneybook/moneybook-backend/internal/util"
)

// ReportHandler handles report HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// CategoryTotalResponse is a per-category aggregate in API responses
type CategoryTotalResponse struct {
	CategoryID   int32  `json:"categoryId"`
	CategoryName string `json:"categoryName"`
	Total        string `json:"total"`
	Count        int64  `json:"count"`
}

// AccountTotalResponse is a per-account aggregate in API responses
type AccountTotalResponse struct {
	AccountID   int32  `json:"accountId"`
	AccountName string `json:"accountName"`
	Currency    string `json:"currency"`
	SumIncome   string `json:"sumIncome"`
	SumExpense  string `json:"sumExpense"`
}

// DateBucketTotalResponse is a per-day or per-month aggregate in API responses
type DateBucketTotalResponse struct {
	Bucket     string `json:"bucket"`
	SumIncome  string `json:"sumIncome"`
	SumExpense string `json:"sumExpense"`
}

// BookStatsResponse holds book-wide totals in the default currency
type BookStatsResponse struct {
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Net          string `json:"net"`
	Currency     string `json:"currency"`
}

// GetCategoryTotals godoc
// @Summary Category breakdown report
// @Description Sum transactions per category over a date range, for one transaction type
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param type query string true "Transaction type (income or expense)"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} CategoryTotalResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/reports/categories [get]
func (h *ReportHandler) GetCategoryTotals(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	dateRange, verr := parseDateRange(c)
	if verr != nil {
		return verr
	}

	txType := domain.TransactionType(c.QueryParam("type"))
	if txType != domain.TransactionTypeIncome && txType != domain.TransactionTypeExpense {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "type", Message: "Must be 'income' or 'expense'"},
		})
	}

	totals, err := h.reportService.GetCategoryTotals(userID, bookID, *dateRange, txType)
	if err != nil {
		return respondDomainError(c, err, "Failed to build category report")
	}

	response := make([]CategoryTotalResponse, len(totals))
	for i, total := range totals {
		response[i] = CategoryTotalResponse{
			CategoryID:   total.CategoryID,
			CategoryName: total.CategoryName,
			Total:        total.Total.StringFixed(2),
			Count:        total.Count,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetAccountTotals godoc
// @Summary Account breakdown report
// @Description Sum income and expense per account over a date range, in each account's currency
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} AccountTotalResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/reports/accounts [get]
func (h *ReportHandler) GetAccountTotals(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	dateRange, verr := parseDateRange(c)
	if verr != nil {
		return verr
	}

	totals, err := h.reportService.GetAccountTotals(userID, bookID, *dateRange)
	if err != nil {
		return respondDomainError(c, err, "Failed to build account report")
	}

	response := make([]AccountTotalResponse, len(totals))
	for i, total := range totals {
		response[i] = AccountTotalResponse{
			AccountID:   total.AccountID,
			AccountName: total.AccountName,
			Currency:    total.Currency,
			SumIncome:   total.SumIncome.StringFixed(2),
			SumExpense:  total.SumExpense.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetTimeline godoc
// @Summary Timeline report
// @Description Sum income and expense per day or per month over a date range
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param bucket query string true "Granularity (day or month)"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {array} DateBucketTotalResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/reports/timeline [get]
func (h *ReportHandler) GetTimeline(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	dateRange, verr := parseDateRange(c)
	if verr != nil {
		return verr
	}

	bucket := c.QueryParam("bucket")
	if !util.ValidBucket(bucket) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "bucket", Message: "Must be 'day' or 'month'"},
		})
	}

	totals, err := h.reportService.GetDateBucketTotals(userID, bookID, *dateRange, bucket)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBucket) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "bucket", Message: "Must be 'day' or 'month'"},
			})
		}
		return respondDomainError(c, err, "Failed to build timeline report")
	}

	response := make([]DateBucketTotalResponse, len(totals))
	for i, total := range totals {
		response[i] = DateBucketTotalResponse{
			Bucket:     total.Bucket,
			SumIncome:  total.SumIncome.StringFixed(2),
			SumExpense: total.SumExpense.StringFixed(2),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetBookStats godoc
// @Summary Book statistics
// @Description Book-wide income and expense totals normalized to the default currency
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param startDate query string true "Start date (YYYY-MM-DD)"
// @Param endDate query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} BookStatsResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Router /books/{bookId}/reports/stats [get]
func (h *ReportHandler) GetBookStats(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}

	dateRange, verr := parseDateRange(c)
	if verr != nil {
		return verr
	}

	stats, err := h.reportService.GetBookStats(userID, bookID, *dateRange)
	if err != nil {
		return respondDomainError(c, err, "Failed to build book stats")
	}

	return c.JSON(http.StatusOK, BookStatsResponse{
		TotalIncome:  stats.TotalIncome.StringFixed(2),
		TotalExpense: stats.TotalExpense.StringFixed(2),
		Net:          stats.TotalIncome.Sub(stats.TotalExpense).StringFixed(2),
		Currency:     stats.Currency,
	})
}

// parseDateRange reads required startDate/endDate query params. Dates are
// parsed in UTC; the service re-anchors them to the book's timezone.
func parseDateRange(c echo.Context) (*domain.DateRange, error) {
	startStr := c.QueryParam("startDate")
	endStr := c.QueryParam("endDate")
	if startStr == "" || endStr == "" {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "startDate", Message: "startDate and endDate are required"},
		})
	}

	start, err := util.ParseDate(startStr, time.UTC)
	if err != nil {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "startDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	end, err := util.ParseDate(endStr, time.UTC)
	if err != nil {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "Must be in YYYY-MM-DD format"},
		})
	}
	if end.Before(start) {
		return nil, NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "endDate", Message: "Must not be before startDate"},
		})
	}

	return &domain.DateRange{Start: start, End: util.EndOfDay(end)}, nil
}
