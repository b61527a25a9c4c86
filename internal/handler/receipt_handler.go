package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/middleware"
	"github.com/moneybook/moneybook-backend/internal/service"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles receipt image HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// ReceiptResponse carries short-lived download URLs for the stored variants
type ReceiptResponse struct {
	ThumbnailURL string `json:"thumbnailUrl"`
	DisplayURL   string `json:"displayUrl"`
	OriginalURL  string `json:"originalUrl"`
}

// AttachReceipt godoc
// @Summary Attach a receipt image
// @Description Upload a JPEG/PNG receipt for a transaction. Replaces any existing receipt.
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param id path int true "Transaction ID"
// @Param file formData file true "Receipt image"
// @Success 201 {object} ReceiptResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /books/{bookId}/transactions/{id}/receipt [post]
func (h *ReceiptHandler) AttachReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "A file upload is required"},
		})
	}
	if fileHeader.Size > service.MaxReceiptSize {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Image exceeds the 5MB limit"},
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded receipt")
		return NewInternalError(c, "Failed to read uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, service.MaxReceiptSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded receipt")
		return NewInternalError(c, "Failed to read uploaded file")
	}

	metadata, err := h.receiptService.AttachReceipt(c.Request().Context(), userID, bookID, transactionID, data, fileHeader.Filename)
	if err != nil {
		return respondReceiptError(c, err, "Failed to attach receipt")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Int32("transaction_id", transactionID).
		Msg("Receipt attached")

	return c.JSON(http.StatusCreated, toReceiptResponse(metadata))
}

// GetReceipt godoc
// @Summary Get receipt URLs
// @Description Presigned URLs for the receipt's thumbnail, display and original variants
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param bookId path int true "Book ID"
// @Param id path int true "Transaction ID"
// @Success 200 {object} ReceiptResponse
// @Failure 404 {object} ProblemDetails
// @Router /books/{bookId}/transactions/{id}/receipt [get]
func (h *ReceiptHandler) GetReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	metadata, err := h.receiptService.GetReceiptURLs(c.Request().Context(), userID, bookID, transactionID)
	if err != nil {
		return respondReceiptError(c, err, "Failed to get receipt")
	}

	return c.JSON(http.StatusOK, toReceiptResponse(metadata))
}

// DeleteReceipt handles DELETE /api/v1/books/:bookId/transactions/:id/receipt
func (h *ReceiptHandler) DeleteReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	bookID, err := parseIDParam(c, "bookId")
	if err != nil {
		return NewValidationError(c, "Invalid book ID", nil)
	}
	transactionID, err := parseIDParam(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid transaction ID", nil)
	}

	if err := h.receiptService.DeleteReceipt(c.Request().Context(), userID, bookID, transactionID); err != nil {
		return respondReceiptError(c, err, "Failed to delete receipt")
	}

	log.Info().
		Str("user_id", userID.String()).
		Int32("book_id", bookID).
		Int32("transaction_id", transactionID).
		Msg("Receipt deleted")

	return c.NoContent(http.StatusNoContent)
}

func respondReceiptError(c echo.Context, err error, fallback string) error {
	if errors.Is(err, service.ErrReceiptStorageNotConfigured) {
		return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
			Type:   ErrorTypeInternal,
			Title:  "Service Unavailable",
			Status: http.StatusServiceUnavailable,
			Detail: "Receipt storage is not configured on this server",
		})
	}
	if errors.Is(err, domain.ErrInvalidImage) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Must be a valid JPEG or PNG image"},
		})
	}
	if errors.Is(err, domain.ErrImageTooLarge) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Image exceeds the 5MB limit"},
		})
	}
	if errors.Is(err, domain.ErrImageTooSmall) {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "Image must be at least 50x50 pixels"},
		})
	}
	return respondDomainError(c, err, fallback)
}

func toReceiptResponse(metadata *service.ReceiptMetadata) ReceiptResponse {
	return ReceiptResponse{
		ThumbnailURL: metadata.ThumbnailURL,
		DisplayURL:   metadata.DisplayURL,
		OriginalURL:  metadata.OriginalURL,
	}
}
