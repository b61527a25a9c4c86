package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func bookScopedContext(e *echo.Echo, f *handlerFixture, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newJSONContext(e, method, path, body)
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, f.owner)
	return c, rec
}

func TestCreateTransaction_Success(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()
	account := f.addAccount(t, "Cash", "CNY", decimal.Zero)
	category := f.addCategory(t, "Groceries", domain.TransactionTypeExpense)

	body := fmt.Sprintf(`{"accountId":%d,"categoryId":%d,"type":"expense","amount":"42.50","date":"2026-08-15"}`, account.ID, category.ID)
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/transactions", body)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != "42.50" {
		t.Errorf("Expected amount '42.50', got %s", response.Amount)
	}
	if response.TransactionDate != "2026-08-15" {
		t.Errorf("Expected date '2026-08-15', got %s", response.TransactionDate)
	}
	if response.TransferPairID != nil {
		t.Error("Expected no transfer pair on a plain expense")
	}
}

func TestCreateTransaction_InvalidAmount(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()
	account := f.addAccount(t, "Cash", "CNY", decimal.Zero)
	category := f.addCategory(t, "Groceries", domain.TransactionTypeExpense)

	body := fmt.Sprintf(`{"accountId":%d,"categoryId":%d,"type":"expense","amount":"not-a-number"}`, account.ID, category.ID)
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/transactions", body)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateTransaction_CategoryTypeMismatch(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()
	account := f.addAccount(t, "Cash", "CNY", decimal.Zero)
	category := f.addCategory(t, "Salary", domain.TransactionTypeIncome)

	body := fmt.Sprintf(`{"accountId":%d,"categoryId":%d,"type":"expense","amount":"10.00"}`, account.ID, category.ID)
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/transactions", body)

	if err := handler.CreateTransaction(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "categoryId" {
		t.Errorf("Expected field error on categoryId, got %+v", problem.Errors)
	}
}

func TestGetTransactions_Paginated(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()
	account := f.addAccount(t, "Cash", "CNY", decimal.Zero)
	category := f.addCategory(t, "Groceries", domain.TransactionTypeExpense)

	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"accountId":%d,"categoryId":%d,"type":"expense","amount":"5.00","date":"2026-08-1%d"}`, account.ID, category.ID, i+1)
		c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/transactions", body)
		if err := handler.CreateTransaction(c); err != nil || rec.Code != http.StatusCreated {
			t.Fatalf("Seeding transaction %d failed: err=%v code=%d", i, err, rec.Code)
		}
	}

	c, rec := bookScopedContext(e, f, http.MethodGet, "/api/v1/books/1/transactions?page=1&pageSize=2", "")

	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response PaginatedTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.TotalItems != 3 {
		t.Errorf("Expected 3 total items, got %d", response.TotalItems)
	}
	if len(response.Data) != 2 {
		t.Errorf("Expected 2 items on page 1, got %d", len(response.Data))
	}
	if response.TotalPages != 2 {
		t.Errorf("Expected 2 total pages, got %d", response.TotalPages)
	}
}

func TestGetTransactions_InvalidTypeFilter(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()

	c, rec := bookScopedContext(e, f, http.MethodGet, "/api/v1/books/1/transactions?type=transfer", "")

	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestCreateTransfer_Success(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()
	from := f.addAccount(t, "Checking", "CNY", decimal.NewFromInt(100))
	to := f.addAccount(t, "Savings", "CNY", decimal.Zero)
	category := f.addCategory(t, "Transfers", domain.TransactionTypeTransfer)

	body := fmt.Sprintf(`{"fromAccountId":%d,"toAccountId":%d,"categoryId":%d,"amount":"25.00","date":"2026-08-20"}`, from.ID, to.ID, category.ID)
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/transfers", body)

	if err := handler.CreateTransfer(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.TransferPairID == "" {
		t.Error("Expected a transfer pair ID")
	}
	if response.Out.Type != "expense" || response.In.Type != "income" {
		t.Errorf("Expected expense/income legs, got %s/%s", response.Out.Type, response.In.Type)
	}
	if response.Out.AccountID != from.ID || response.In.AccountID != to.ID {
		t.Error("Legs attached to the wrong accounts")
	}
	if response.Out.TransferPairID == nil || *response.Out.TransferPairID != response.TransferPairID {
		t.Error("Out leg should carry the pair ID")
	}
}

func TestCreateTransfer_SameAccount(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()
	account := f.addAccount(t, "Checking", "CNY", decimal.NewFromInt(100))
	category := f.addCategory(t, "Transfers", domain.TransactionTypeTransfer)

	body := fmt.Sprintf(`{"fromAccountId":%d,"toAccountId":%d,"categoryId":%d,"amount":"25.00"}`, account.ID, account.ID, category.ID)
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/transfers", body)

	if err := handler.CreateTransfer(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestDeleteTransaction_TransferRemovesBothLegs(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.transactionHandler()
	from := f.addAccount(t, "Checking", "CNY", decimal.NewFromInt(100))
	to := f.addAccount(t, "Savings", "CNY", decimal.Zero)
	category := f.addCategory(t, "Transfers", domain.TransactionTypeTransfer)

	body := fmt.Sprintf(`{"fromAccountId":%d,"toAccountId":%d,"categoryId":%d,"amount":"25.00"}`, from.ID, to.ID, category.ID)
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/transfers", body)
	if err := handler.CreateTransfer(c); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("Creating transfer failed: err=%v code=%d", err, rec.Code)
	}
	var created TransferResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal transfer: %v", err)
	}

	c, rec = bookScopedContext(e, f, http.MethodDelete, "/api/v1/books/1/transactions/x", "")
	c.SetParamNames("bookId", "id")
	c.SetParamValues(fmt.Sprint(f.book.ID), fmt.Sprint(created.Out.ID))

	if err := handler.DeleteTransaction(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}

	// Both legs should be gone
	c, rec = bookScopedContext(e, f, http.MethodGet, "/api/v1/books/1/transactions", "")
	if err := handler.GetTransactions(c); err != nil {
		t.Fatalf("Listing transactions failed: %v", err)
	}
	var listing PaginatedTransactionsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("Failed to unmarshal listing: %v", err)
	}
	if listing.TotalItems != 0 {
		t.Errorf("Expected 0 transactions after pair delete, got %d", listing.TotalItems)
	}
}
