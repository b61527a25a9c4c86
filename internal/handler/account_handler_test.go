package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

func TestCreateAccount_Success(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.accountHandler()

	body := `{"name":"Checking","currency":"USD","initialBalance":"250.00"}`
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/accounts", body)

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Currency != "USD" {
		t.Errorf("Expected currency USD, got %s", response.Currency)
	}
	if response.Balance != "250.00" {
		t.Errorf("Expected balance '250.00', got %s", response.Balance)
	}
	if response.HasTransactions {
		t.Error("Expected a fresh account without transactions")
	}
}

func TestCreateAccount_CurrencyNotInBook(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.accountHandler()

	body := `{"name":"Euros","currency":"EUR"}`
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/accounts", body)

	if err := handler.CreateAccount(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "currency" {
		t.Errorf("Expected field error on currency, got %+v", problem.Errors)
	}
}

func TestUpdateAccount_CurrencyLockedConflict(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.accountHandler()

	account := f.addAccount(t, "Cash", "CNY", decimal.Zero)
	account.HasTransactions = true

	body := `{"name":"Cash","currency":"USD"}`
	c, rec := bookScopedContext(e, f, http.MethodPut, "/api/v1/books/1/accounts/x", body)
	c.SetParamNames("bookId", "id")
	c.SetParamValues(fmt.Sprint(f.book.ID), fmt.Sprint(account.ID))

	if err := handler.UpdateAccount(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestDeleteAccount_WithTransactionsConflict(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.accountHandler()

	account := f.addAccount(t, "Cash", "CNY", decimal.Zero)
	account.HasTransactions = true

	c, rec := bookScopedContext(e, f, http.MethodDelete, "/api/v1/books/1/accounts/x", "")
	c.SetParamNames("bookId", "id")
	c.SetParamValues(fmt.Sprint(f.book.ID), fmt.Sprint(account.ID))

	if err := handler.DeleteAccount(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestGetBalances_ConvertsToDefaultCurrency(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.accountHandler()

	// CNY is the base (rate 1), USD is 7.2 per base unit
	f.addAccount(t, "Cash", "CNY", decimal.NewFromInt(100))
	usd := f.addAccount(t, "Dollars", "USD", decimal.NewFromInt(72))

	c, rec := bookScopedContext(e, f, http.MethodGet, "/api/v1/books/1/accounts/balances", "")

	if err := handler.GetBalances(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var balances []AccountBalanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &balances); err != nil {
		t.Fatalf("Failed to unmarshal balances: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("Expected 2 balances, got %d", len(balances))
	}

	for _, balance := range balances {
		if balance.Account.ID == usd.ID {
			if balance.Balance != "72.00" {
				t.Errorf("Expected USD balance '72.00', got %s", balance.Balance)
			}
			// 72 USD at 7.2 per CNY-equivalent base unit is 10 in CNY
			if balance.BalanceInDefault != "10.00" {
				t.Errorf("Expected converted balance '10.00', got %s", balance.BalanceInDefault)
			}
		}
	}
}
