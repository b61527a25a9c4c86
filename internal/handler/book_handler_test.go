package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func TestCreateBook_Success(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.bookHandler()

	body := `{"name":"Travel","currencyCodes":["CNY","EUR"],"defaultCurrency":"EUR","timezone":"Asia/Shanghai"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books", body)
	setupUserContext(c, f.owner)

	if err := handler.CreateBook(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Name != "Travel" {
		t.Errorf("Expected name 'Travel', got %s", response.Name)
	}
	if response.DefaultCurrency != "EUR" {
		t.Errorf("Expected default currency EUR, got %s", response.DefaultCurrency)
	}
	if response.OwnerID != f.owner.String() {
		t.Errorf("Expected owner %s, got %s", f.owner, response.OwnerID)
	}
}

func TestCreateBook_DefaultCurrencyNotInSet(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.bookHandler()

	body := `{"name":"Travel","currencyCodes":["CNY"],"defaultCurrency":"USD"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books", body)
	setupUserContext(c, f.owner)

	if err := handler.CreateBook(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "defaultCurrency" {
		t.Errorf("Expected field error on defaultCurrency, got %+v", problem.Errors)
	}
}

func TestCreateBook_Unauthenticated(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.bookHandler()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books", `{"name":"X"}`)

	if err := handler.CreateBook(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rec.Code)
	}
}

func TestGetBook_NonMemberForbidden(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.bookHandler()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/books/1", "")
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, uuid.New())

	if err := handler.GetBook(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestDeleteBook_WithAccountsConflict(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.bookHandler()
	f.books.AccountCount[f.book.ID] = 1

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/books/1", "")
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, f.owner)

	if err := handler.DeleteBook(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", rec.Code)
	}
}

func TestGetBooks_ReturnsMemberBooks(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.bookHandler()

	c, rec := newJSONContext(e, http.MethodGet, "/api/v1/books", "")
	setupUserContext(c, f.owner)

	if err := handler.GetBooks(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var response []BookResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 {
		t.Fatalf("Expected 1 book, got %d", len(response))
	}
	if response[0].ID != f.book.ID {
		t.Errorf("Expected book %d, got %d", f.book.ID, response[0].ID)
	}
}
