package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCreateTag_StringColorNormalized(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.tagHandler()

	body := `{"name":"Urgent","color":"1A2B3C"}`
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/tags", body)

	if err := handler.CreateTag(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TagResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Color != "#1a2b3c" {
		t.Errorf("Expected normalized color '#1a2b3c', got %s", response.Color)
	}
}

func TestCreateTag_ObjectColor(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.tagHandler()

	body := `{"name":"Urgent","color":{"r":255,"g":0,"b":0}}`
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/tags", body)

	if err := handler.CreateTag(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response TagResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Color != "#ff0000" {
		t.Errorf("Expected color '#ff0000', got %s", response.Color)
	}
}

func TestCreateTag_ObjectColorOutOfRange(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.tagHandler()

	body := `{"name":"Urgent","color":{"r":300,"g":0,"b":0}}`
	c, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/tags", body)

	if err := handler.CreateTag(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "color" {
		t.Errorf("Expected field error on color, got %+v", problem.Errors)
	}
}

func TestUpdateTag_ObjectColor(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.tagHandler()

	create, rec := bookScopedContext(e, f, http.MethodPost, "/api/v1/books/1/tags", `{"name":"Urgent","color":"#ff0000"}`)
	if err := handler.CreateTag(create); err != nil || rec.Code != http.StatusCreated {
		t.Fatalf("Creating tag failed: err=%v code=%d", err, rec.Code)
	}
	var created TagResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal tag: %v", err)
	}

	body := `{"name":"Urgent","color":{"r":26,"g":43,"b":60}}`
	c, rec := bookScopedContext(e, f, http.MethodPut, "/api/v1/books/1/tags/x", body)
	c.SetParamNames("bookId", "id")
	c.SetParamValues(fmt.Sprint(f.book.ID), fmt.Sprint(created.ID))

	if err := handler.UpdateTag(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var updated TagResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to unmarshal tag: %v", err)
	}
	if updated.Color != "#1a2b3c" {
		t.Errorf("Expected color '#1a2b3c', got %s", updated.Color)
	}
}
