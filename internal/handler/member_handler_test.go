package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

func TestInviteMember_Success(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.memberHandler()

	f.users.AddUser(&domain.User{
		ID:      uuid.New(),
		Auth0ID: "auth0|invitee",
		Email:   "invitee@example.com",
	})

	body := `{"email":"invitee@example.com","permission":"collaborator"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books/1/members", body)
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, f.owner)

	if err := handler.InviteMember(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response MemberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Permission != "collaborator" {
		t.Errorf("Expected permission collaborator, got %s", response.Permission)
	}
	if response.Email != "invitee@example.com" {
		t.Errorf("Expected invitee email, got %s", response.Email)
	}
}

func TestInviteMember_CreatorRoleRejected(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.memberHandler()

	f.users.AddUser(&domain.User{
		ID:      uuid.New(),
		Auth0ID: "auth0|other",
		Email:   "other@example.com",
	})

	body := `{"email":"other@example.com","permission":"creator"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books/1/members", body)
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, f.owner)

	if err := handler.InviteMember(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestInviteMember_UnknownEmail(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.memberHandler()

	body := `{"email":"ghost@example.com","permission":"viewer"}`
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books/1/members", body)
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, f.owner)

	if err := handler.InviteMember(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) == 0 || problem.Errors[0].Field != "email" {
		t.Errorf("Expected field error on email, got %+v", problem.Errors)
	}
}

func TestRemoveMember_CreatorForbidden(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.memberHandler()

	// A manager attempts to remove the creator
	manager := uuid.New()
	f.members.AddMember(f.book.ID, manager, domain.PermissionManager)

	c, rec := newJSONContext(e, http.MethodDelete, "/api/v1/books/1/members/x", "")
	c.SetParamNames("bookId", "userId")
	c.SetParamValues(fmt.Sprint(f.book.ID), f.owner.String())
	setupUserContext(c, manager)

	if err := handler.RemoveMember(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestTransferBook_OnlyCreator(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.memberHandler()

	manager := uuid.New()
	f.members.AddMember(f.book.ID, manager, domain.PermissionManager)

	body := fmt.Sprintf(`{"newOwnerId":"%s"}`, manager)
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books/1/transfer", body)
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, manager)

	if err := handler.TransferBook(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rec.Code)
	}
}

func TestTransferBook_Success(t *testing.T) {
	e := echo.New()
	f := newHandlerFixture(t)
	handler := f.memberHandler()

	manager := uuid.New()
	f.members.AddMember(f.book.ID, manager, domain.PermissionManager)

	body := fmt.Sprintf(`{"newOwnerId":"%s"}`, manager)
	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/books/1/transfer", body)
	c.SetParamNames("bookId")
	c.SetParamValues(fmt.Sprint(f.book.ID))
	setupUserContext(c, f.owner)

	if err := handler.TransferBook(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var members []MemberResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("Failed to unmarshal members: %v", err)
	}

	permissions := make(map[string]string, len(members))
	for _, member := range members {
		permissions[member.UserID] = member.Permission
	}
	if permissions[manager.String()] != "creator" {
		t.Errorf("Expected new owner to be creator, got %s", permissions[manager.String()])
	}
	if permissions[f.owner.String()] != "manager" {
		t.Errorf("Expected former owner to be manager, got %s", permissions[f.owner.String()])
	}
}
