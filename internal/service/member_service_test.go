package service

import (
	"errors"
	"testing"

	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestInviteMember_Success(t *testing.T) {
	f := newFixture(t)
	invitee := f.users.AddUser(&domain.User{Auth0ID: "auth0|friend", Email: "friend@example.com"})
	svc := f.memberService()

	member, err := svc.InviteMember(f.owner, f.book.ID, "Friend@Example.com", domain.PermissionCollaborator)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if member.UserID != invitee.ID {
		t.Errorf("Expected invited user %s, got %s", invitee.ID, member.UserID)
	}
	if member.Permission != domain.PermissionCollaborator {
		t.Errorf("Expected collaborator role, got %s", member.Permission)
	}
}

func TestInviteMember_ViewerCannotInvite(t *testing.T) {
	f := newFixture(t)
	viewer := f.addMember(domain.PermissionViewer)
	f.users.AddUser(&domain.User{Auth0ID: "auth0|friend", Email: "friend@example.com"})
	svc := f.memberService()

	_, err := svc.InviteMember(viewer, f.book.ID, "friend@example.com", domain.PermissionViewer)
	if !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("Expected ErrInsufficientRole, got %v", err)
	}
}

func TestInviteMember_CollaboratorCannotInvite(t *testing.T) {
	f := newFixture(t)
	collaborator := f.addMember(domain.PermissionCollaborator)
	f.users.AddUser(&domain.User{Auth0ID: "auth0|friend", Email: "friend@example.com"})
	svc := f.memberService()

	_, err := svc.InviteMember(collaborator, f.book.ID, "friend@example.com", domain.PermissionViewer)
	if !errors.Is(err, domain.ErrInsufficientRole) {
		t.Fatalf("Expected ErrInsufficientRole, got %v", err)
	}
}

func TestInviteMember_CreatorRoleRejected(t *testing.T) {
	f := newFixture(t)
	f.users.AddUser(&domain.User{Auth0ID: "auth0|friend", Email: "friend@example.com"})
	svc := f.memberService()

	_, err := svc.InviteMember(f.owner, f.book.ID, "friend@example.com", domain.PermissionCreator)
	if !errors.Is(err, domain.ErrInvalidPermission) {
		t.Fatalf("Expected ErrInvalidPermission, got %v", err)
	}
}

func TestInviteMember_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	svc := f.memberService()

	_, err := svc.InviteMember(f.owner, f.book.ID, "nobody@example.com", domain.PermissionViewer)
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestInviteMember_AlreadyMember(t *testing.T) {
	f := newFixture(t)
	existing := f.users.AddUser(&domain.User{Auth0ID: "auth0|friend", Email: "friend@example.com"})
	f.members.AddMember(f.book.ID, existing.ID, domain.PermissionViewer)
	svc := f.memberService()

	_, err := svc.InviteMember(f.owner, f.book.ID, "friend@example.com", domain.PermissionViewer)
	if !errors.Is(err, domain.ErrAlreadyMember) {
		t.Fatalf("Expected ErrAlreadyMember, got %v", err)
	}
}

func TestRemoveMember_CreatorImmutable(t *testing.T) {
	f := newFixture(t)
	manager := f.addMember(domain.PermissionManager)
	svc := f.memberService()

	if err := svc.RemoveMember(manager, f.book.ID, f.owner); !errors.Is(err, domain.ErrCreatorImmutable) {
		t.Fatalf("Expected ErrCreatorImmutable, got %v", err)
	}
}

func TestRemoveMember_SelfRemovalBlocked(t *testing.T) {
	f := newFixture(t)
	manager := f.addMember(domain.PermissionManager)
	svc := f.memberService()

	if err := svc.RemoveMember(manager, f.book.ID, manager); !errors.Is(err, domain.ErrCannotRemoveSelf) {
		t.Fatalf("Expected ErrCannotRemoveSelf, got %v", err)
	}
}

func TestUpdateMemberPermission_CreatorImmutable(t *testing.T) {
	f := newFixture(t)
	manager := f.addMember(domain.PermissionManager)
	svc := f.memberService()

	_, err := svc.UpdateMemberPermission(manager, f.book.ID, f.owner, domain.PermissionViewer)
	if !errors.Is(err, domain.ErrCreatorImmutable) {
		t.Fatalf("Expected ErrCreatorImmutable, got %v", err)
	}
}

func TestTransferBook_KeepsExactlyOneCreator(t *testing.T) {
	f := newFixture(t)
	manager := f.addMember(domain.PermissionManager)
	svc := f.memberService()

	members, err := svc.TransferBook(f.owner, f.book.ID, manager)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	creators := 0
	for _, m := range members {
		if m.Permission.IsCreator() {
			creators++
			if m.UserID != manager {
				t.Errorf("Expected new creator %s, got %s", manager, m.UserID)
			}
		}
		if m.UserID == f.owner && m.Permission != domain.PermissionManager {
			t.Errorf("Expected former creator demoted to manager, got %s", m.Permission)
		}
	}
	if creators != 1 {
		t.Errorf("Expected exactly one creator, got %d", creators)
	}
}

func TestTransferBook_CopiesCurrenciesToNewOwner(t *testing.T) {
	f := newFixture(t)
	manager := f.addMember(domain.PermissionManager)
	svc := f.memberService()

	// The book carries a custom currency that only the current owner defined
	if _, err := f.currencies.Create(&domain.Currency{
		UserID: f.owner,
		Code:   "THB",
		Name:   "Thai Baht",
		Symbol: "฿",
		Rate:   decimal.RequireFromString("0.2"),
	}); err != nil {
		t.Fatalf("creating currency: %v", err)
	}
	f.book.CurrencyCodes = append(f.book.CurrencyCodes, "THB")

	if _, err := svc.TransferBook(f.owner, f.book.ID, manager); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if f.book.OwnerID != manager {
		t.Errorf("Expected book owned by %s, got %s", manager, f.book.OwnerID)
	}

	// Rates now resolve from the new owner's registry, so every book
	// currency must exist there with the same rate
	for _, code := range f.book.CurrencyCodes {
		cur, err := f.currencies.GetByCode(manager, code)
		if err != nil {
			t.Fatalf("Expected %s in the new owner's registry, got %v", code, err)
		}
		if code == "THB" && !cur.Rate.Equal(decimal.RequireFromString("0.2")) {
			t.Errorf("Expected THB rate 0.2, got %s", cur.Rate)
		}
	}
}

func TestTransferBook_OnlyCreatorMayTransfer(t *testing.T) {
	f := newFixture(t)
	manager := f.addMember(domain.PermissionManager)
	other := f.addMember(domain.PermissionCollaborator)
	svc := f.memberService()

	_, err := svc.TransferBook(manager, f.book.ID, other)
	if !errors.Is(err, domain.ErrOnlyCreatorTransfer) {
		t.Fatalf("Expected ErrOnlyCreatorTransfer, got %v", err)
	}
}

func TestTransferBook_TargetMustBeMember(t *testing.T) {
	f := newFixture(t)
	outsider := f.users.AddUser(&domain.User{Auth0ID: "auth0|out", Email: "out@example.com"})
	svc := f.memberService()

	_, err := svc.TransferBook(f.owner, f.book.ID, outsider.ID)
	if !errors.Is(err, domain.ErrMemberNotFound) {
		t.Fatalf("Expected ErrMemberNotFound, got %v", err)
	}
}

func TestTransferBook_ToSelfRejected(t *testing.T) {
	f := newFixture(t)
	svc := f.memberService()

	_, err := svc.TransferBook(f.owner, f.book.ID, f.owner)
	if !errors.Is(err, domain.ErrTransferToSelf) {
		t.Fatalf("Expected ErrTransferToSelf, got %v", err)
	}
}
