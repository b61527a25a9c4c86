package service

import (
	"errors"
	"testing"
	"time"

	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

func TestDeleteCategory_InUseBlocked(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, "Wallet", "CNY", decimal.Zero)
	category := f.addCategory(t, "Food", domain.TransactionTypeExpense)

	if _, err := f.txns.Create(&domain.Transaction{
		BookID:     f.book.ID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.RequireFromString("10.00"),
	}); err != nil {
		t.Fatalf("creating transaction: %v", err)
	}

	svc := NewCategoryService(f.categories, f.txns, f.members)
	if err := svc.DeleteCategory(f.owner, f.book.ID, category.ID); !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("Expected ErrCategoryInUse, got %v", err)
	}
}

func TestDeleteCategory_UnusedSucceeds(t *testing.T) {
	f := newFixture(t)
	category := f.addCategory(t, "Food", domain.TransactionTypeExpense)

	svc := NewCategoryService(f.categories, f.txns, f.members)
	if err := svc.DeleteCategory(f.owner, f.book.ID, category.ID); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
}

func TestCreateCategory_InvalidType(t *testing.T) {
	f := newFixture(t)
	svc := NewCategoryService(f.categories, f.txns, f.members)

	_, err := svc.CreateCategory(f.owner, f.book.ID, "Misc", domain.TransactionType("refund"))
	if !errors.Is(err, domain.ErrInvalidTransactionType) {
		t.Fatalf("Expected ErrInvalidTransactionType, got %v", err)
	}
}

func TestCreateTag_NormalizesColor(t *testing.T) {
	f := newFixture(t)
	svc := NewTagService(f.tags, f.txns, f.members)

	tag, err := svc.CreateTag(f.owner, f.book.ID, "vacation", "FFAA00")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tag.Color != "#ffaa00" {
		t.Errorf("Expected canonical #ffaa00, got %s", tag.Color)
	}

	if _, err := svc.CreateTag(f.owner, f.book.ID, "bad", "#12345"); !errors.Is(err, domain.ErrInvalidColor) {
		t.Fatalf("Expected ErrInvalidColor, got %v", err)
	}
}

func TestDeleteTag_InUseBlocked(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, "Wallet", "CNY", decimal.Zero)
	category := f.addCategory(t, "Food", domain.TransactionTypeExpense)
	svc := NewTagService(f.tags, f.txns, f.members)

	tag, err := svc.CreateTag(f.owner, f.book.ID, "vacation", "#ffaa00")
	if err != nil {
		t.Fatalf("creating tag: %v", err)
	}
	if _, err := f.txns.Create(&domain.Transaction{
		BookID:     f.book.ID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.RequireFromString("10.00"),
		TagIDs:     []int32{tag.ID},
	}); err != nil {
		t.Fatalf("creating transaction: %v", err)
	}

	if err := svc.DeleteTag(f.owner, f.book.ID, tag.ID); !errors.Is(err, domain.ErrTagInUse) {
		t.Fatalf("Expected ErrTagInUse, got %v", err)
	}
}

func TestDeletePerson_InUseBlocked(t *testing.T) {
	f := newFixture(t)
	account := f.addAccount(t, "Wallet", "CNY", decimal.Zero)
	category := f.addCategory(t, "Food", domain.TransactionTypeExpense)
	svc := NewPersonService(f.persons, f.txns, f.members)

	person, err := svc.CreatePerson(f.owner, f.book.ID, CreatePersonInput{
		Name: "Landlord",
		Type: domain.PersonTypeOrganization,
	})
	if err != nil {
		t.Fatalf("creating person: %v", err)
	}
	if _, err := f.txns.Create(&domain.Transaction{
		BookID:     f.book.ID,
		AccountID:  account.ID,
		CategoryID: category.ID,
		Type:       domain.TransactionTypeExpense,
		Amount:     decimal.RequireFromString("10.00"),
		PersonIDs:  []int32{person.ID},
	}); err != nil {
		t.Fatalf("creating transaction: %v", err)
	}

	if err := svc.DeletePerson(f.owner, f.book.ID, person.ID); !errors.Is(err, domain.ErrPersonInUse) {
		t.Fatalf("Expected ErrPersonInUse, got %v", err)
	}
}

func TestCreatePerson_InvalidType(t *testing.T) {
	f := newFixture(t)
	svc := NewPersonService(f.persons, f.txns, f.members)

	_, err := svc.CreatePerson(f.owner, f.book.ID, CreatePersonInput{
		Name: "Landlord",
		Type: domain.PersonType("robot"),
	})
	if !errors.Is(err, domain.ErrInvalidPersonType) {
		t.Fatalf("Expected ErrInvalidPersonType, got %v", err)
	}
}

func TestCreateBudget_Validation(t *testing.T) {
	f := newFixture(t)
	incomeCat := f.addCategory(t, "Salary", domain.TransactionTypeIncome)
	svc := NewBudgetService(f.budgets, f.categories, f.members)

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	if _, err := svc.CreateBudget(f.owner, f.book.ID, BudgetInput{
		Name:      "Groceries",
		Amount:    decimal.Zero,
		Period:    domain.BudgetPeriodMonthly,
		StartDate: start,
		EndDate:   end,
	}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount, got %v", err)
	}

	if _, err := svc.CreateBudget(f.owner, f.book.ID, BudgetInput{
		Name:      "Groceries",
		Amount:    decimal.RequireFromString("500"),
		Period:    domain.BudgetPeriod("quarterly"),
		StartDate: start,
		EndDate:   end,
	}); !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("Expected ErrInvalidPeriod, got %v", err)
	}

	if _, err := svc.CreateBudget(f.owner, f.book.ID, BudgetInput{
		Name:      "Groceries",
		Amount:    decimal.RequireFromString("500"),
		Period:    domain.BudgetPeriodMonthly,
		StartDate: end,
		EndDate:   start,
	}); !errors.Is(err, domain.ErrInvalidPeriod) {
		t.Errorf("Expected ErrInvalidPeriod for inverted range, got %v", err)
	}

	// Budgets track spending, so income categories are rejected
	if _, err := svc.CreateBudget(f.owner, f.book.ID, BudgetInput{
		Name:       "Groceries",
		Amount:     decimal.RequireFromString("500"),
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  start,
		EndDate:    end,
		CategoryID: &incomeCat.ID,
	}); !errors.Is(err, domain.ErrCategoryTypeMismatch) {
		t.Errorf("Expected ErrCategoryTypeMismatch, got %v", err)
	}
}

func TestCreateBudget_Success(t *testing.T) {
	f := newFixture(t)
	expenseCat := f.addCategory(t, "Food", domain.TransactionTypeExpense)
	svc := NewBudgetService(f.budgets, f.categories, f.members)

	budget, err := svc.CreateBudget(f.owner, f.book.ID, BudgetInput{
		Name:       "Groceries",
		Amount:     decimal.RequireFromString("500"),
		Period:     domain.BudgetPeriodMonthly,
		StartDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		CategoryID: &expenseCat.ID,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if budget.ID == 0 {
		t.Error("Expected an assigned ID")
	}
}
