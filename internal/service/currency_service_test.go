package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func TestGetCurrencies_SeedsDefaultsOnFirstRead(t *testing.T) {
	repo := testutil.NewMockCurrencyRepository()
	svc := NewCurrencyService(repo)
	userID := uuid.New()

	currencies, err := svc.GetCurrencies(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(currencies) != 3 {
		t.Fatalf("Expected 3 seeded defaults, got %d", len(currencies))
	}
	if currencies[0].Code != "CNY" || !currencies[0].Rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Expected CNY base with rate 1, got %s rate %s", currencies[0].Code, currencies[0].Rate)
	}
	for _, c := range currencies {
		if !c.IsSystemDefault {
			t.Errorf("Expected %s flagged as system default", c.Code)
		}
	}

	// A second read must not duplicate the defaults
	again, err := svc.GetCurrencies(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(again) != 3 {
		t.Errorf("Expected stable registry of 3, got %d", len(again))
	}
}

func TestGetCurrencies_MigratesLegacyGlobalsInsteadOfSeeding(t *testing.T) {
	repo := testutil.NewMockCurrencyRepository()
	repo.Legacy = []*domain.Currency{
		{Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Rate: decimal.RequireFromString("0.05")},
	}
	svc := NewCurrencyService(repo)
	userID := uuid.New()

	currencies, err := svc.GetCurrencies(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(currencies) != 1 || currencies[0].Code != "JPY" {
		t.Fatalf("Expected the migrated legacy row only, got %v", currencies)
	}
	if currencies[0].UserID != userID {
		t.Errorf("Expected migrated row scoped to user, got %s", currencies[0].UserID)
	}
}

func TestCreateCurrency_Validation(t *testing.T) {
	repo := testutil.NewMockCurrencyRepository()
	svc := NewCurrencyService(repo)
	userID := uuid.New()

	if _, err := svc.CreateCurrency(userID, CreateCurrencyInput{Name: "No code", Rate: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrCodeRequired) {
		t.Errorf("Expected ErrCodeRequired, got %v", err)
	}
	if _, err := svc.CreateCurrency(userID, CreateCurrencyInput{Code: "GBP", Rate: decimal.NewFromInt(1)}); !errors.Is(err, domain.ErrNameRequired) {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.CreateCurrency(userID, CreateCurrencyInput{Code: "GBP", Name: "Pound", Rate: decimal.Zero}); !errors.Is(err, domain.ErrInvalidRate) {
		t.Errorf("Expected ErrInvalidRate for zero rate, got %v", err)
	}
	if _, err := svc.CreateCurrency(userID, CreateCurrencyInput{Code: "GBP", Name: "Pound", Rate: decimal.NewFromInt(-1)}); !errors.Is(err, domain.ErrInvalidRate) {
		t.Errorf("Expected ErrInvalidRate for negative rate, got %v", err)
	}
}

func TestCreateCurrency_NormalizesCodeAndRejectsDuplicates(t *testing.T) {
	repo := testutil.NewMockCurrencyRepository()
	svc := NewCurrencyService(repo)
	userID := uuid.New()

	created, err := svc.CreateCurrency(userID, CreateCurrencyInput{
		Code: " gbp ",
		Name: "Pound Sterling",
		Rate: decimal.RequireFromString("9.1"),
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if created.Code != "GBP" {
		t.Errorf("Expected code normalized to GBP, got %s", created.Code)
	}

	_, err = svc.CreateCurrency(userID, CreateCurrencyInput{
		Code: "GBP",
		Name: "Pound again",
		Rate: decimal.NewFromInt(9),
	})
	if !errors.Is(err, domain.ErrDuplicateCurrency) {
		t.Fatalf("Expected ErrDuplicateCurrency, got %v", err)
	}
}

func TestDeleteCurrency_SystemDefaultBlocked(t *testing.T) {
	repo := testutil.NewMockCurrencyRepository()
	svc := NewCurrencyService(repo)
	userID := uuid.New()

	if _, err := svc.GetCurrencies(userID); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	if err := svc.DeleteCurrency(userID, "USD"); !errors.Is(err, domain.ErrSystemDefaultCurrency) {
		t.Fatalf("Expected ErrSystemDefaultCurrency, got %v", err)
	}
}

func TestDeleteCurrency_ReferencedBlocked(t *testing.T) {
	repo := testutil.NewMockCurrencyRepository()
	svc := NewCurrencyService(repo)
	userID := uuid.New()

	if _, err := svc.CreateCurrency(userID, CreateCurrencyInput{
		Code: "GBP",
		Name: "Pound Sterling",
		Rate: decimal.RequireFromString("9.1"),
	}); err != nil {
		t.Fatalf("creating: %v", err)
	}
	repo.Referenced[userID.String()+":GBP"] = true

	if err := svc.DeleteCurrency(userID, "GBP"); !errors.Is(err, domain.ErrCurrencyInUse) {
		t.Fatalf("Expected ErrCurrencyInUse, got %v", err)
	}
}

func TestDeleteCurrency_UnreferencedCustomSucceeds(t *testing.T) {
	repo := testutil.NewMockCurrencyRepository()
	svc := NewCurrencyService(repo)
	userID := uuid.New()

	if _, err := svc.CreateCurrency(userID, CreateCurrencyInput{
		Code: "GBP",
		Name: "Pound Sterling",
		Rate: decimal.RequireFromString("9.1"),
	}); err != nil {
		t.Fatalf("creating: %v", err)
	}

	if err := svc.DeleteCurrency(userID, "GBP"); err != nil {
		t.Fatalf("Expected delete to succeed, got %v", err)
	}
	if _, err := svc.GetCurrency(userID, "GBP"); !errors.Is(err, domain.ErrCurrencyNotFound) {
		t.Fatalf("Expected currency gone, got %v", err)
	}
}
