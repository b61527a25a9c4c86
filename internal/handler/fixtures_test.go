package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/middleware"
	"github.com/moneybook/moneybook-backend/internal/service"
	"github.com/moneybook/moneybook-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

// setupAuthContext injects validated Auth0 claims the way the JWT
// middleware would
func setupAuthContext(c echo.Context, auth0ID, email, name, picture string) {
	customClaims := &middleware.CustomClaims{
		Email:   email,
		Name:    name,
		Picture: picture,
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Subject: auth0ID,
		},
		CustomClaims: customClaims,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// setupUserContext injects a resolved user ID, as the middleware does for
// known users
func setupUserContext(c echo.Context, userID uuid.UUID) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))
}

// newJSONContext builds an echo context for a JSON request
func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// handlerFixture wires in-memory repositories around one book owned by
// owner, with CNY (base) and USD in the currency set and CNY as default
type handlerFixture struct {
	users      *testutil.MockUserRepository
	currencies *testutil.MockCurrencyRepository
	members    *testutil.MockMemberRepository
	books      *testutil.MockBookRepository
	accounts   *testutil.MockAccountRepository
	txns       *testutil.MockTransactionRepository
	categories *testutil.MockCategoryRepository
	tags       *testutil.MockTagRepository
	persons    *testutil.MockPersonRepository
	budgets    *testutil.MockBudgetRepository

	owner uuid.UUID
	book  *domain.Book
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	f := &handlerFixture{
		users:      testutil.NewMockUserRepository(),
		currencies: testutil.NewMockCurrencyRepository(),
		members:    testutil.NewMockMemberRepository(),
		accounts:   testutil.NewMockAccountRepository(),
		categories: testutil.NewMockCategoryRepository(),
		tags:       testutil.NewMockTagRepository(),
		persons:    testutil.NewMockPersonRepository(),
		budgets:    testutil.NewMockBudgetRepository(),
		owner:      uuid.New(),
	}
	f.books = testutil.NewMockBookRepository(f.members)
	f.txns = testutil.NewMockTransactionRepository(f.accounts)

	if _, err := f.currencies.SeedDefaults(f.owner, domain.SystemDefaultCurrencies); err != nil {
		t.Fatalf("seeding currencies: %v", err)
	}

	book, err := f.books.Create(&domain.Book{
		Name:            "Household",
		CurrencyCodes:   []string{"CNY", "USD"},
		DefaultCurrency: "CNY",
		OwnerID:         f.owner,
		Timezone:        "UTC",
	}, f.owner)
	if err != nil {
		t.Fatalf("creating book: %v", err)
	}
	f.book = book

	return f
}

func (f *handlerFixture) addAccount(t *testing.T, name, currency string, initial decimal.Decimal) *domain.Account {
	t.Helper()
	account, err := f.accounts.Create(&domain.Account{
		BookID:         f.book.ID,
		Name:           name,
		Currency:       currency,
		InitialBalance: initial,
	})
	if err != nil {
		t.Fatalf("creating account: %v", err)
	}
	return account
}

func (f *handlerFixture) addCategory(t *testing.T, name string, categoryType domain.TransactionType) *domain.Category {
	t.Helper()
	category, err := f.categories.Create(&domain.Category{
		BookID: f.book.ID,
		Name:   name,
		Type:   categoryType,
	})
	if err != nil {
		t.Fatalf("creating category: %v", err)
	}
	return category
}

func (f *handlerFixture) bookHandler() *BookHandler {
	return NewBookHandler(service.NewBookService(f.books, f.currencies, f.members))
}

func (f *handlerFixture) accountHandler() *AccountHandler {
	return NewAccountHandler(service.NewAccountService(f.accounts, f.books, f.currencies, f.members))
}

func (f *handlerFixture) transactionHandler() *TransactionHandler {
	return NewTransactionHandler(service.NewTransactionService(f.txns, f.accounts, f.categories, f.persons, f.tags, f.members))
}

func (f *handlerFixture) tagHandler() *TagHandler {
	return NewTagHandler(service.NewTagService(f.tags, f.txns, f.members))
}

func (f *handlerFixture) memberHandler() *MemberHandler {
	return NewMemberHandler(service.NewMemberService(f.members, f.users, f.books, f.currencies))
}
