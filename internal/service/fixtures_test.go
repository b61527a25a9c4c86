package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/moneybook/moneybook-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

// fixture wires the in-memory repositories around one book owned by owner,
// with CNY (base) and USD in the currency set and CNY as the default.
type fixture struct {
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

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
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

// addMember registers another user on the fixture book with the given role
func (f *fixture) addMember(permission domain.Permission) uuid.UUID {
	userID := uuid.New()
	f.members.AddMember(f.book.ID, userID, permission)
	return userID
}

// addAccount creates an account in the fixture book
func (f *fixture) addAccount(t *testing.T, name, currency string, initial decimal.Decimal) *domain.Account {
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

// addCategory creates a category in the fixture book
func (f *fixture) addCategory(t *testing.T, name string, categoryType domain.TransactionType) *domain.Category {
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

func (f *fixture) accountService() *AccountService {
	return NewAccountService(f.accounts, f.books, f.currencies, f.members)
}

func (f *fixture) transactionService() *TransactionService {
	return NewTransactionService(f.txns, f.accounts, f.categories, f.persons, f.tags, f.members)
}

func (f *fixture) bookService() *BookService {
	return NewBookService(f.books, f.currencies, f.members)
}

func (f *fixture) memberService() *MemberService {
	return NewMemberService(f.members, f.users, f.books, f.currencies)
}
