package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users   map[string]*domain.User
	ByID    map[uuid.UUID]*domain.User
	ByEmail map[string]*domain.User
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:   make(map[string]*domain.User),
		ByID:    make(map[uuid.UUID]*domain.User),
		ByEmail: make(map[string]*domain.User),
	}
}

// AddUser seeds a user into all lookup maps
func (m *MockUserRepository) AddUser(user *domain.User) *domain.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.Users[user.Auth0ID] = user
	m.ByID[user.ID] = user
	m.ByEmail[user.Email] = user
	return user
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByAuth0ID retrieves a user by Auth0 ID
func (m *MockUserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by email
func (m *MockUserRepository) GetByEmail(email string) (*domain.User, error) {
	if user, ok := m.ByEmail[email]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// CreateOrGetByAuth0ID creates or retrieves a user by Auth0 ID
func (m *MockUserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	if user, ok := m.Users[auth0ID]; ok {
		user.Email = email
		user.PictureURL = pictureURL
		return user, nil
	}
	return m.AddUser(&domain.User{
		Auth0ID:    auth0ID,
		Email:      email,
		Name:       name,
		PictureURL: pictureURL,
		CreatedAt:  time.Now(),
	}), nil
}

// UpdateName updates only the user's name by Auth0 ID
func (m *MockUserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	user, ok := m.Users[auth0ID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user.Name = &name
	return user, nil
}

// MockCurrencyRepository is a mock implementation of domain.CurrencyRepository
type MockCurrencyRepository struct {
	Currencies map[uuid.UUID][]*domain.Currency
	Legacy     []*domain.Currency
	Referenced map[string]bool // key "userID:code"
	nextID     int32
}

// NewMockCurrencyRepository creates a new MockCurrencyRepository
func NewMockCurrencyRepository() *MockCurrencyRepository {
	return &MockCurrencyRepository{
		Currencies: make(map[uuid.UUID][]*domain.Currency),
		Referenced: make(map[string]bool),
	}
}

// ListByUser returns the user's currencies in insertion order
func (m *MockCurrencyRepository) ListByUser(userID uuid.UUID) ([]*domain.Currency, error) {
	return m.Currencies[userID], nil
}

// GetByCode retrieves a currency by code
func (m *MockCurrencyRepository) GetByCode(userID uuid.UUID, code string) (*domain.Currency, error) {
	for _, c := range m.Currencies[userID] {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, domain.ErrCurrencyNotFound
}

// Create adds a currency
func (m *MockCurrencyRepository) Create(currency *domain.Currency) (*domain.Currency, error) {
	for _, c := range m.Currencies[currency.UserID] {
		if c.Code == currency.Code {
			return nil, domain.ErrDuplicateCurrency
		}
	}
	m.nextID++
	currency.ID = m.nextID
	currency.CreatedAt = time.Now()
	m.Currencies[currency.UserID] = append(m.Currencies[currency.UserID], currency)
	return currency, nil
}

// Update changes a currency's mutable fields
func (m *MockCurrencyRepository) Update(userID uuid.UUID, code string, name, symbol string, rate decimal.Decimal) (*domain.Currency, error) {
	currency, err := m.GetByCode(userID, code)
	if err != nil {
		return nil, err
	}
	currency.Name = name
	currency.Symbol = symbol
	currency.Rate = rate
	return currency, nil
}

// Delete removes a currency
func (m *MockCurrencyRepository) Delete(userID uuid.UUID, code string) error {
	list := m.Currencies[userID]
	for i, c := range list {
		if c.Code == code {
			m.Currencies[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrCurrencyNotFound
}

// SeedDefaults inserts the given defaults into the user's scope
func (m *MockCurrencyRepository) SeedDefaults(userID uuid.UUID, defaults []domain.Currency) ([]*domain.Currency, error) {
	for i := range defaults {
		c := defaults[i]
		c.UserID = userID
		if _, err := m.Create(&c); err != nil {
			return nil, err
		}
	}
	return m.Currencies[userID], nil
}

// MigrateLegacyGlobal copies legacy global rows into the user's scope
func (m *MockCurrencyRepository) MigrateLegacyGlobal(userID uuid.UUID) (bool, error) {
	if len(m.Legacy) == 0 {
		return false, nil
	}
	for _, legacy := range m.Legacy {
		c := *legacy
		c.UserID = userID
		if _, err := m.Create(&c); err != nil {
			return false, err
		}
	}
	return true, nil
}

// IsReferenced reports whether the code is marked referenced
func (m *MockCurrencyRepository) IsReferenced(userID uuid.UUID, code string) (bool, error) {
	return m.Referenced[userID.String()+":"+code], nil
}

// MockMemberRepository is a mock implementation of domain.MemberRepository.
// Books is back-filled by NewMockBookRepository so Transfer can reassign
// book ownership like the SQL implementation does.
type MockMemberRepository struct {
	Members map[string]*domain.Member // key "bookID:userID"
	Books   *MockBookRepository
}

// NewMockMemberRepository creates a new MockMemberRepository
func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{Members: make(map[string]*domain.Member)}
}

func memberKey(bookID int32, userID uuid.UUID) string {
	return fmt.Sprintf("%d:%s", bookID, userID)
}

// AddMember seeds a membership
func (m *MockMemberRepository) AddMember(bookID int32, userID uuid.UUID, permission domain.Permission) *domain.Member {
	member := &domain.Member{
		BookID:     bookID,
		UserID:     userID,
		Permission: permission,
		JoinedAt:   time.Now(),
	}
	m.Members[memberKey(bookID, userID)] = member
	return member
}

// Get retrieves a membership
func (m *MockMemberRepository) Get(bookID int32, userID uuid.UUID) (*domain.Member, error) {
	if member, ok := m.Members[memberKey(bookID, userID)]; ok {
		return member, nil
	}
	return nil, domain.ErrMemberNotFound
}

// ListByBook lists members of a book, creator first
func (m *MockMemberRepository) ListByBook(bookID int32) ([]*domain.Member, error) {
	var result []*domain.Member
	for _, member := range m.Members {
		if member.BookID == bookID {
			result = append(result, member)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Permission.IsCreator() != result[j].Permission.IsCreator() {
			return result[i].Permission.IsCreator()
		}
		return result[i].UserID.String() < result[j].UserID.String()
	})
	return result, nil
}

// Add inserts a membership
func (m *MockMemberRepository) Add(member *domain.Member) (*domain.Member, error) {
	key := memberKey(member.BookID, member.UserID)
	if _, ok := m.Members[key]; ok {
		return nil, domain.ErrAlreadyMember
	}
	member.JoinedAt = time.Now()
	m.Members[key] = member
	return member, nil
}

// UpdatePermission changes a member's role
func (m *MockMemberRepository) UpdatePermission(bookID int32, userID uuid.UUID, permission domain.Permission) (*domain.Member, error) {
	member, err := m.Get(bookID, userID)
	if err != nil {
		return nil, err
	}
	member.Permission = permission
	return member, nil
}

// Remove deletes a membership
func (m *MockMemberRepository) Remove(bookID int32, userID uuid.UUID) error {
	key := memberKey(bookID, userID)
	if _, ok := m.Members[key]; !ok {
		return domain.ErrMemberNotFound
	}
	delete(m.Members, key)
	return nil
}

// Transfer hands the creator role to newOwner, demotes oldOwner to manager
// and reassigns book ownership
func (m *MockMemberRepository) Transfer(bookID int32, oldOwner, newOwner uuid.UUID) error {
	oldMember, err := m.Get(bookID, oldOwner)
	if err != nil {
		return err
	}
	newMember, err := m.Get(bookID, newOwner)
	if err != nil {
		return err
	}
	newMember.Permission = domain.PermissionCreator
	oldMember.Permission = domain.PermissionManager
	if m.Books != nil {
		if book, ok := m.Books.Books[bookID]; ok {
			book.OwnerID = newOwner
		}
	}
	return nil
}

// MockBookRepository is a mock implementation of domain.BookRepository
type MockBookRepository struct {
	Books        map[int32]*domain.Book
	Members      *MockMemberRepository
	AccountCount map[int32]int64
	CurrencyUsed map[string]bool // key "bookID:code"
	nextID       int32
}

// NewMockBookRepository creates a new MockBookRepository linked to a member repo
func NewMockBookRepository(members *MockMemberRepository) *MockBookRepository {
	repo := &MockBookRepository{
		Books:        make(map[int32]*domain.Book),
		Members:      members,
		AccountCount: make(map[int32]int64),
		CurrencyUsed: make(map[string]bool),
	}
	members.Books = repo
	return repo
}

// Create inserts a book and its creator membership
func (m *MockBookRepository) Create(book *domain.Book, creator uuid.UUID) (*domain.Book, error) {
	m.nextID++
	book.ID = m.nextID
	book.CreatedAt = time.Now()
	m.Books[book.ID] = book
	if m.Members != nil {
		m.Members.AddMember(book.ID, creator, domain.PermissionCreator)
	}
	return book, nil
}

// GetByID retrieves a book
func (m *MockBookRepository) GetByID(id int32) (*domain.Book, error) {
	if book, ok := m.Books[id]; ok {
		return book, nil
	}
	return nil, domain.ErrBookNotFound
}

// GetAllByUser lists books the user is a member of
func (m *MockBookRepository) GetAllByUser(userID uuid.UUID) ([]*domain.Book, error) {
	var result []*domain.Book
	for _, book := range m.Books {
		if m.Members != nil {
			if _, err := m.Members.Get(book.ID, userID); err == nil {
				result = append(result, book)
			}
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update rewrites a book's mutable fields
func (m *MockBookRepository) Update(id int32, name string, description *string, currencyCodes []string, defaultCurrency string) (*domain.Book, error) {
	book, ok := m.Books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	book.Name = name
	book.Description = description
	book.CurrencyCodes = currencyCodes
	book.DefaultCurrency = defaultCurrency
	return book, nil
}

// Delete removes a book and its memberships
func (m *MockBookRepository) Delete(id int32) error {
	if _, ok := m.Books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(m.Books, id)
	if m.Members != nil {
		for key, member := range m.Members.Members {
			if member.BookID == id {
				delete(m.Members.Members, key)
			}
		}
	}
	return nil
}

// CountAccounts reports the seeded account count for a book
func (m *MockBookRepository) CountAccounts(id int32) (int64, error) {
	return m.AccountCount[id], nil
}

// CurrencyUsedByAccount reports whether the code is marked in use
func (m *MockBookRepository) CurrencyUsedByAccount(id int32, code string) (bool, error) {
	return m.CurrencyUsed[fmt.Sprintf("%d:%s", id, code)], nil
}

// MockAccountRepository is a mock implementation of domain.AccountRepository
type MockAccountRepository struct {
	Accounts map[int32]*domain.Account
	nextID   int32
}

// NewMockAccountRepository creates a new MockAccountRepository
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{Accounts: make(map[int32]*domain.Account)}
}

// Create inserts an account
func (m *MockAccountRepository) Create(account *domain.Account) (*domain.Account, error) {
	m.nextID++
	account.ID = m.nextID
	account.TotalIncome = decimal.Zero
	account.TotalExpense = decimal.Zero
	account.CreatedAt = time.Now()
	m.Accounts[account.ID] = account
	return account, nil
}

// GetByID retrieves an account within a book
func (m *MockAccountRepository) GetByID(bookID int32, id int32) (*domain.Account, error) {
	if account, ok := m.Accounts[id]; ok && account.BookID == bookID {
		return account, nil
	}
	return nil, domain.ErrAccountNotFound
}

// GetAllByBook lists accounts for a book
func (m *MockAccountRepository) GetAllByBook(bookID int32) ([]*domain.Account, error) {
	var result []*domain.Account
	for _, account := range m.Accounts {
		if account.BookID == bookID {
			result = append(result, account)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update rewrites an account's mutable fields
func (m *MockAccountRepository) Update(bookID int32, id int32, name string, currency string, initialBalance decimal.Decimal) (*domain.Account, error) {
	account, err := m.GetByID(bookID, id)
	if err != nil {
		return nil, err
	}
	account.Name = name
	account.Currency = currency
	account.InitialBalance = initialBalance
	return account, nil
}

// Delete removes an account
func (m *MockAccountRepository) Delete(bookID int32, id int32) error {
	if _, err := m.GetByID(bookID, id); err != nil {
		return err
	}
	delete(m.Accounts, id)
	return nil
}

// MockTransactionRepository is a mock implementation of
// domain.TransactionRepository. It mirrors the production semantics:
// every write adjusts the owning account's aggregates and creation flips
// the has_transactions latch.
type MockTransactionRepository struct {
	Transactions map[int32]*domain.Transaction
	Accounts     *MockAccountRepository
	nextID       int32
}

// NewMockTransactionRepository creates a transaction mock linked to accounts
func NewMockTransactionRepository(accounts *MockAccountRepository) *MockTransactionRepository {
	return &MockTransactionRepository{
		Transactions: make(map[int32]*domain.Transaction),
		Accounts:     accounts,
	}
}

func (m *MockTransactionRepository) applyEffect(bookID, accountID int32, income, expense decimal.Decimal, latch bool) error {
	account, err := m.Accounts.GetByID(bookID, accountID)
	if err != nil {
		return err
	}
	account.TotalIncome = account.TotalIncome.Add(income)
	account.TotalExpense = account.TotalExpense.Add(expense)
	if latch {
		account.HasTransactions = true
	}
	return nil
}

// Create inserts a transaction and adjusts its account
func (m *MockTransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	income, expense := tx.AggregateEffect()
	if err := m.applyEffect(tx.BookID, tx.AccountID, income, expense, true); err != nil {
		return nil, err
	}
	m.nextID++
	tx.ID = m.nextID
	tx.CreatedAt = time.Now()
	m.Transactions[tx.ID] = tx
	return tx, nil
}

// CreateTransferPair inserts both transfer legs and adjusts both accounts
func (m *MockTransactionRepository) CreateTransferPair(from, to *domain.Transaction) (*domain.Transaction, *domain.Transaction, error) {
	if err := m.applyEffect(from.BookID, from.AccountID, decimal.Zero, from.Amount, true); err != nil {
		return nil, nil, err
	}
	if err := m.applyEffect(to.BookID, to.AccountID, to.Amount, decimal.Zero, true); err != nil {
		return nil, nil, err
	}
	m.nextID++
	from.ID = m.nextID
	m.Transactions[from.ID] = from
	m.nextID++
	to.ID = m.nextID
	m.Transactions[to.ID] = to
	return from, to, nil
}

// GetByID retrieves a transaction within a book
func (m *MockTransactionRepository) GetByID(bookID int32, id int32) (*domain.Transaction, error) {
	if tx, ok := m.Transactions[id]; ok && tx.BookID == bookID {
		return tx, nil
	}
	return nil, domain.ErrTransactionNotFound
}

// GetByBook lists transactions with filters, newest first
func (m *MockTransactionRepository) GetByBook(bookID int32, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	var matched []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.BookID != bookID {
			continue
		}
		if filters.AccountID != nil && tx.AccountID != *filters.AccountID {
			continue
		}
		if filters.CategoryID != nil && tx.CategoryID != *filters.CategoryID {
			continue
		}
		if filters.Type != nil && tx.Type != *filters.Type {
			continue
		}
		if filters.StartDate != nil && tx.TransactionDate.Before(*filters.StartDate) {
			continue
		}
		if filters.EndDate != nil && tx.TransactionDate.After(*filters.EndDate) {
			continue
		}
		if filters.PersonID != nil && !containsID(tx.PersonIDs, *filters.PersonID) {
			continue
		}
		if filters.TagID != nil && !containsID(tx.TagIDs, *filters.TagID) {
			continue
		}
		matched = append(matched, tx)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].TransactionDate.Equal(matched[j].TransactionDate) {
			return matched[i].TransactionDate.After(matched[j].TransactionDate)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := (filters.Page - 1) * filters.PageSize
	if start > int32(len(matched)) {
		start = int32(len(matched))
	}
	end := start + filters.PageSize
	if end > int32(len(matched)) {
		end = int32(len(matched))
	}
	totalPages := int32(0)
	if filters.PageSize > 0 {
		totalPages = int32((total + int64(filters.PageSize) - 1) / int64(filters.PageSize))
	}
	return &domain.PaginatedTransactions{
		Data:       matched[start:end],
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Update rewrites a transaction, reversing the old effect first
func (m *MockTransactionRepository) Update(bookID int32, id int32, updated *domain.Transaction) (*domain.Transaction, error) {
	existing, err := m.GetByID(bookID, id)
	if err != nil {
		return nil, err
	}

	oldIncome, oldExpense := existing.AggregateEffect()
	if err := m.applyEffect(bookID, existing.AccountID, oldIncome.Neg(), oldExpense.Neg(), false); err != nil {
		return nil, err
	}

	updated.ID = id
	updated.BookID = bookID
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	newIncome, newExpense := updated.AggregateEffect()
	if err := m.applyEffect(bookID, updated.AccountID, newIncome, newExpense, true); err != nil {
		return nil, err
	}

	m.Transactions[id] = updated
	return updated, nil
}

// Delete removes a transaction and reverses its effect
func (m *MockTransactionRepository) Delete(bookID int32, id int32) error {
	existing, err := m.GetByID(bookID, id)
	if err != nil {
		return err
	}
	income, expense := existing.AggregateEffect()
	if err := m.applyEffect(bookID, existing.AccountID, income.Neg(), expense.Neg(), false); err != nil {
		return err
	}
	delete(m.Transactions, id)
	return nil
}

// DeleteTransferPair removes both legs of a transfer and reverses each
func (m *MockTransactionRepository) DeleteTransferPair(bookID int32, pairID uuid.UUID) error {
	var legs []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.BookID == bookID && tx.TransferPairID != nil && *tx.TransferPairID == pairID {
			legs = append(legs, tx)
		}
	}
	if len(legs) == 0 {
		return domain.ErrTransactionNotFound
	}
	for _, leg := range legs {
		income, expense := leg.AggregateEffect()
		if err := m.applyEffect(bookID, leg.AccountID, income.Neg(), expense.Neg(), false); err != nil {
			return err
		}
		delete(m.Transactions, leg.ID)
	}
	return nil
}

// SetReceiptKey sets or clears a transaction's receipt key
func (m *MockTransactionRepository) SetReceiptKey(bookID int32, id int32, key *string) error {
	tx, err := m.GetByID(bookID, id)
	if err != nil {
		return err
	}
	tx.ReceiptKey = key
	return nil
}

// CountByCategory counts transactions referencing a category
func (m *MockTransactionRepository) CountByCategory(bookID int32, categoryID int32) (int64, error) {
	var count int64
	for _, tx := range m.Transactions {
		if tx.BookID == bookID && tx.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

// CountByTag counts transactions referencing a tag
func (m *MockTransactionRepository) CountByTag(bookID int32, tagID int32) (int64, error) {
	var count int64
	for _, tx := range m.Transactions {
		if tx.BookID == bookID && containsID(tx.TagIDs, tagID) {
			count++
		}
	}
	return count, nil
}

// CountByPerson counts transactions referencing a person
func (m *MockTransactionRepository) CountByPerson(bookID int32, personID int32) (int64, error) {
	var count int64
	for _, tx := range m.Transactions {
		if tx.BookID == bookID && containsID(tx.PersonIDs, personID) {
			count++
		}
	}
	return count, nil
}

func containsID(ids []int32, id int32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[int32]*domain.Category
	nextID     int32
}

// NewMockCategoryRepository creates a new MockCategoryRepository
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{Categories: make(map[int32]*domain.Category)}
}

// Create inserts a category
func (m *MockCategoryRepository) Create(category *domain.Category) (*domain.Category, error) {
	m.nextID++
	category.ID = m.nextID
	m.Categories[category.ID] = category
	return category, nil
}

// GetByID retrieves a category within a book
func (m *MockCategoryRepository) GetByID(bookID int32, id int32) (*domain.Category, error) {
	if category, ok := m.Categories[id]; ok && category.BookID == bookID {
		return category, nil
	}
	return nil, domain.ErrCategoryNotFound
}

// GetAllByBook lists categories for a book
func (m *MockCategoryRepository) GetAllByBook(bookID int32) ([]*domain.Category, error) {
	var result []*domain.Category
	for _, category := range m.Categories {
		if category.BookID == bookID {
			result = append(result, category)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update renames a category
func (m *MockCategoryRepository) Update(bookID int32, id int32, name string) (*domain.Category, error) {
	category, err := m.GetByID(bookID, id)
	if err != nil {
		return nil, err
	}
	category.Name = name
	return category, nil
}

// Delete removes a category
func (m *MockCategoryRepository) Delete(bookID int32, id int32) error {
	if _, err := m.GetByID(bookID, id); err != nil {
		return err
	}
	delete(m.Categories, id)
	return nil
}

// MockTagRepository is a mock implementation of domain.TagRepository
type MockTagRepository struct {
	Tags   map[int32]*domain.Tag
	nextID int32
}

// NewMockTagRepository creates a new MockTagRepository
func NewMockTagRepository() *MockTagRepository {
	return &MockTagRepository{Tags: make(map[int32]*domain.Tag)}
}

// Create inserts a tag
func (m *MockTagRepository) Create(tag *domain.Tag) (*domain.Tag, error) {
	m.nextID++
	tag.ID = m.nextID
	m.Tags[tag.ID] = tag
	return tag, nil
}

// GetByID retrieves a tag within a book
func (m *MockTagRepository) GetByID(bookID int32, id int32) (*domain.Tag, error) {
	if tag, ok := m.Tags[id]; ok && tag.BookID == bookID {
		return tag, nil
	}
	return nil, domain.ErrTagNotFound
}

// GetAllByBook lists tags for a book
func (m *MockTagRepository) GetAllByBook(bookID int32) ([]*domain.Tag, error) {
	var result []*domain.Tag
	for _, tag := range m.Tags {
		if tag.BookID == bookID {
			result = append(result, tag)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update changes a tag's name and color
func (m *MockTagRepository) Update(bookID int32, id int32, name, color string) (*domain.Tag, error) {
	tag, err := m.GetByID(bookID, id)
	if err != nil {
		return nil, err
	}
	tag.Name = name
	tag.Color = color
	return tag, nil
}

// Delete removes a tag
func (m *MockTagRepository) Delete(bookID int32, id int32) error {
	if _, err := m.GetByID(bookID, id); err != nil {
		return err
	}
	delete(m.Tags, id)
	return nil
}

// MockPersonRepository is a mock implementation of domain.PersonRepository
type MockPersonRepository struct {
	Persons map[int32]*domain.Person
	nextID  int32
}

// NewMockPersonRepository creates a new MockPersonRepository
func NewMockPersonRepository() *MockPersonRepository {
	return &MockPersonRepository{Persons: make(map[int32]*domain.Person)}
}

// Create inserts a person
func (m *MockPersonRepository) Create(person *domain.Person) (*domain.Person, error) {
	m.nextID++
	person.ID = m.nextID
	m.Persons[person.ID] = person
	return person, nil
}

// GetByID retrieves a person within a book
func (m *MockPersonRepository) GetByID(bookID int32, id int32) (*domain.Person, error) {
	if person, ok := m.Persons[id]; ok && person.BookID == bookID {
		return person, nil
	}
	return nil, domain.ErrPersonNotFound
}

// GetAllByBook lists persons for a book
func (m *MockPersonRepository) GetAllByBook(bookID int32) ([]*domain.Person, error) {
	var result []*domain.Person
	for _, person := range m.Persons {
		if person.BookID == bookID {
			result = append(result, person)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update changes a person's fields
func (m *MockPersonRepository) Update(bookID int32, id int32, name string, personType domain.PersonType, contact, notes *string) (*domain.Person, error) {
	person, err := m.GetByID(bookID, id)
	if err != nil {
		return nil, err
	}
	person.Name = name
	person.Type = personType
	person.Contact = contact
	person.Notes = notes
	return person, nil
}

// Delete removes a person
func (m *MockPersonRepository) Delete(bookID int32, id int32) error {
	if _, err := m.GetByID(bookID, id); err != nil {
		return err
	}
	delete(m.Persons, id)
	return nil
}

// MockBudgetRepository is a mock implementation of domain.BudgetRepository
type MockBudgetRepository struct {
	Budgets map[int32]*domain.Budget
	nextID  int32
}

// NewMockBudgetRepository creates a new MockBudgetRepository
func NewMockBudgetRepository() *MockBudgetRepository {
	return &MockBudgetRepository{Budgets: make(map[int32]*domain.Budget)}
}

// Create inserts a budget
func (m *MockBudgetRepository) Create(budget *domain.Budget) (*domain.Budget, error) {
	m.nextID++
	budget.ID = m.nextID
	m.Budgets[budget.ID] = budget
	return budget, nil
}

// GetByID retrieves a budget within a book
func (m *MockBudgetRepository) GetByID(bookID int32, id int32) (*domain.Budget, error) {
	if budget, ok := m.Budgets[id]; ok && budget.BookID == bookID {
		return budget, nil
	}
	return nil, domain.ErrBudgetNotFound
}

// GetAllByBook lists budgets for a book
func (m *MockBudgetRepository) GetAllByBook(bookID int32) ([]*domain.Budget, error) {
	var result []*domain.Budget
	for _, budget := range m.Budgets {
		if budget.BookID == bookID {
			result = append(result, budget)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Update rewrites a budget
func (m *MockBudgetRepository) Update(bookID int32, id int32, budget *domain.Budget) (*domain.Budget, error) {
	if _, err := m.GetByID(bookID, id); err != nil {
		return nil, err
	}
	budget.ID = id
	budget.BookID = bookID
	m.Budgets[id] = budget
	return budget, nil
}

// Delete removes a budget
func (m *MockBudgetRepository) Delete(bookID int32, id int32) error {
	if _, err := m.GetByID(bookID, id); err != nil {
		return err
	}
	delete(m.Budgets, id)
	return nil
}

// MockReportRepository is a mock implementation of domain.ReportRepository
// returning canned aggregates. It records the last range and timezone it was
// queried with.
type MockReportRepository struct {
	CategoryTotals []*domain.CategoryTotal
	AccountTotals  []*domain.AccountTotal
	BucketTotals   []*domain.DateBucketTotal
	Err            error

	LastRange    domain.DateRange
	LastTimezone string
}

// NewMockReportRepository creates a new MockReportRepository
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{}
}

// SumByCategory returns the canned category totals
func (m *MockReportRepository) SumByCategory(bookID int32, r domain.DateRange, txType domain.TransactionType) ([]*domain.CategoryTotal, error) {
	m.LastRange = r
	return m.CategoryTotals, m.Err
}

// SumByAccount returns the canned account totals
func (m *MockReportRepository) SumByAccount(bookID int32, r domain.DateRange) ([]*domain.AccountTotal, error) {
	m.LastRange = r
	return m.AccountTotals, m.Err
}

// SumByDateBucket returns the canned bucket totals
func (m *MockReportRepository) SumByDateBucket(bookID int32, r domain.DateRange, bucket, timezone string) ([]*domain.DateBucketTotal, error) {
	m.LastRange = r
	m.LastTimezone = timezone
	return m.BucketTotals, m.Err
}

// MockAPITokenRepository is a mock implementation of domain.APITokenRepository
type MockAPITokenRepository struct {
	Tokens map[uuid.UUID]*domain.APIToken
}

// NewMockAPITokenRepository creates a new MockAPITokenRepository
func NewMockAPITokenRepository() *MockAPITokenRepository {
	return &MockAPITokenRepository{Tokens: make(map[uuid.UUID]*domain.APIToken)}
}

// Create inserts a token
func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	token.CreatedAt = time.Now()
	m.Tokens[token.ID] = token
	return nil
}

// GetByUser lists a user's active tokens
func (m *MockAPITokenRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIToken, error) {
	var result []*domain.APIToken
	for _, token := range m.Tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			result = append(result, token)
		}
	}
	return result, nil
}

// GetByID retrieves a token by ID for a user
func (m *MockAPITokenRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.APIToken, error) {
	if token, ok := m.Tokens[id]; ok && token.UserID == userID {
		return token, nil
	}
	return nil, domain.ErrAPITokenNotFound
}

// GetByHash retrieves an active token by hash
func (m *MockAPITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	for _, token := range m.Tokens {
		if token.TokenHash == hash && token.RevokedAt == nil {
			return token, nil
		}
	}
	return nil, domain.ErrAPITokenNotFound
}

// Revoke marks a token revoked
func (m *MockAPITokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	token, ok := m.Tokens[id]
	if !ok || token.UserID != userID || token.RevokedAt != nil {
		return domain.ErrAPITokenNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

// UpdateLastUsed records usage
func (m *MockAPITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	if token, ok := m.Tokens[id]; ok {
		now := time.Now()
		token.LastUsedAt = &now
	}
	return nil
}

// MockReceiptStorage is an in-memory implementation of storage.ReceiptRepository
type MockReceiptStorage struct {
	Objects map[string][]byte
}

// NewMockReceiptStorage creates a new MockReceiptStorage
func NewMockReceiptStorage() *MockReceiptStorage {
	return &MockReceiptStorage{Objects: make(map[string][]byte)}
}

// Upload stores the object bytes
func (m *MockReceiptStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf
	return objectPath, nil
}

// Delete removes an object
func (m *MockReceiptStorage) Delete(ctx context.Context, objectPath string) error {
	delete(m.Objects, objectPath)
	return nil
}

// GeneratePresignedURL returns a deterministic fake URL
func (m *MockReceiptStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	return "https://storage.test/" + objectPath, nil
}
