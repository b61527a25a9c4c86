package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CurrencyRepository implements domain.CurrencyRepository using PostgreSQL
type CurrencyRepository struct {
	pool *pgxpool.Pool
}

// NewCurrencyRepository creates a new CurrencyRepository
func NewCurrencyRepository(pool *pgxpool.Pool) *CurrencyRepository {
	return &CurrencyRepository{pool: pool}
}

const currencyColumns = "id, user_id, code, name, symbol, rate::text, is_system_default, created_at, updated_at"

func scanCurrency(row pgx.Row) (*domain.Currency, error) {
	var c domain.Currency
	var rate string
	err := row.Scan(&c.ID, &c.UserID, &c.Code, &c.Name, &c.Symbol, &rate, &c.IsSystemDefault, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCurrencyNotFound
		}
		return nil, err
	}
	c.Rate, err = decimal.NewFromString(rate)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns the user's currencies in insertion order
func (r *CurrencyRepository) ListByUser(userID uuid.UUID) ([]*domain.Currency, error) {
	rows, err := r.pool.Query(context.Background(),
		"SELECT "+currencyColumns+" FROM currencies WHERE user_id = $1 ORDER BY id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Currency
	for rows.Next() {
		c, err := scanCurrency(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// GetByCode retrieves one currency by its code within the user scope
func (r *CurrencyRepository) GetByCode(userID uuid.UUID, code string) (*domain.Currency, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+currencyColumns+" FROM currencies WHERE user_id = $1 AND code = $2",
		userID, code)
	return scanCurrency(row)
}

// Create inserts a currency; a duplicate code maps to ErrDuplicateCurrency
func (r *CurrencyRepository) Create(currency *domain.Currency) (*domain.Currency, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO currencies (user_id, code, name, symbol, rate, is_system_default)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, code, name, symbol, rate::text, is_system_default, created_at, updated_at`,
		currency.UserID, currency.Code, currency.Name, currency.Symbol,
		currency.Rate.String(), currency.IsSystemDefault)
	created, err := scanCurrency(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateCurrency
		}
		return nil, err
	}
	return created, nil
}

// Update changes the mutable fields; code is the immutable key
func (r *CurrencyRepository) Update(userID uuid.UUID, code string, name, symbol string, rate decimal.Decimal) (*domain.Currency, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE currencies
		SET name = $3, symbol = $4, rate = $5, updated_at = now()
		WHERE user_id = $1 AND code = $2
		RETURNING id, user_id, code, name, symbol, rate::text, is_system_default, created_at, updated_at`,
		userID, code, name, symbol, rate.String())
	return scanCurrency(row)
}

// Delete removes a currency from the user scope
func (r *CurrencyRepository) Delete(userID uuid.UUID, code string) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM currencies WHERE user_id = $1 AND code = $2", userID, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCurrencyNotFound
	}
	return nil
}

// SeedDefaults inserts the system default set into the user scope
func (r *CurrencyRepository) SeedDefaults(userID uuid.UUID, defaults []domain.Currency) ([]*domain.Currency, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	for _, c := range defaults {
		_, err := tx.Exec(ctx, `
			INSERT INTO currencies (user_id, code, name, symbol, rate, is_system_default)
			VALUES ($1, $2, $3, $4, $5, true)
			ON CONFLICT (user_id, code) DO NOTHING`,
			userID, c.Code, c.Name, c.Symbol, c.Rate.String())
		if err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.ListByUser(userID)
}

// MigrateLegacyGlobal copies legacy global currency rows (user_id IS NULL)
// into the user's scope. Runs once per user: callers only invoke it when the
// user scope is empty.
func (r *CurrencyRepository) MigrateLegacyGlobal(userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(context.Background(), `
		INSERT INTO currencies (user_id, code, name, symbol, rate, is_system_default)
		SELECT $1, code, name, symbol, rate, is_system_default
		FROM currencies
		WHERE user_id IS NULL
		ON CONFLICT (user_id, code) DO NOTHING`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// IsReferenced reports whether any of the user's books or their accounts use the code
func (r *CurrencyRepository) IsReferenced(userID uuid.UUID, code string) (bool, error) {
	var referenced bool
	err := r.pool.QueryRow(context.Background(), `
		SELECT EXISTS (
			SELECT 1 FROM books
			WHERE owner_id = $1 AND (default_currency = $2 OR $2 = ANY(currency_codes))
		) OR EXISTS (
			SELECT 1 FROM accounts a
			JOIN books b ON b.id = a.book_id
			WHERE b.owner_id = $1 AND a.currency = $2
		)`, userID, code).Scan(&referenced)
	return referenced, err
}
