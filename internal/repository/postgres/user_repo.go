package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = "id, auth0_id, email, name, picture_url, created_at, updated_at"

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Auth0ID, &u.Email, &u.Name, &u.PictureURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
	return scanUser(row)
}

// GetByAuth0ID retrieves a user by Auth0 subject
func (r *UserRepository) GetByAuth0ID(auth0ID string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+userColumns+" FROM users WHERE auth0_id = $1", auth0ID)
	return scanUser(row)
}

// GetByEmail retrieves a user by email (used for member invites)
func (r *UserRepository) GetByEmail(email string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(),
		"SELECT "+userColumns+" FROM users WHERE email = $1", email)
	return scanUser(row)
}

// CreateOrGetByAuth0ID upserts a user from validated token claims
func (r *UserRepository) CreateOrGetByAuth0ID(auth0ID, email string, name, pictureURL *string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO users (id, auth0_id, email, name, picture_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (auth0_id) DO UPDATE
		SET email = EXCLUDED.email,
		    picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
		    updated_at = now()
		RETURNING `+userColumns,
		uuid.New(), auth0ID, email, name, pictureURL)
	return scanUser(row)
}

// UpdateName updates only the user's display name
func (r *UserRepository) UpdateName(auth0ID string, name string) (*domain.User, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE users SET name = $2, updated_at = now()
		WHERE auth0_id = $1
		RETURNING `+userColumns, auth0ID, name)
	return scanUser(row)
}
