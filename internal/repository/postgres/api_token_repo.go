package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// APITokenRepository implements domain.APITokenRepository using PostgreSQL
type APITokenRepository struct {
	pool *pgxpool.Pool
}

// NewAPITokenRepository creates a new APITokenRepository
func NewAPITokenRepository(pool *pgxpool.Pool) *APITokenRepository {
	return &APITokenRepository{pool: pool}
}

const apiTokenColumns = "id, user_id, description, token_hash, token_prefix, last_used_at, created_at, revoked_at"

func scanAPIToken(row pgx.Row) (*domain.APIToken, error) {
	var t domain.APIToken
	err := row.Scan(&t.ID, &t.UserID, &t.Description, &t.TokenHash, &t.TokenPrefix,
		&t.LastUsedAt, &t.CreatedAt, &t.RevokedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrAPITokenNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts an API token
func (r *APITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_tokens (id, user_id, description, token_hash, token_prefix)
		VALUES ($1, $2, $3, $4, $5)`,
		token.ID, token.UserID, token.Description, token.TokenHash, token.TokenPrefix)
	return err
}

// GetByUser lists a user's tokens, newest first, revoked excluded
func (r *APITokenRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APIToken, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+apiTokenColumns+" FROM api_tokens WHERE user_id = $1 AND revoked_at IS NULL ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.APIToken
	for rows.Next() {
		t, err := scanAPIToken(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// GetByID retrieves a token by ID for a user
func (r *APITokenRepository) GetByID(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*domain.APIToken, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+apiTokenColumns+" FROM api_tokens WHERE user_id = $1 AND id = $2", userID, id)
	return scanAPIToken(row)
}

// GetByHash retrieves an active token by its hash
func (r *APITokenRepository) GetByHash(ctx context.Context, hash string) (*domain.APIToken, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+apiTokenColumns+" FROM api_tokens WHERE token_hash = $1 AND revoked_at IS NULL", hash)
	return scanAPIToken(row)
}

// Revoke marks a token as revoked
func (r *APITokenRepository) Revoke(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE api_tokens SET revoked_at = now()
		WHERE user_id = $1 AND id = $2 AND revoked_at IS NULL`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAPITokenNotFound
	}
	return nil
}

// UpdateLastUsed records token usage
func (r *APITokenRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE api_tokens SET last_used_at = now() WHERE id = $1", id)
	return err
}
