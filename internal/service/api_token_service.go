package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"github.com/moneybook/moneybook-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

const (
	// tokenPrefix is the prefix for all API tokens
	tokenPrefix = "mnbk_"
	// tokenRandomBytes is the number of random bytes for the token (32 bytes = 256 bits)
	tokenRandomBytes = 32
	// tokenPrefixLength is the length of the displayable prefix (e.g., "mnbk_abc...xyz")
	tokenPrefixLength = 8
	// maxTokensPerUser is the maximum number of active tokens per user
	maxTokensPerUser = 10
)

// APITokenService handles API token business logic
type APITokenService struct {
	repo domain.APITokenRepository
}

// NewAPITokenService creates a new APITokenService
func NewAPITokenService(repo domain.APITokenRepository) *APITokenService {
	return &APITokenService{repo: repo}
}

// Create creates a new API token and returns the full token (shown only once)
func (s *APITokenService) Create(ctx context.Context, userID uuid.UUID, description string) (*domain.CreateAPITokenResponse, error) {
	existingTokens, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existingTokens) >= maxTokensPerUser {
		return nil, domain.ErrTooManyAPITokens
	}

	// Generate secure random token
	rawToken, err := generateSecureToken()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate secure token")
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	fullToken := tokenPrefix + rawToken

	// Hash the token for storage; only the hash ever touches the database
	hash := HashToken(fullToken)

	// Displayable prefix (first 8 chars after mnbk_)
	displayPrefix := tokenPrefix + rawToken[:tokenPrefixLength] + "..."

	token := &domain.APIToken{
		ID:          uuid.New(),
		UserID:      userID,
		Description: description,
		TokenHash:   hash,
		TokenPrefix: displayPrefix,
	}

	if err := s.repo.Create(ctx, token); err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create API token")
		return nil, err
	}

	log.Info().
		Str("token_id", token.ID.String()).
		Str("user_id", userID.String()).
		Str("description", description).
		Msg("API token created")

	return &domain.CreateAPITokenResponse{
		ID:          token.ID,
		Description: description,
		TokenPrefix: displayPrefix,
		Token:       fullToken,
		CreatedAt:   token.CreatedAt,
		Warning:     "Make sure to copy your API token now. You won't be able to see it again!",
	}, nil
}

// GetByUser retrieves all active API tokens for a user
func (s *APITokenService) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domain.APITokenResponse, error) {
	tokens, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get API tokens")
		return nil, err
	}

	// Convert to response DTOs (without sensitive data)
	result := make([]*domain.APITokenResponse, len(tokens))
	for i, t := range tokens {
		result[i] = &domain.APITokenResponse{
			ID:          t.ID,
			Description: t.Description,
			TokenPrefix: t.TokenPrefix,
			CreatedAt:   t.CreatedAt,
			LastUsedAt:  t.LastUsedAt,
		}
	}
	return result, nil
}

// Revoke revokes an API token
func (s *APITokenService) Revoke(ctx context.Context, userID uuid.UUID, tokenID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, userID, tokenID); err != nil {
		log.Error().Err(err).
			Str("user_id", userID.String()).
			Str("token_id", tokenID.String()).
			Msg("Failed to revoke API token")
		return err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("token_id", tokenID.String()).
		Msg("API token revoked")

	return nil
}

// Validate checks a presented token and returns the matching record.
// Usage is recorded asynchronously on success.
func (s *APITokenService) Validate(ctx context.Context, presented string) (*domain.APIToken, error) {
	token, err := s.repo.GetByHash(ctx, HashToken(presented))
	if err != nil {
		return nil, err
	}

	go func() {
		if err := s.repo.UpdateLastUsed(context.Background(), token.ID); err != nil {
			log.Warn().Err(err).Str("token_id", token.ID.String()).Msg("Failed to record token usage")
		}
	}()

	return token, nil
}

// generateSecureToken generates a cryptographically secure random token string
func generateSecureToken() (string, error) {
	bytes := make([]byte, tokenRandomBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// HashToken computes the SHA-256 hex digest stored for a token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", sum)
}
