package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/moneybook/moneybook-backend/internal/domain"
)

// MemberRepository implements domain.MemberRepository using PostgreSQL
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

const memberSelect = `
	SELECT m.book_id, m.user_id, u.email, u.name, m.permission, m.joined_at
	FROM book_members m
	JOIN users u ON u.id = m.user_id`

func scanMember(row pgx.Row) (*domain.Member, error) {
	var m domain.Member
	err := row.Scan(&m.BookID, &m.UserID, &m.Email, &m.Name, &m.Permission, &m.JoinedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Get retrieves a single membership row
func (r *MemberRepository) Get(bookID int32, userID uuid.UUID) (*domain.Member, error) {
	row := r.pool.QueryRow(context.Background(),
		memberSelect+" WHERE m.book_id = $1 AND m.user_id = $2", bookID, userID)
	return scanMember(row)
}

// ListByBook retrieves all members of a book, creator first
func (r *MemberRepository) ListByBook(bookID int32) ([]*domain.Member, error) {
	rows, err := r.pool.Query(context.Background(),
		memberSelect+` WHERE m.book_id = $1
		ORDER BY CASE m.permission WHEN 'creator' THEN 0 ELSE 1 END, m.joined_at`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// Add inserts a membership row
func (r *MemberRepository) Add(member *domain.Member) (*domain.Member, error) {
	_, err := r.pool.Exec(context.Background(), `
		INSERT INTO book_members (book_id, user_id, permission)
		VALUES ($1, $2, $3)`,
		member.BookID, member.UserID, member.Permission)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyMember
		}
		return nil, err
	}
	return r.Get(member.BookID, member.UserID)
}

// UpdatePermission changes a member's role
func (r *MemberRepository) UpdatePermission(bookID int32, userID uuid.UUID, permission domain.Permission) (*domain.Member, error) {
	tag, err := r.pool.Exec(context.Background(), `
		UPDATE book_members SET permission = $3
		WHERE book_id = $1 AND user_id = $2`,
		bookID, userID, permission)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrMemberNotFound
	}
	return r.Get(bookID, userID)
}

// Remove deletes a membership row
func (r *MemberRepository) Remove(bookID int32, userID uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(),
		"DELETE FROM book_members WHERE book_id = $1 AND user_id = $2", bookID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

// Transfer reassigns the creator role and demotes the former creator to
// manager, in one transaction so the one-creator invariant never breaks.
func (r *MemberRepository) Transfer(bookID int32, oldOwner, newOwner uuid.UUID) error {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE book_members SET permission = $3
		WHERE book_id = $1 AND user_id = $2`,
		bookID, newOwner, domain.PermissionCreator)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrMemberNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE book_members SET permission = $3
		WHERE book_id = $1 AND user_id = $2`,
		bookID, oldOwner, domain.PermissionManager); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		"UPDATE books SET owner_id = $2, updated_at = now() WHERE id = $1",
		bookID, newOwner); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
