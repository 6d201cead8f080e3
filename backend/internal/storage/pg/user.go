package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/postboard/postboard/shared/domain"
	internal_errors "github.com/postboard/postboard/shared/errors"
)

// uniqueViolation is the SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// =========================================================================
// Public Methods (satisfy the service.UserStorage interface)
// =========================================================================

// SaveUser inserts a user and returns it with the id and created_at assigned
// by the database.
func (s *Storage) SaveUser(ctx context.Context, email domain.Email, passHash string) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		user, err = s.saveUser(ctx, tx, email, passHash)
		return err
	})
	return user, err
}

// UserByEmail is an exact, case-sensitive lookup.
func (s *Storage) UserByEmail(ctx context.Context, email domain.Email) (domain.User, error) {
	return s.userByEmail(ctx, s.db, email)
}

func (s *Storage) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	return s.userById(ctx, s.db, id)
}

// DeleteUser removes a user; ON DELETE CASCADE removes their posts.
func (s *Storage) DeleteUser(ctx context.Context, id domain.UserId) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.deleteUser(ctx, tx, id)
	})
}

// =========================================================================
// Internal Methods
// =========================================================================

func (s *Storage) saveUser(ctx context.Context, q Querier, email domain.Email, passHash string) (domain.User, error) {
	user := domain.User{Email: email, PassHash: passHash}
	err := q.QueryRowContext(ctx,
		"INSERT INTO users(email, password) VALUES($1, $2) RETURNING id, created_at",
		email, passHash).Scan(&user.Id, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.User{}, internal_errors.Conflict("user with email %s already exists", email)
		}
		return domain.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *Storage) userByEmail(ctx context.Context, q Querier, email domain.Email) (domain.User, error) {
	var user domain.User
	err := q.QueryRowContext(ctx,
		"SELECT id, email, password, created_at FROM users WHERE email = $1", email).
		Scan(&user.Id, &user.Email, &user.PassHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("User not found")
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) userById(ctx context.Context, q Querier, id domain.UserId) (domain.User, error) {
	var user domain.User
	err := q.QueryRowContext(ctx,
		"SELECT id, email, password, created_at FROM users WHERE id = $1", id).
		Scan(&user.Id, &user.Email, &user.PassHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("user with id %d not found", id)
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

func (s *Storage) deleteUser(ctx context.Context, q Querier, id domain.UserId) error {
	result, err := q.ExecContext(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	rowsDeleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for user deletion: %w", err)
	}
	if rowsDeleted == 0 {
		return internal_errors.NotFound("user with id %d not found", id)
	}
	return nil
}
