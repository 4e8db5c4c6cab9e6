package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/monyorojoseph/money-lock/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его UID.
// Хук afterCommit (если задан) выполняется только после фиксации
// транзакции. Дубликат почты приводит к ErrUniqueViolation.
func (s *Storage) RegisterUser(ctx context.Context, user models.User, afterCommit func()) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	err := s.WithTx(ctx, func(t *Tx) error {
		query := `INSERT INTO users (name, email, phone_number, password_hash,
				      email_verified, is_active, is_admin)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING uid;`
		if err := t.tx.QueryRowContext(ctx, query,
			user.Name, user.Email, user.PhoneNumber, user.PasswordHash,
			user.EmailVerified, user.IsActive, user.IsAdmin).Scan(&newUID); err != nil {
			return wrapRowError(op, err)
		}
		if afterCommit != nil {
			t.AfterCommit(afterCommit)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return newUID, nil
}

// GetUser возвращает пользователя по его UID.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, phone_number, password_hash,
			      email_verified, is_active, is_admin, created_at, last_active
			  FROM users
			  WHERE uid = $1`
	return scanUser(s.DB.QueryRowContext(ctx, query, userUID), op)
}

// GetUserByEmail возвращает пользователя по его почте.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, name, email, phone_number, password_hash,
			      email_verified, is_active, is_admin, created_at, last_active
			  FROM users
			  WHERE email = $1`
	return scanUser(s.DB.QueryRowContext(ctx, query, email), op)
}

func scanUser(row *sql.Row, op string) (*models.User, error) {
	u := &models.User{}
	var phone sql.NullString
	if err := row.Scan(&u.UUID, &u.Name, &u.Email, &phone, &u.PasswordHash,
		&u.EmailVerified, &u.IsActive, &u.IsAdmin, &u.CreatedAt, &u.LastActive); err != nil {
		return nil, wrapRowError(op, err)
	}
	if phone.Valid {
		u.PhoneNumber = &phone.String
	}
	return u, nil
}

// TouchLastActive обновляет отметку последней активности пользователя.
func (s *Storage) TouchLastActive(ctx context.Context, userUID string) error {
	const op = "storage.TouchLastActive"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET last_active = now() WHERE uid = $1`
	_, err := s.DB.ExecContext(ctx, query, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteUser удаляет пользователя. Соглашения, где он продавец,
// удаляются каскадно; где покупатель — ссылка обнуляется.
func (s *Storage) DeleteUser(ctx context.Context, userUID string) error {
	const op = "storage.DeleteUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM users WHERE uid = $1`, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
