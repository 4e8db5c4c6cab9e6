package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/monyorojoseph/money-lock/internal/models"
)

// CreateVerificationToken сохраняет выпущенный токен подтверждения.
// Коллизия значения с уже существующим токеном даёт ErrUniqueViolation:
// предварительная проверка не атомарна, за неё доигрывает уникальный
// индекс, а вызывающая сторона перегенерирует код.
func (s *Storage) CreateVerificationToken(ctx context.Context, tok models.VerificationToken) (int64, error) {
	const op = "storage.CreateVerificationToken"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO user_verification_tokens (user_uid, token, expires_on, active)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		tok.UserUID, tok.Token, tok.ExpiresOn, tok.Active).Scan(&newID)
	if err != nil {
		return 0, wrapRowError(op, err)
	}
	return newID, nil
}

// VerificationTokenExists проверяет, занято ли значение кода.
func (s *Storage) VerificationTokenExists(ctx context.Context, value string) (bool, error) {
	const op = "storage.VerificationTokenExists"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (SELECT 1 FROM user_verification_tokens WHERE token = $1)`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// GetVerificationToken возвращает токен по его значению.
func (s *Storage) GetVerificationToken(ctx context.Context, value string) (*models.VerificationToken, error) {
	const op = "storage.GetVerificationToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, token, created_on, expires_on, active
			  FROM user_verification_tokens
			  WHERE token = $1`
	tok := &models.VerificationToken{}
	var expiresOn sql.NullTime
	row := s.DB.QueryRowContext(ctx, query, value)
	if err := row.Scan(&tok.ID, &tok.UserUID, &tok.Token, &tok.CreatedOn,
		&expiresOn, &tok.Active); err != nil {
		return nil, wrapRowError(op, err)
	}
	if expiresOn.Valid {
		tok.ExpiresOn = &expiresOn.Time
	}
	return tok, nil
}

// ConsumeVerificationToken гасит токен и отмечает почту пользователя
// подтверждённой в одной транзакции. Токен должен быть ещё активен.
func (s *Storage) ConsumeVerificationToken(ctx context.Context, tokenID int64, userUID string) error {
	const op = "storage.ConsumeVerificationToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return s.WithTx(ctx, func(t *Tx) error {
		result, err := t.tx.ExecContext(ctx,
			`UPDATE user_verification_tokens SET active = FALSE
			 WHERE id = $1 AND user_uid = $2 AND active`, tokenID, userUID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%s: %w", op, ErrInvalidState)
		}

		if _, err := t.tx.ExecContext(ctx,
			`UPDATE users SET email_verified = TRUE, last_active = now()
			 WHERE uid = $1`, userUID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}
