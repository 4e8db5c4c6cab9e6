package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/monyorojoseph/money-lock/internal/models"
)

// OpenDispute открывает спор по соглашению и в той же транзакции
// переводит соглашение в состояние disputed. Соглашение должно
// существовать и находиться в состоянии active, иначе возвращается
// ErrNotFound или ErrInvalidState соответственно.
func (s *Storage) OpenDispute(ctx context.Context, d models.Dispute) (string, error) {
	const op = "storage.OpenDispute"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	err := s.WithTx(ctx, func(t *Tx) error {
		var status models.AgreementStatus
		err := t.tx.QueryRowContext(ctx,
			`SELECT status FROM payment_agreements WHERE uid = $1 FOR UPDATE`,
			d.AgreementUID).Scan(&status)
		if err != nil {
			return wrapRowError(op, err)
		}
		if status != models.StatusActive {
			return fmt.Errorf("%s: %w", op, ErrInvalidState)
		}

		query := `INSERT INTO disputes (agreement_uid, raised_by_uid, status, data)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid`
		if err := t.tx.QueryRowContext(ctx, query,
			d.AgreementUID, d.RaisedByUID, d.Status, d.Data).Scan(&newUID); err != nil {
			return wrapRowError(op, err)
		}

		if _, err := t.tx.ExecContext(ctx,
			`UPDATE payment_agreements SET status = $1, updated_at = now() WHERE uid = $2`,
			models.StatusDisputed, d.AgreementUID); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return newUID, nil
}

// ReadDispute возвращает спор по его UID.
func (s *Storage) ReadDispute(ctx context.Context, uid string) (*models.Dispute, error) {
	const op = "storage.ReadDispute"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, agreement_uid, raised_by_uid, status, data, created_at, updated_at
			  FROM disputes WHERE uid = $1`
	var d models.Dispute
	var raisedBy sql.NullString
	row := s.DB.QueryRowContext(ctx, query, uid)
	if err := row.Scan(&d.UUID, &d.AgreementUID, &raisedBy, &d.Status, &d.Data,
		&d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, wrapRowError(op, err)
	}
	if raisedBy.Valid {
		d.RaisedByUID = &raisedBy.String
	}
	return &d, nil
}

// ResolveDispute переводит спор open→resolved и возвращает количество
// изменённых строк; 0 означает, что спор не найден или уже разрешён.
func (s *Storage) ResolveDispute(ctx context.Context, uid string) (int, error) {
	const op = "storage.ResolveDispute"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE disputes
			  SET status = $1, updated_at = now()
			  WHERE uid = $2 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query, models.DisputeResolved, uid, models.DisputeOpen)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListDisputes возвращает споры по соглашению, от новых к старым.
func (s *Storage) ListDisputes(ctx context.Context, agreementUID string) ([]*models.Dispute, error) {
	const op = "storage.ListDisputes"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, agreement_uid, raised_by_uid, status, data, created_at, updated_at
			  FROM disputes
			  WHERE agreement_uid = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, agreementUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Dispute
	for rows.Next() {
		var d models.Dispute
		var raisedBy sql.NullString
		if err := rows.Scan(&d.UUID, &d.AgreementUID, &raisedBy, &d.Status, &d.Data,
			&d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if raisedBy.Valid {
			d.RaisedByUID = &raisedBy.String
		}
		result = append(result, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
