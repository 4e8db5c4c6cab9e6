package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/monyorojoseph/money-lock/internal/models"
)

const agreementColumns = `uid, buyer_uid, buyer_email, seller_uid, name, amount,
			      amount_breakdown, currency, description, document, days_to_deliver,
			      transaction_type, status, extra_data, created_at, updated_at`

// CreateAgreement вставляет новое платёжное соглашение и возвращает его UID.
// Хук afterCommit (если задан) выполняется только после фиксации транзакции.
func (s *Storage) CreateAgreement(ctx context.Context, a models.PaymentAgreement, afterCommit func()) (string, error) {
	const op = "storage.CreateAgreement"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	err := s.WithTx(ctx, func(t *Tx) error {
		query := `INSERT INTO payment_agreements (buyer_uid, buyer_email, seller_uid, name,
				      amount, amount_breakdown, currency, description, document,
				      days_to_deliver, transaction_type, status, extra_data)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  RETURNING uid`
		if err := t.tx.QueryRowContext(ctx, query,
			a.BuyerUID, a.BuyerEmail, a.SellerUID, a.Name,
			a.Amount, a.AmountBreakdown, a.Currency, a.Description, a.Document,
			a.DaysToDeliver, a.TransactionType, a.Status, a.ExtraData).Scan(&newUID); err != nil {
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

// ReadAgreement возвращает соглашение по его UID.
func (s *Storage) ReadAgreement(ctx context.Context, uid string) (*models.PaymentAgreement, error) {
	const op = "storage.ReadAgreement"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + agreementColumns + `
			  FROM payment_agreements WHERE uid = $1`
	return scanAgreement(s.DB.QueryRowContext(ctx, query, uid), op)
}

func scanAgreement(row *sql.Row, op string) (*models.PaymentAgreement, error) {
	var a models.PaymentAgreement
	var buyerUID, description, document sql.NullString
	if err := row.Scan(&a.UUID, &buyerUID, &a.BuyerEmail, &a.SellerUID, &a.Name, &a.Amount,
		&a.AmountBreakdown, &a.Currency, &description, &document, &a.DaysToDeliver,
		&a.TransactionType, &a.Status, &a.ExtraData, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, wrapRowError(op, err)
	}
	if buyerUID.Valid {
		a.BuyerUID = &buyerUID.String
	}
	if description.Valid {
		a.Description = &description.String
	}
	if document.Valid {
		a.Document = &document.String
	}
	return &a, nil
}

// ListAgreements возвращает соглашения, где пользователь выступает
// покупателем или продавцом, от новых к старым, с пагинацией.
func (s *Storage) ListAgreements(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentAgreement, error) {
	const op = "storage.ListAgreements"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + agreementColumns + `
			  FROM payment_agreements
			  WHERE buyer_uid = $1 OR seller_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectAgreements(rows, op)
}

// ListAllAgreements возвращает все соглашения от новых к старым, с пагинацией.
func (s *Storage) ListAllAgreements(ctx context.Context, limit, offset int) ([]*models.PaymentAgreement, error) {
	const op = "storage.ListAllAgreements"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + agreementColumns + `
			  FROM payment_agreements
			  ORDER BY created_at DESC
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return collectAgreements(rows, op)
}

func collectAgreements(rows *sql.Rows, op string) ([]*models.PaymentAgreement, error) {
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.PaymentAgreement
	for rows.Next() {
		var a models.PaymentAgreement
		var buyerUID, description, document sql.NullString
		if err := rows.Scan(&a.UUID, &buyerUID, &a.BuyerEmail, &a.SellerUID, &a.Name, &a.Amount,
			&a.AmountBreakdown, &a.Currency, &description, &document, &a.DaysToDeliver,
			&a.TransactionType, &a.Status, &a.ExtraData, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if buyerUID.Valid {
			a.BuyerUID = &buyerUID.String
		}
		if description.Valid {
			a.Description = &description.String
		}
		if document.Valid {
			a.Document = &document.String
		}
		result = append(result, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateAgreementStatus переводит соглашение из состояния from в to и
// возвращает количество изменённых строк. Условие на from защищает от
// гонки параллельных переходов: проигравший получает 0 строк.
func (s *Storage) UpdateAgreementStatus(ctx context.Context, uid string, from, to models.AgreementStatus) (int, error) {
	const op = "storage.UpdateAgreementStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payment_agreements
			  SET status = $1, updated_at = now()
			  WHERE uid = $2 AND status = $3`
	result, err := s.DB.ExecContext(ctx, query, to, uid, from)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
