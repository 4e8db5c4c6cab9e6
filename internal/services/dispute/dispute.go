// Package dispute реализует бизнес-логику споров по соглашениям.
// Открытие спора единственный способ перевести соглашение в disputed.
package dispute

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/storage/repository"
)

var (
	ErrNotFound        = errors.New("dispute not found")
	ErrAgreementNotFound = errors.New("agreement not found")
	ErrNotDisputable   = errors.New("agreement is not active")
	ErrAlreadyResolved = errors.New("dispute already resolved")
)

var emptyObject = []byte("{}")

// DisputeRepository описывает операции хранилища, нужные сервису.
type DisputeRepository interface {
	OpenDispute(ctx context.Context, d models.Dispute) (string, error)
	ReadDispute(ctx context.Context, uid string) (*models.Dispute, error)
	ResolveDispute(ctx context.Context, uid string) (int, error)
	ListDisputes(ctx context.Context, agreementUID string) ([]*models.Dispute, error)
}

// DisputeCache нужен, чтобы сбрасывать кеш соглашения при смене его статуса.
type DisputeCache interface {
	Invalidate(key string) error
}

// Service реализует сценарии работы со спорами.
type Service struct {
	repo  DisputeRepository
	cache DisputeCache
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo DisputeRepository, cache DisputeCache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Open открывает спор по активному соглашению и возвращает UID спора.
// Соглашение переводится в disputed в той же транзакции хранилища.
func (s *Service) Open(ctx context.Context, raisedByUID string, req models.DummyDispute) (string, error) {
	const op = "services.dispute.Open"

	d := models.Dispute{
		AgreementUID: req.AgreementUID,
		Status:       models.DisputeOpen,
		Data:         req.Data,
	}
	if raisedByUID != "" {
		d.RaisedByUID = &raisedByUID
	}
	if len(d.Data) == 0 {
		d.Data = emptyObject
	}

	uid, err := s.repo.OpenDispute(ctx, d)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return "", fmt.Errorf("%s: %w", op, ErrAgreementNotFound)
		case errors.Is(err, repository.ErrInvalidState):
			return "", fmt.Errorf("%s: %w", op, ErrNotDisputable)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(fmt.Sprintf("agreement:%s", req.AgreementUID)); err != nil {
		s.log.Warn("failed to invalidate agreement cache",
			slog.String("agreement_uid", req.AgreementUID), sl.Err(err))
	}
	return uid, nil
}

// Read возвращает спор по UID.
func (s *Service) Read(ctx context.Context, uid string) (*models.Dispute, error) {
	const op = "services.dispute.Read"

	d, err := s.repo.ReadDispute(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return d, nil
}

// ListByAgreement возвращает споры по соглашению, от новых к старым.
func (s *Service) ListByAgreement(ctx context.Context, agreementUID string) ([]*models.Dispute, error) {
	const op = "services.dispute.ListByAgreement"

	result, err := s.repo.ListDisputes(ctx, agreementUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// Resolve переводит спор open→resolved. Если обновление никого не
// задело, перечитывает спор, чтобы различить отсутствие и повтор.
func (s *Service) Resolve(ctx context.Context, uid string) error {
	const op = "services.dispute.Resolve"

	rows, err := s.repo.ResolveDispute(ctx, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows > 0 {
		return nil
	}

	if _, err := s.repo.ReadDispute(ctx, uid); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, ErrAlreadyResolved)
}
