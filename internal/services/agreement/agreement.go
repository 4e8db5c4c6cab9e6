// Package agreement реализует бизнес-логику платёжных соглашений:
// создание, чтение, листинг и переходы статуса.
package agreement

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/notifier"
	"github.com/monyorojoseph/money-lock/internal/storage/repository"
)

const (
	// DefaultCurrency подставляется, если клиент не указал валюту.
	DefaultCurrency = "KE"

	cacheTTL = 10 * time.Minute
)

var (
	ErrNotFound          = errors.New("agreement not found")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrIllegalTransition = errors.New("illegal status transition")
)

var emptyObject = []byte("{}")

// AgreementRepository описывает операции хранилища, нужные сервису.
type AgreementRepository interface {
	CreateAgreement(ctx context.Context, a models.PaymentAgreement, afterCommit func()) (string, error)
	ReadAgreement(ctx context.Context, uid string) (*models.PaymentAgreement, error)
	ListAgreements(ctx context.Context, userUID string, limit, offset int) ([]*models.PaymentAgreement, error)
	ListAllAgreements(ctx context.Context, limit, offset int) ([]*models.PaymentAgreement, error)
	UpdateAgreementStatus(ctx context.Context, uid string, from, to models.AgreementStatus) (int, error)
}

// AgreementCache кеш горячих соглашений по uid.
type AgreementCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service реализует сценарии работы с соглашениями.
type Service struct {
	repo     AgreementRepository
	cache    AgreementCache
	notifier notifier.Notifier
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo AgreementRepository, cache AgreementCache,
	n notifier.Notifier, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, notifier: n, log: log}
}

func cacheKey(uid string) string {
	return fmt.Sprintf("agreement:%s", uid)
}

// Create сохраняет новое соглашение от имени продавца sellerUID и
// возвращает его UID. Уведомление покупателю публикуется после фиксации
// транзакции; его сбой логируется и не откатывает создание.
func (s *Service) Create(ctx context.Context, sellerUID string, req models.DummyAgreement) (string, error) {
	const op = "services.agreement.Create"

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}
	if amount.IsNegative() {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidAmount)
	}

	a := models.PaymentAgreement{
		BuyerEmail:      req.BuyerEmail,
		SellerUID:       sellerUID,
		Name:            req.Name,
		Amount:          amount,
		AmountBreakdown: req.AmountBreakdown,
		Currency:        req.Currency,
		DaysToDeliver:   req.DaysToDeliver,
		TransactionType: models.TransactionType(req.TransactionType),
		Status:          models.StatusPending,
		ExtraData:       req.ExtraData,
	}
	if req.BuyerUID != "" {
		a.BuyerUID = &req.BuyerUID
	}
	if req.Description != "" {
		a.Description = &req.Description
	}
	if req.Document != "" {
		a.Document = &req.Document
	}
	if a.Currency == "" {
		a.Currency = DefaultCurrency
	}
	if len(a.AmountBreakdown) == 0 {
		a.AmountBreakdown = emptyObject
	}
	if len(a.ExtraData) == 0 {
		a.ExtraData = emptyObject
	}

	uid, err := s.repo.CreateAgreement(ctx, a, func() {
		s.notifyBuyer(ctx, a)
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if created, err := s.repo.ReadAgreement(ctx, uid); err == nil {
		if err := s.cache.Set(cacheKey(uid), created, cacheTTL); err != nil {
			s.log.Warn("failed to cache agreement", slog.String("uid", uid), sl.Err(err))
		}
	}
	return uid, nil
}

// notifyBuyer публикует письмо покупателю о новом соглашении.
// Вызывается только после фиксации транзакции; сбой логируется.
func (s *Service) notifyBuyer(ctx context.Context, a models.PaymentAgreement) {
	body := fmt.Sprintf(
		"<p>Hello,</p><p>A new payment agreement <b>%s</b> for %s %s has been created for you. "+
			"Log in to review and activate it.</p>",
		html.EscapeString(a.Name), html.EscapeString(a.Currency), a.Amount.StringFixed(2))
	msg := notifier.Message{
		Kind: notifier.KindAgreementCreated,
		Content: notifier.Content{
			Subject: "New Payment Agreement",
			HTML:    body,
		},
		Recipients: []notifier.Recipient{{Address: a.BuyerEmail}},
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.log.Error("failed to send agreement notification",
			slog.String("buyer_email", a.BuyerEmail), sl.Err(err))
	}
}

// Read возвращает соглашение по UID, сначала заглядывая в кеш.
func (s *Service) Read(ctx context.Context, uid string) (*models.PaymentAgreement, error) {
	const op = "services.agreement.Read"

	var cached models.PaymentAgreement
	found, err := s.cache.Get(cacheKey(uid), &cached)
	if err != nil {
		s.log.Warn("cache lookup failed", slog.String("uid", uid), sl.Err(err))
	}
	if found {
		return &cached, nil
	}

	a, err := s.repo.ReadAgreement(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Set(cacheKey(uid), a, cacheTTL); err != nil {
		s.log.Warn("failed to cache agreement", slog.String("uid", uid), sl.Err(err))
	}
	return a, nil
}

// List возвращает соглашения от новых к старым: администратору все,
// обычному пользователю только те, где он покупатель или продавец.
func (s *Service) List(ctx context.Context, userUID string, isAdmin bool, limit, offset int) ([]*models.PaymentAgreement, error) {
	const op = "services.agreement.List"

	var (
		result []*models.PaymentAgreement
		err    error
	)
	if isAdmin {
		result, err = s.repo.ListAllAgreements(ctx, limit, offset)
	} else {
		result, err = s.repo.ListAgreements(ctx, userUID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateStatus переводит соглашение в состояние next. Допустимы только
// переходы pending→{active,canceled} и active→{completed,canceled};
// в disputed соглашение попадает исключительно через открытие спора.
func (s *Service) UpdateStatus(ctx context.Context, uid string, next models.AgreementStatus) error {
	const op = "services.agreement.UpdateStatus"

	current, err := s.repo.ReadAgreement(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if next == models.StatusDisputed || !current.Status.CanTransition(next) {
		return fmt.Errorf("%s: %w", op, ErrIllegalTransition)
	}

	rows, err := s.repo.UpdateAgreementStatus(ctx, uid, current.Status, next)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rows == 0 {
		// конкурентный переход успел раньше
		return fmt.Errorf("%s: %w", op, ErrIllegalTransition)
	}

	if err := s.cache.Invalidate(cacheKey(uid)); err != nil {
		s.log.Warn("failed to invalidate agreement cache", slog.String("uid", uid), sl.Err(err))
	}
	return nil
}
