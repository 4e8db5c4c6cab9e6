// Package user содержит бизнес-логику учётных записей: регистрацию,
// вход, выпуск токена подтверждения почты и его погашение.
package user

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"time"

	"github.com/monyorojoseph/money-lock/internal/lib/jwt"
	"github.com/monyorojoseph/money-lock/internal/lib/password"
	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	tokenlib "github.com/monyorojoseph/money-lock/internal/lib/token"
	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/notifier"
	"github.com/monyorojoseph/money-lock/internal/storage/repository"
)

// Срок действия токена подтверждения почты.
const verificationTTL = 24 * time.Hour

// Число полных циклов выпуска токена при гонке вставки: уникальный
// индекс может отклонить значение, прошедшее предварительную проверку.
const mintRetries = 3

// Ошибки уровня бизнес-логики.
var (
	// ErrEmailRequired пустая почта при регистрации.
	ErrEmailRequired = errors.New("email is required")
	// ErrEmailTaken почта уже занята другим пользователем.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidCredentials неверная пара почта/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken токен не найден, чужой, погашен или просрочен.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrNotFound пользователь не найден.
	ErrNotFound = errors.New("user not found")
)

// UserRepository определяет методы хранилища, нужные сервису.
type UserRepository interface {
	// RegisterUser сохраняет пользователя; afterCommit выполняется после фиксации.
	RegisterUser(ctx context.Context, user models.User, afterCommit func()) (string, error)
	// GetUser возвращает пользователя по UID.
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по почте.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// TouchLastActive обновляет отметку активности.
	TouchLastActive(ctx context.Context, userUID string) error
	// CreateVerificationToken сохраняет выпущенный токен.
	CreateVerificationToken(ctx context.Context, tok models.VerificationToken) (int64, error)
	// VerificationTokenExists проверяет занятость значения кода.
	VerificationTokenExists(ctx context.Context, value string) (bool, error)
	// GetVerificationToken возвращает токен по значению.
	GetVerificationToken(ctx context.Context, value string) (*models.VerificationToken, error)
	// ConsumeVerificationToken гасит токен и подтверждает почту атомарно.
	ConsumeVerificationToken(ctx context.Context, tokenID int64, userUID string) error
}

// Service реализует бизнес-логику учётных записей.
type Service struct {
	repo     UserRepository
	notifier notifier.Notifier
	jwtMaker jwt.Maker
	baseURL  string
	log      *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo UserRepository, n notifier.Notifier, jwtMaker jwt.Maker, baseURL string, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: n,
		jwtMaker: jwtMaker,
		baseURL:  baseURL,
		log:      log,
	}
}

// Register создает пользователя и возвращает его UID. Почта обязательна
// и глобально уникальна; пароль сохраняется только в виде bcrypt-хэша.
// После фиксации записи уходит приветственное письмо (best-effort).
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	if req.Email == "" {
		return "", ErrEmailRequired
	}

	passwordHash, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		IsActive:     true,
		IsAdmin:      false,
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = &req.PhoneNumber
	}

	uid, err := s.repo.RegisterUser(ctx, user, func() {
		s.sendOnboarding(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return "", ErrEmailTaken
		}
		return "", err
	}

	s.log.Info("registered new user", slog.String("uid", uid))
	return uid, nil
}

// Login проверяет учётные данные и возвращает JWT.
func (s *Service) Login(ctx context.Context, email, pass string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.IsActive {
		return "", ErrInvalidCredentials
	}
	if err := password.CompareHash(user.PasswordHash, pass); err != nil {
		return "", ErrInvalidCredentials
	}

	jwtToken, err := s.jwtMaker.GenerateToken(user.UUID, user.IsAdmin)
	if err != nil {
		return "", err
	}

	if err := s.repo.TouchLastActive(ctx, user.UUID); err != nil {
		s.log.Warn("failed to touch last_active", slog.String("uid", user.UUID), sl.Err(err))
	}
	return jwtToken, nil
}

// SendVerification выпускает токен подтверждения и отправляет письмо со
// ссылкой. Отправка best-effort: любая ошибка выпуска, сохранения или
// публикации логируется и проглатывается — вызывающая сторона не
// узнаёт о сбое. Ошибкой остаётся только отсутствие пользователя.
func (s *Service) SendVerification(ctx context.Context, userUID string) error {
	const op = "user.SendVerification"

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.sendVerificationEmail(ctx, user); err != nil {
		s.log.Error("failed to send verification email", slog.String("op", op),
			slog.String("uid", user.UUID), sl.Err(err))
	}
	return nil
}

func (s *Service) sendVerificationEmail(ctx context.Context, user *models.User) error {
	value, err := s.mintToken(ctx, user.UUID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(`<html>
    <h1>Hello %s.</h1>
    <h6>Click here to verify your email:
        <a href="%s/verification/verify_email/%s/%s/">Verify Email</a>
        The link is valid for 24 hours.
    </h6>
</html>`, html.EscapeString(user.Name), s.baseURL, user.UUID, value)

	msg := notifier.Message{
		Kind:    notifier.KindVerification,
		Content: notifier.Content{Subject: "Email Verification", HTML: body},
		Recipients: []notifier.Recipient{
			{Address: user.Email, DisplayName: user.Name},
		},
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		return err
	}

	s.log.Info("email verification link sent", slog.String("email", user.Email))
	return nil
}

// mintToken подбирает свободный код и сохраняет токен. Вставка может
// проиграть гонку уникальному индексу, тогда цикл повторяется.
func (s *Service) mintToken(ctx context.Context, userUID string) (string, error) {
	exists := func(v string) (bool, error) {
		return s.repo.VerificationTokenExists(ctx, v)
	}

	var lastErr error
	for range mintRetries {
		value, err := tokenlib.Generate(exists)
		if err != nil {
			return "", err
		}
		expiresOn := time.Now().Add(verificationTTL)
		_, err = s.repo.CreateVerificationToken(ctx, models.VerificationToken{
			UserUID:   userUID,
			Token:     value,
			ExpiresOn: &expiresOn,
			Active:    true,
		})
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, repository.ErrUniqueViolation) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// VerifyEmail гасит токен и отмечает почту подтверждённой. Токен должен
// принадлежать пользователю и быть активным на момент проверки.
func (s *Service) VerifyEmail(ctx context.Context, userUID, tokenValue string) error {
	tok, err := s.repo.GetVerificationToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if tok.UserUID != userUID || !tok.IsActive(time.Now()) {
		return ErrInvalidToken
	}

	if err := s.repo.ConsumeVerificationToken(ctx, tok.ID, userUID); err != nil {
		if errors.Is(err, repository.ErrInvalidState) {
			return ErrInvalidToken
		}
		return err
	}

	s.log.Info("email verified", slog.String("uid", userUID))
	return nil
}

// sendOnboarding отправляет приветственное письмо после фиксации
// регистрации. Сбой не влияет на результат регистрации.
func (s *Service) sendOnboarding(ctx context.Context, user models.User) {
	body := fmt.Sprintf(`<html>
    <h1>Welcome to Money-Lock, %s.</h1>
    <h6>Your account is ready. Verify your email to start creating payment agreements.</h6>
</html>`, html.EscapeString(user.Name))

	msg := notifier.Message{
		Kind:    notifier.KindOnboarding,
		Content: notifier.Content{Subject: "Welcome to Money-Lock", HTML: body},
		Recipients: []notifier.Recipient{
			{Address: user.Email, DisplayName: user.Name},
		},
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.log.Error("failed to send onboarding email", slog.String("email", user.Email), sl.Err(err))
	}
}
