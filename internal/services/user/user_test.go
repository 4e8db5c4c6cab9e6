package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/notifier"
	"github.com/monyorojoseph/money-lock/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) RegisterUser(ctx context.Context, user models.User, afterCommit func()) (string, error) {
	args := m.Called(ctx, user, afterCommit)
	if args.Error(1) == nil && afterCommit != nil {
		// имитация зафиксированной транзакции
		afterCommit()
	}
	return args.String(0), args.Error(1)
}
func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) TouchLastActive(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}
func (m *RepoMock) CreateVerificationToken(ctx context.Context, tok models.VerificationToken) (int64, error) {
	args := m.Called(ctx, tok)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) VerificationTokenExists(ctx context.Context, value string) (bool, error) {
	args := m.Called(ctx, value)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) GetVerificationToken(ctx context.Context, value string) (*models.VerificationToken, error) {
	args := m.Called(ctx, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VerificationToken), args.Error(1)
}
func (m *RepoMock) ConsumeVerificationToken(ctx context.Context, tokenID int64, userUID string) error {
	return m.Called(ctx, tokenID, userUID).Error(0)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Send(ctx context.Context, msg notifier.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newService(r *RepoMock, n *NotifierMock) *Service {
	return NewService(r, n, nil, "http://localhost:5173", newNoopLogger())
}

func TestService_Register(t *testing.T) {
	req := models.DummyRegister{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "sup3rsecret",
	}

	t.Run("success", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
			return u.Email == req.Email &&
				u.IsActive && !u.IsAdmin && !u.EmailVerified &&
				u.PasswordHash != "" && u.PasswordHash != req.Password
		}), mock.Anything).Return("uid-1", nil).Once()
		n.On("Send", mock.Anything, mock.MatchedBy(func(m notifier.Message) bool {
			return m.Kind == notifier.KindOnboarding &&
				len(m.Recipients) == 1 && m.Recipients[0].Address == req.Email
		})).Return(nil).Once()

		uid, err := newService(r, n).Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", uid)
		r.AssertExpectations(t)
		n.AssertExpectations(t)
	})

	t.Run("empty email fails fast", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		_, err := newService(r, n).Register(context.Background(), models.DummyRegister{Password: "x"})
		require.ErrorIs(t, err, ErrEmailRequired)
		r.AssertNotCalled(t, "RegisterUser")
	})

	t.Run("duplicate email", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("RegisterUser", mock.Anything, mock.Anything, mock.Anything).
			Return("", repository.ErrUniqueViolation).Once()

		_, err := newService(r, n).Register(context.Background(), req)
		require.ErrorIs(t, err, ErrEmailTaken)
		n.AssertNotCalled(t, "Send")
	})

	t.Run("onboarding failure does not fail registration", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("RegisterUser", mock.Anything, mock.Anything, mock.Anything).Return("uid-1", nil).Once()
		n.On("Send", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		uid, err := newService(r, n).Register(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "uid-1", uid)
	})
}

func TestService_SendVerification(t *testing.T) {
	alice := &models.User{
		UUID:  "uid-1",
		Name:  "Alice <script>",
		Email: "alice@example.com",
	}

	t.Run("mints token and publishes email with escaped name", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("GetUser", mock.Anything, "uid-1").Return(alice, nil).Once()
		r.On("VerificationTokenExists", mock.Anything, mock.Anything).Return(false, nil).Once()
		r.On("CreateVerificationToken", mock.Anything, mock.MatchedBy(func(tok models.VerificationToken) bool {
			return tok.UserUID == "uid-1" && len(tok.Token) == 7 &&
				tok.Active && tok.ExpiresOn != nil &&
				time.Until(*tok.ExpiresOn) > 23*time.Hour
		})).Return(int64(1), nil).Once()
		n.On("Send", mock.Anything, mock.MatchedBy(func(m notifier.Message) bool {
			return m.Kind == notifier.KindVerification &&
				m.Content.Subject == "Email Verification" &&
				assert.Contains(t, m.Content.HTML, "Alice &lt;script&gt;") &&
				assert.Contains(t, m.Content.HTML, "/verification/verify_email/uid-1/") &&
				m.Recipients[0] == notifier.Recipient{Address: "alice@example.com", DisplayName: "Alice <script>"}
		})).Return(nil).Once()

		require.NoError(t, newService(r, n).SendVerification(context.Background(), "uid-1"))
		r.AssertExpectations(t)
		n.AssertExpectations(t)
	})

	t.Run("dispatch failure is swallowed", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("GetUser", mock.Anything, "uid-1").Return(alice, nil).Once()
		r.On("VerificationTokenExists", mock.Anything, mock.Anything).Return(false, nil).Once()
		r.On("CreateVerificationToken", mock.Anything, mock.Anything).Return(int64(1), nil).Once()
		n.On("Send", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

		require.NoError(t, newService(r, n).SendVerification(context.Background(), "uid-1"))
	})

	t.Run("persist failure is swallowed", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("GetUser", mock.Anything, "uid-1").Return(alice, nil).Once()
		r.On("VerificationTokenExists", mock.Anything, mock.Anything).Return(false, nil)
		r.On("CreateVerificationToken", mock.Anything, mock.Anything).
			Return(int64(0), errors.New("storage down"))

		require.NoError(t, newService(r, n).SendVerification(context.Background(), "uid-1"))
		n.AssertNotCalled(t, "Send")
	})

	t.Run("insert collision is retried", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("GetUser", mock.Anything, "uid-1").Return(alice, nil).Once()
		r.On("VerificationTokenExists", mock.Anything, mock.Anything).Return(false, nil)
		r.On("CreateVerificationToken", mock.Anything, mock.Anything).
			Return(int64(0), repository.ErrUniqueViolation).Once()
		r.On("CreateVerificationToken", mock.Anything, mock.Anything).
			Return(int64(2), nil).Once()
		n.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		require.NoError(t, newService(r, n).SendVerification(context.Background(), "uid-1"))
		r.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		r := &RepoMock{}
		n := &NotifierMock{}
		r.On("GetUser", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()

		err := newService(r, n).SendVerification(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	in24h := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-time.Hour)

	tests := []struct {
		name       string
		userUID    string
		setupMocks func(r *RepoMock)
		wantErr    error
	}{
		{
			name:    "success consumes token",
			userUID: "uid-1",
			setupMocks: func(r *RepoMock) {
				r.On("GetVerificationToken", mock.Anything, "Abc1234").Return(&models.VerificationToken{
					ID: 7, UserUID: "uid-1", Token: "Abc1234", Active: true, ExpiresOn: &in24h,
				}, nil).Once()
				r.On("ConsumeVerificationToken", mock.Anything, int64(7), "uid-1").Return(nil).Once()
			},
		},
		{
			name:    "expired token",
			userUID: "uid-1",
			setupMocks: func(r *RepoMock) {
				r.On("GetVerificationToken", mock.Anything, "Abc1234").Return(&models.VerificationToken{
					ID: 7, UserUID: "uid-1", Token: "Abc1234", Active: true, ExpiresOn: &past,
				}, nil).Once()
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "token belongs to another user",
			userUID: "uid-2",
			setupMocks: func(r *RepoMock) {
				r.On("GetVerificationToken", mock.Anything, "Abc1234").Return(&models.VerificationToken{
					ID: 7, UserUID: "uid-1", Token: "Abc1234", Active: true, ExpiresOn: &in24h,
				}, nil).Once()
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "unknown token",
			userUID: "uid-1",
			setupMocks: func(r *RepoMock) {
				r.On("GetVerificationToken", mock.Anything, "Abc1234").
					Return(nil, repository.ErrNotFound).Once()
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "already consumed concurrently",
			userUID: "uid-1",
			setupMocks: func(r *RepoMock) {
				r.On("GetVerificationToken", mock.Anything, "Abc1234").Return(&models.VerificationToken{
					ID: 7, UserUID: "uid-1", Token: "Abc1234", Active: true, ExpiresOn: &in24h,
				}, nil).Once()
				r.On("ConsumeVerificationToken", mock.Anything, int64(7), "uid-1").
					Return(repository.ErrInvalidState).Once()
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RepoMock{}
			tt.setupMocks(r)
			err := newService(r, &NotifierMock{}).VerifyEmail(context.Background(), tt.userUID, "Abc1234")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			r.AssertExpectations(t)
		})
	}
}

func TestService_Login(t *testing.T) {
	t.Run("unknown email", func(t *testing.T) {
		r := &RepoMock{}
		r.On("GetUserByEmail", mock.Anything, "ghost@example.com").
			Return(nil, repository.ErrNotFound).Once()

		_, err := newService(r, &NotifierMock{}).Login(context.Background(), "ghost@example.com", "pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		r := &RepoMock{}
		r.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&models.User{
			UUID: "uid-1", Email: "alice@example.com", IsActive: true,
			PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		}, nil).Once()

		_, err := newService(r, &NotifierMock{}).Login(context.Background(), "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		r := &RepoMock{}
		r.On("GetUserByEmail", mock.Anything, "alice@example.com").Return(&models.User{
			UUID: "uid-1", Email: "alice@example.com", IsActive: false,
		}, nil).Once()

		_, err := newService(r, &NotifierMock{}).Login(context.Background(), "alice@example.com", "pass")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
