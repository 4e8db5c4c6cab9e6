package dispute

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) OpenDispute(ctx context.Context, d models.Dispute) (string, error) {
	args := m.Called(ctx, d)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) ReadDispute(ctx context.Context, uid string) (*models.Dispute, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}
func (m *RepoMock) ResolveDispute(ctx context.Context, uid string) (int, error) {
	args := m.Called(ctx, uid)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListDisputes(ctx context.Context, agreementUID string) ([]*models.Dispute, error) {
	args := m.Called(ctx, agreementUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Dispute), args.Error(1)
}

type CacheMock struct{ mock.Mock }

func (m *CacheMock) Invalidate(key string) error {
	return m.Called(key).Error(0)
}

func newService(r *RepoMock, c *CacheMock) *Service {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	return NewService(r, c, log)
}

func TestService_Open(t *testing.T) {
	req := models.DummyDispute{AgreementUID: "ag-1"}

	t.Run("success invalidates agreement cache", func(t *testing.T) {
		r := &RepoMock{}
		c := &CacheMock{}
		r.On("OpenDispute", mock.Anything, mock.MatchedBy(func(d models.Dispute) bool {
			return d.AgreementUID == "ag-1" &&
				d.Status == models.DisputeOpen &&
				d.RaisedByUID != nil && *d.RaisedByUID == "uid-1" &&
				string(d.Data) == "{}"
		})).Return("disp-1", nil).Once()
		c.On("Invalidate", "agreement:ag-1").Return(nil).Once()

		uid, err := newService(r, c).Open(context.Background(), "uid-1", req)
		require.NoError(t, err)
		assert.Equal(t, "disp-1", uid)
		r.AssertExpectations(t)
		c.AssertExpectations(t)
	})

	t.Run("agreement missing", func(t *testing.T) {
		r := &RepoMock{}
		c := &CacheMock{}
		r.On("OpenDispute", mock.Anything, mock.Anything).
			Return("", repository.ErrNotFound).Once()

		_, err := newService(r, c).Open(context.Background(), "uid-1", req)
		require.ErrorIs(t, err, ErrAgreementNotFound)
		c.AssertNotCalled(t, "Invalidate")
	})

	t.Run("agreement not active", func(t *testing.T) {
		r := &RepoMock{}
		c := &CacheMock{}
		r.On("OpenDispute", mock.Anything, mock.Anything).
			Return("", repository.ErrInvalidState).Once()

		_, err := newService(r, c).Open(context.Background(), "uid-1", req)
		require.ErrorIs(t, err, ErrNotDisputable)
	})

	t.Run("cache failure is non-fatal", func(t *testing.T) {
		r := &RepoMock{}
		c := &CacheMock{}
		r.On("OpenDispute", mock.Anything, mock.Anything).Return("disp-1", nil).Once()
		c.On("Invalidate", mock.Anything).Return(errors.New("redis down")).Once()

		uid, err := newService(r, c).Open(context.Background(), "uid-1", req)
		require.NoError(t, err)
		assert.Equal(t, "disp-1", uid)
	})
}

func TestService_Resolve(t *testing.T) {
	t.Run("open dispute resolves", func(t *testing.T) {
		r := &RepoMock{}
		r.On("ResolveDispute", mock.Anything, "disp-1").Return(1, nil).Once()

		require.NoError(t, newService(r, &CacheMock{}).Resolve(context.Background(), "disp-1"))
		r.AssertNotCalled(t, "ReadDispute")
	})

	t.Run("already resolved", func(t *testing.T) {
		r := &RepoMock{}
		r.On("ResolveDispute", mock.Anything, "disp-1").Return(0, nil).Once()
		r.On("ReadDispute", mock.Anything, "disp-1").
			Return(&models.Dispute{UUID: "disp-1", Status: models.DisputeResolved}, nil).Once()

		err := newService(r, &CacheMock{}).Resolve(context.Background(), "disp-1")
		require.ErrorIs(t, err, ErrAlreadyResolved)
	})

	t.Run("unknown dispute", func(t *testing.T) {
		r := &RepoMock{}
		r.On("ResolveDispute", mock.Anything, "ghost").Return(0, nil).Once()
		r.On("ReadDispute", mock.Anything, "ghost").
			Return(nil, repository.ErrNotFound).Once()

		err := newService(r, &CacheMock{}).Resolve(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Read(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		r := &RepoMock{}
		r.On("ReadDispute", mock.Anything, "disp-1").
			Return(&models.Dispute{UUID: "disp-1", Status: models.DisputeOpen}, nil).Once()

		d, err := newService(r, &CacheMock{}).Read(context.Background(), "disp-1")
		require.NoError(t, err)
		assert.Equal(t, models.DisputeOpen, d.Status)
	})

	t.Run("unknown dispute", func(t *testing.T) {
		r := &RepoMock{}
		r.On("ReadDispute", mock.Anything, "ghost").Return(nil, repository.ErrNotFound).Once()

		_, err := newService(r, &CacheMock{}).Read(context.Background(), "ghost")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
