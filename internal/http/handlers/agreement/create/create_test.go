package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/monyorojoseph/money-lock/internal/http/middlewarectx"
	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/agreement"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, sellerUID string, req models.DummyAgreement) (string, error) {
	args := m.Called(ctx, sellerUID, req)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func validRequest() models.DummyAgreement {
	return models.DummyAgreement{
		BuyerEmail:      "buyer@example.com",
		Name:            "Laptop purchase",
		Amount:          "1500.00",
		DaysToDeliver:   14,
		TransactionType: "full_payment",
	}
}

func TestAgreementCreateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "success - create agreement",
			requestBody: validRequest(),
			userUID:     "seller-1",
			setupMocks: func(s *MockService) {
				s.On("Create", mock.Anything, "seller-1", mock.MatchedBy(func(req models.DummyAgreement) bool {
					return req.BuyerEmail == "buyer@example.com" &&
						req.Amount == "1500.00" &&
						req.TransactionType == "full_payment"
				})).Return("ag-1", nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"uid":"ag-1"}}`,
		},
		{
			name:           "invalid JSON",
			requestBody:    "not a json",
			userUID:        "seller-1",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name: "missing buyer email",
			requestBody: models.DummyAgreement{
				Name:            "Laptop purchase",
				Amount:          "1500.00",
				TransactionType: "full_payment",
			},
			userUID:        "seller-1",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field BuyerEmail is a required field"}`,
		},
		{
			name: "unknown transaction type",
			requestBody: models.DummyAgreement{
				BuyerEmail:      "buyer@example.com",
				Name:            "Laptop purchase",
				Amount:          "1500.00",
				TransactionType: "installments",
			},
			userUID:        "seller-1",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field TransactionType must be one of: down_payment full_payment"}`,
		},
		{
			name:           "missing user UID",
			requestBody:    validRequest(),
			userUID:        "",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "malformed amount",
			requestBody: validRequest(),
			userUID:     "seller-1",
			setupMocks: func(s *MockService) {
				s.On("Create", mock.Anything, "seller-1", mock.Anything).
					Return("", agreement.ErrInvalidAmount).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"amount must be a non-negative decimal"}`,
		},
		{
			name:        "service error",
			requestBody: validRequest(),
			userUID:     "seller-1",
			setupMocks: func(s *MockService) {
				s.On("Create", mock.Anything, "seller-1", mock.Anything).
					Return("", errors.New("storage down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not create agreement"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			handler := New(newNoopLogger(), service)

			tt.setupMocks(service)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/agreements", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middlewarectx.UserUID, tt.userUID)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())

			service.AssertExpectations(t)
		})
	}
}

func TestAgreementCreateHandler_New(t *testing.T) {
	logger := newNoopLogger()
	service := new(MockService)

	handler := New(logger, service)

	assert.NotNil(t, handler)
	assert.Equal(t, logger, handler.log)
	assert.Equal(t, service, handler.service)
	assert.NotNil(t, handler.validate)
}
