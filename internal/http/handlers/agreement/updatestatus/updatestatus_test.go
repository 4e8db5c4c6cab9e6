package updatestatus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/agreement"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) UpdateStatus(ctx context.Context, uid string, next models.AgreementStatus) error {
	args := m.Called(ctx, uid, next)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestUpdateStatusHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		uid            string
		requestBody    string
		setupMocks     func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "success - activate agreement",
			uid:         "ag-1",
			requestBody: `{"status":"active"}`,
			setupMocks: func(s *MockService) {
				s.On("UpdateStatus", mock.Anything, "ag-1", models.StatusActive).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK"}`,
		},
		{
			name:           "invalid JSON",
			uid:            "ag-1",
			requestBody:    "not a json",
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "disputed is not accepted from clients",
			uid:            "ag-1",
			requestBody:    `{"status":"disputed"}`,
			setupMocks:     func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Status must be one of: active completed canceled"}`,
		},
		{
			name:        "unknown agreement",
			uid:         "ghost",
			requestBody: `{"status":"active"}`,
			setupMocks: func(s *MockService) {
				s.On("UpdateStatus", mock.Anything, "ghost", models.StatusActive).
					Return(agreement.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"agreement not found"}`,
		},
		{
			name:        "illegal transition",
			uid:         "ag-1",
			requestBody: `{"status":"completed"}`,
			setupMocks: func(s *MockService) {
				s.On("UpdateStatus", mock.Anything, "ag-1", models.StatusCompleted).
					Return(agreement.ErrIllegalTransition).Once()
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"illegal status transition"}`,
		},
		{
			name:        "service error",
			uid:         "ag-1",
			requestBody: `{"status":"active"}`,
			setupMocks: func(s *MockService) {
				s.On("UpdateStatus", mock.Anything, "ag-1", models.StatusActive).
					Return(errors.New("storage down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"could not update agreement status"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			handler := New(newNoopLogger(), service)

			tt.setupMocks(service)

			req := httptest.NewRequest(http.MethodPatch,
				"/api/v1/agreements/"+tt.uid+"/status", bytes.NewReader([]byte(tt.requestBody)))
			req.Header.Set("Content-Type", "application/json")

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("uid", tt.uid)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
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
