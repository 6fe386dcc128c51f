package subscribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovsyanik/course-marketplace/internal/http/middlewarectx"
	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/services/subscription"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

// MockService реализует интерфейс subscribe.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Toggle(ctx context.Context, userUID string, courseID int, subscribe bool) (subscription.Outcome, error) {
	args := m.Called(ctx, userUID, courseID, subscribe)
	return args.Get(0).(subscription.Outcome), args.Error(1)
}

func boolPtr(b bool) *bool { return &b }

func TestSubscribeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "оформление подписки",
			requestBody: models.DummySubscribe{Subscribe: boolPtr(true)},
			userUID:     "user123",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, "user123", 5, true).
					Return(subscription.OutcomeCreated, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"message":"Подписка на обновления курса оформлена!!"}`,
		},
		{
			name:        "повторная подписка",
			requestBody: models.DummySubscribe{Subscribe: boolPtr(true)},
			userUID:     "user123",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, "user123", 5, true).
					Return(subscription.OutcomeAlreadySubscribed, nil)
			},
			expectedStatus: http.StatusNoContent,
			expectedBody:   `{"message":"Вы уже подписаны на обновления этого курса!!"}`,
		},
		{
			name:        "отмена подписки",
			requestBody: models.DummySubscribe{Subscribe: boolPtr(false)},
			userUID:     "user123",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, "user123", 5, false).
					Return(subscription.OutcomeRemoved, nil)
			},
			expectedStatus: http.StatusNoContent,
			expectedBody:   `{"message":"Подписка на обновления курса отменена!!"}`,
		},
		{
			name:        "отмена несуществующей подписки",
			requestBody: models.DummySubscribe{Subscribe: boolPtr(false)},
			userUID:     "user123",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, "user123", 5, false).
					Return(subscription.OutcomeNotSubscribed, nil)
			},
			expectedStatus: http.StatusNoContent,
			expectedBody:   `{"message":"Вы ещё не подписаны на обновления данного курса!!"}`,
		},
		{
			name:           "пропущен флаг subscribe",
			requestBody:    map[string]any{},
			userUID:        "user123",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Subscribe is a required field"}`,
		},
		{
			name:           "некорректный JSON",
			requestBody:    "not a json",
			userUID:        "user123",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid request body"}`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    models.DummySubscribe{Subscribe: boolPtr(true)},
			userUID:        "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:        "подписка на несуществующий курс",
			requestBody: models.DummySubscribe{Subscribe: boolPtr(true)},
			userUID:     "user123",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, "user123", 5, true).
					Return(subscription.Outcome(0), fmt.Errorf("subscription.Toggle: %w", storage.ErrNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"course not found"}`,
		},
		{
			name:        "ошибка сервиса",
			requestBody: models.DummySubscribe{Subscribe: boolPtr(true)},
			userUID:     "user123",
			setupMock: func(m *MockService) {
				m.On("Toggle", mock.Anything, "user123", 5, true).
					Return(subscription.OutcomeCreated, errors.New("db error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to toggle subscription"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/courses/5/subscribe", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", "5")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
				ctx = context.WithValue(ctx, middlewarectx.Role, "user")
			}
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "req-id")
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
			mockService.AssertExpectations(t)
		})
	}
}
