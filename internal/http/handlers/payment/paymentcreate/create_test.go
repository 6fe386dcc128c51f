package paymentcreate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovsyanik/course-marketplace/internal/authz"
	"github.com/ovsyanik/course-marketplace/internal/http/middlewarectx"
	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/services/payment"
)

// MockService реализует интерфейс paymentcreate.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, req models.DummyPayment, payerUID string, role authz.Role) (int, error) {
	args := m.Called(ctx, req, payerUID, role)
	return args.Int(0), args.Error(1)
}

func intPtr(i int) *int { return &i }

func TestCreatePaymentHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name           string
		requestBody    interface{}
		userUID        string
		role           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное занесение платежа",
			requestBody: models.DummyPayment{CourseID: intPtr(3), Amount: 500, Way: models.PayWayCash},
			userUID:     "user123",
			role:        "user",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("models.DummyPayment"), "user123", authz.RoleUser).
					Return(11, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"status":"OK","data":{"payment_id":11}}`,
		},
		{
			name:        "модератору занесение запрещено",
			requestBody: models.DummyPayment{CourseID: intPtr(3), Amount: 500, Way: models.PayWayCash},
			userUID:     "mod123",
			role:        "moderator",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("models.DummyPayment"), "mod123", authz.RoleModerator).
					Return(0, fmt.Errorf("payment.Create: %w", authz.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"action is not permitted for this role"}`,
		},
		{
			name:        "неоднозначный объект оплаты",
			requestBody: models.DummyPayment{CourseID: intPtr(3), LessonID: intPtr(7), Amount: 500, Way: models.PayWayCash},
			userUID:     "user123",
			role:        "user",
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("models.DummyPayment"), "user123", authz.RoleUser).
					Return(0, fmt.Errorf("payment.Create: %w", payment.ErrPaidForAmbiguous))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"платёж должен относиться ровно к одному объекту: курсу или уроку"}`,
		},
		{
			name:           "нулевая сумма",
			requestBody:    models.DummyPayment{CourseID: intPtr(3), Way: models.PayWayCash},
			userUID:        "user123",
			role:           "user",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `{"status":"Error","error":"field Amount is a required field"}`,
		},
		{
			name:           "отсутствует авторизация",
			requestBody:    models.DummyPayment{CourseID: intPtr(3), Amount: 500, Way: models.PayWayCash},
			userUID:        "",
			role:           "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			body, err := json.Marshal(tt.requestBody)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := req.Context()
			if tt.userUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.userUID)
				ctx = context.WithValue(ctx, middlewarectx.Role, tt.role)
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
