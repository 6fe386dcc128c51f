package purchase

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/paymentprovider"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

type CoursesMock struct{ mock.Mock }

func (m *CoursesMock) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

type PaymentsMock struct{ mock.Mock }

func (m *PaymentsMock) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	args := m.Called(ctx, payment)
	return args.Int(0), args.Error(1)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) CreatePaymentMethod(ctx context.Context, card paymentprovider.Card) (*paymentprovider.PaymentMethod, error) {
	args := m.Called(ctx, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PaymentMethod), args.Error(1)
}

func (m *ProviderMock) ConfirmPaymentIntent(ctx context.Context, amount int, methodID, description string) (*paymentprovider.PaymentIntent, error) {
	args := m.Called(ctx, amount, methodID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.PaymentIntent), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var testCard = paymentprovider.Card{
	Number:   "4242424242424242",
	ExpMonth: 12,
	ExpYear:  2034,
	CVC:      "314",
}

func TestBuy_Succeeded(t *testing.T) {
	courses := new(CoursesMock)
	payments := new(PaymentsMock)
	provider := new(ProviderMock)

	courses.On("ReadCourse", mock.Anything, 1).
		Return(&models.Course{ID: 1, Title: "Go с нуля"}, nil)
	provider.On("CreatePaymentMethod", mock.Anything, testCard).
		Return(&paymentprovider.PaymentMethod{ID: "pm_1", Type: "card"}, nil)
	provider.On("ConfirmPaymentIntent", mock.Anything, CoursePrice, "pm_1", mock.Anything).
		Return(&paymentprovider.PaymentIntent{ID: "pi_1", Status: "succeeded", Amount: CoursePrice}, nil)
	payments.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.PayerUID == "uid-1" && p.CourseID != nil && *p.CourseID == 1 &&
			p.Amount == CoursePrice && p.Way == models.PayWayTransaction
	})).Return(1, nil)

	service := New(courses, payments, provider, newTestLogger())

	result, err := service.Buy(context.Background(), 1, "uid-1", testCard)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, result.Outcome)
	assert.Equal(t, "Оплата за курс Go с нуля выполнена успешно", result.Message)
	payments.AssertNumberOfCalls(t, "CreatePayment", 1)
}

func TestBuy_DeclinedByProvider(t *testing.T) {
	courses := new(CoursesMock)
	payments := new(PaymentsMock)
	provider := new(ProviderMock)

	courses.On("ReadCourse", mock.Anything, 1).
		Return(&models.Course{ID: 1, Title: "Go с нуля"}, nil)
	provider.On("CreatePaymentMethod", mock.Anything, testCard).
		Return(&paymentprovider.PaymentMethod{ID: "pm_1", Type: "card"}, nil)
	provider.On("ConfirmPaymentIntent", mock.Anything, CoursePrice, "pm_1", mock.Anything).
		Return(&paymentprovider.PaymentIntent{ID: "pi_1", Status: "canceled"}, nil)
	payments.On("CreatePayment", mock.Anything, mock.Anything).Return(1, nil)

	service := New(courses, payments, provider, newTestLogger())

	result, err := service.Buy(context.Background(), 1, "uid-1", testCard)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, result.Outcome)
	assert.Equal(t, "Оплата не прошла, сожалеем!", result.Message)
	// запись в журнале есть и при отказе
	payments.AssertNumberOfCalls(t, "CreatePayment", 1)
}

func TestBuy_ProviderErrorContained(t *testing.T) {
	courses := new(CoursesMock)
	payments := new(PaymentsMock)
	provider := new(ProviderMock)

	courses.On("ReadCourse", mock.Anything, 1).
		Return(&models.Course{ID: 1, Title: "Go с нуля"}, nil)
	provider.On("CreatePaymentMethod", mock.Anything, testCard).
		Return(nil, errors.New("connection timed out"))
	payments.On("CreatePayment", mock.Anything, mock.MatchedBy(func(p models.Payment) bool {
		return p.Way == models.PayWayTransaction
	})).Return(1, nil)

	service := New(courses, payments, provider, newTestLogger())

	result, err := service.Buy(context.Background(), 1, "uid-1", testCard)
	require.NoError(t, err)
	assert.Equal(t, OutcomeDeclined, result.Outcome)
	payments.AssertNumberOfCalls(t, "CreatePayment", 1)
	provider.AssertNotCalled(t, "ConfirmPaymentIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuy_CourseNotFound(t *testing.T) {
	courses := new(CoursesMock)
	payments := new(PaymentsMock)
	provider := new(ProviderMock)

	courses.On("ReadCourse", mock.Anything, 99).Return(nil, storage.ErrNotFound)

	service := New(courses, payments, provider, newTestLogger())

	_, err := service.Buy(context.Background(), 99, "uid-1", testCard)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	payments.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestBuy_LedgerWriteFailure(t *testing.T) {
	courses := new(CoursesMock)
	payments := new(PaymentsMock)
	provider := new(ProviderMock)

	courses.On("ReadCourse", mock.Anything, 1).
		Return(&models.Course{ID: 1, Title: "Go с нуля"}, nil)
	provider.On("CreatePaymentMethod", mock.Anything, testCard).
		Return(&paymentprovider.PaymentMethod{ID: "pm_1"}, nil)
	provider.On("ConfirmPaymentIntent", mock.Anything, CoursePrice, "pm_1", mock.Anything).
		Return(&paymentprovider.PaymentIntent{ID: "pi_1", Status: "succeeded"}, nil)
	payments.On("CreatePayment", mock.Anything, mock.Anything).Return(0, errors.New("db error"))

	service := New(courses, payments, provider, newTestLogger())

	_, err := service.Buy(context.Background(), 1, "uid-1", testCard)
	require.Error(t, err)
}
