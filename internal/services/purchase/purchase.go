// Package purchase реализует покупку курса через внешнего платёжного
// провайдера.
//
// Последовательность: найти курс, зарегистрировать карту у провайдера,
// провести платёж с автоматическим подтверждением и записать результат
// в журнал платежей. Запись в журнал делается на каждую попытку оплаты,
// успешную или нет: журнал фиксирует все попытки. Ошибки провайдера
// (сеть, API, таймаут) не роняют запрос, а превращаются в отказ.
package purchase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/paymentprovider"
)

// CoursePrice — условная цена за курс, динамического ценообразования нет.
const CoursePrice = 2000

// Outcome — итог попытки покупки.
type Outcome int

const (
	// OutcomeSucceeded — провайдер подтвердил списание.
	OutcomeSucceeded Outcome = iota
	// OutcomeDeclined — платёж отклонён либо провайдер недоступен.
	OutcomeDeclined
)

// Result — итог покупки вместе с сообщением для пользователя.
type Result struct {
	Outcome Outcome
	Message string
}

// CourseRepository отдаёт курс по идентификатору.
type CourseRepository interface {
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
}

// PaymentRepository пишет запись в журнал платежей.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
}

// Provider описывает вызовы внешнего платёжного провайдера.
type Provider interface {
	CreatePaymentMethod(ctx context.Context, card paymentprovider.Card) (*paymentprovider.PaymentMethod, error)
	ConfirmPaymentIntent(ctx context.Context, amount int, methodID, description string) (*paymentprovider.PaymentIntent, error)
}

// Service оркестрирует покупку курса.
type Service struct {
	courses  CourseRepository
	payments PaymentRepository
	provider Provider
	log      *slog.Logger
}

// New создает новый сервис покупки.
func New(courses CourseRepository, payments PaymentRepository, provider Provider, log *slog.Logger) *Service {
	return &Service{
		courses:  courses,
		payments: payments,
		provider: provider,
		log:      log,
	}
}

// Buy проводит оплату выбранного курса картой пользователя.
//
// Ненайденный курс — ошибка запроса. Любой сбой провайдера — отказ, а не
// ошибка: запись в журнале появляется в обоих случаях, способ оплаты
// всегда external-transaction.
func (s *Service) Buy(ctx context.Context, courseID int, payerUID string, card paymentprovider.Card) (*Result, error) {
	const op = "purchase.Buy"
	log := s.log.With(slog.String("op", op), slog.Int("course_id", courseID))

	course, err := s.courses.ReadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	settled := false
	method, err := s.provider.CreatePaymentMethod(ctx, card)
	if err != nil {
		log.Error("failed to create payment method", sl.Err(err))
	} else {
		description := fmt.Sprintf("Payment for learning course %q", course.Title)
		intent, err := s.provider.ConfirmPaymentIntent(ctx, CoursePrice, method.ID, description)
		if err != nil {
			log.Error("failed to confirm payment intent", sl.Err(err))
		} else {
			settled = intent.Status == paymentprovider.StatusSucceeded
		}
	}

	payment := models.Payment{
		PayerUID: payerUID,
		CourseID: &course.ID,
		Amount:   CoursePrice,
		Way:      models.PayWayTransaction,
	}
	if _, err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, err
	}

	if !settled {
		log.Info("purchase declined")
		return &Result{
			Outcome: OutcomeDeclined,
			Message: "Оплата не прошла, сожалеем!",
		}, nil
	}

	log.Info("purchase succeeded", slog.String("payer_uid", payerUID))
	return &Result{
		Outcome: OutcomeSucceeded,
		Message: fmt.Sprintf("Оплата за курс %s выполнена успешно", course.Title),
	}, nil
}
