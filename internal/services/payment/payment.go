// Package payment реализует работу с журналом платежей: ручное занесение
// записей и фильтруемую выборку. Журнал append-only: записи не
// редактируются и не удаляются.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ovsyanik/course-marketplace/internal/authz"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

// ErrPaidForAmbiguous возвращается, когда в записи не указан ровно один
// оплаченный объект: курс либо урок.
var ErrPaidForAmbiguous = errors.New("платёж должен относиться ровно к одному объекту: курсу или уроку")

// Repository описывает нужные журналу операции хранилища.
type Repository interface {
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	ListPayments(ctx context.Context, filter models.FilterPayments) ([]*models.PaymentWithRefs, error)
}

// Service — операции над журналом платежей.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый сервис журнала платежей.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create заносит ручную запись в журнал от имени payerUID.
// Модератору занесение записей запрещено. Запись обязана относиться
// ровно к одному объекту: курсу или уроку.
func (s *Service) Create(ctx context.Context, req models.DummyPayment, payerUID string, role authz.Role) (int, error) {
	const op = "payment.Create"

	if !authz.PermitVerb(role, http.MethodPost) {
		return 0, fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}

	if (req.CourseID == nil) == (req.LessonID == nil) {
		return 0, fmt.Errorf("%s: %w", op, ErrPaidForAmbiguous)
	}

	id, err := s.repo.CreatePayment(ctx, models.Payment{
		PayerUID: payerUID,
		CourseID: req.CourseID,
		LessonID: req.LessonID,
		Amount:   req.Amount,
		Way:      req.Way,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает страницу журнала платежей по фильтру, свежие записи
// первыми, в виде собранных моделей чтения.
func (s *Service) List(ctx context.Context, filter models.FilterPayments) ([]models.PaymentInfo, error) {
	const op = "payment.List"

	rows, err := s.repo.ListPayments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	infos := make([]models.PaymentInfo, 0, len(rows))
	for _, row := range rows {
		infos = append(infos, models.AssemblePaymentInfo(&row.Payment, row.PayerEmail, row.PaidFor()))
	}
	return infos, nil
}
