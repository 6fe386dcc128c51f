package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

// CreatePayment вставляет запись журнала платежей и возвращает её ID.
// Дата оплаты выставляется базой при вставке и больше не меняется:
// журнал только пополняется, записи неизменяемы.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (payer_uid, payment_date, course_id, lesson_id, amount, payment_way)
			  VALUES ($1, now(), $2, $3, $4, $5)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		payment.PayerUID, payment.CourseID, payment.LessonID, payment.Amount, payment.Way).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListPayments возвращает страницу журнала платежей с загруженными связями,
// отфильтрованную по курсу, уроку и способу оплаты.
// Записи упорядочены по дате оплаты по убыванию.
func (s *Storage) ListPayments(ctx context.Context, filter models.FilterPayments) ([]*models.PaymentWithRefs, error) {
	const op = "storage.ListPayments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var conditions []string
	args := []any{filter.Limit, filter.Offset}
	if filter.CourseID != nil {
		args = append(args, *filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("p.course_id = $%d", len(args)))
	}
	if filter.LessonID != nil {
		args = append(args, *filter.LessonID)
		conditions = append(conditions, fmt.Sprintf("p.lesson_id = $%d", len(args)))
	}
	if filter.Way != nil {
		args = append(args, *filter.Way)
		conditions = append(conditions, fmt.Sprintf("p.payment_way = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}
	direction := "DESC"
	if filter.OldestFirst {
		direction = "ASC"
	}

	query := fmt.Sprintf(`SELECT p.id, p.payer_uid, p.payment_date, p.course_id, p.lesson_id,
			         p.amount, p.payment_way, u.email, c.title, l.title
			  FROM payments p
			  JOIN users u ON u.uid = p.payer_uid
			  LEFT JOIN courses c ON c.id = p.course_id
			  LEFT JOIN lessons l ON l.id = p.lesson_id
			  %s
			  ORDER BY p.payment_date %s, p.id %s
			  LIMIT $1 OFFSET $2`, where, direction, direction)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var payments []*models.PaymentWithRefs
	for rows.Next() {
		var p models.PaymentWithRefs
		if err := rows.Scan(&p.ID, &p.PayerUID, &p.PaymentDate, &p.CourseID, &p.LessonID,
			&p.Amount, &p.Way, &p.PayerEmail, &p.CourseTitle, &p.LessonTitle); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return payments, nil
}

// CountPaymentsByPayer возвращает число записей журнала для плательщика.
// Используется в тестах семантики «одна запись на каждую попытку оплаты».
func (s *Storage) CountPaymentsByPayer(ctx context.Context, payerUID string) (int, error) {
	const op = "storage.CountPaymentsByPayer"
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE payer_uid = $1`, payerUID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
