package storage

import (
	"context"
	"fmt"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

// FindSubscription проверяет наличие подписки пользователя на курс.
func (s *Storage) FindSubscription(ctx context.Context, userUID string, courseID int) (bool, error) {
	const op = "storage.FindSubscription"
	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT EXISTS (
				SELECT 1 FROM subscriptions WHERE user_uid = $1 AND course_id = $2
			  )`
	var exists bool
	if err := s.DB.QueryRowContext(ctx, query, userUID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return exists, nil
}

// CreateSubscription создаёт подписку пользователя на курс.
// Уникальный индекс на (user_uid, course_id) — окончательный арбитр гонки
// двух одновременных подписок: при конфликте вставка ничего не пишет и
// возвращается 0 вставленных строк.
func (s *Storage) CreateSubscription(ctx context.Context, userUID string, courseID int) (int, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_uid, course_id)
			  VALUES ($1, $2)
			  ON CONFLICT (user_uid, course_id) DO NOTHING`
	result, err := s.DB.ExecContext(ctx, query, userUID, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveSubscription удаляет подписку пользователя на курс
// и возвращает количество удалённых строк.
func (s *Storage) RemoveSubscription(ctx context.Context, userUID string, courseID int) (int, error) {
	const op = "storage.RemoveSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM subscriptions WHERE user_uid = $1 AND course_id = $2`
	result, err := s.DB.ExecContext(ctx, query, userUID, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListSubscribers возвращает подписки на курс вместе с email подписчиков
// для постановки уведомлений в очередь.
func (s *Storage) ListSubscribers(ctx context.Context, courseID int) ([]*models.Subscription, error) {
	const op = "storage.ListSubscribers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT sub.id, sub.user_uid, sub.course_id, u.email
			  FROM subscriptions sub
			  JOIN users u ON u.uid = sub.user_uid
			  WHERE sub.course_id = $1
			  ORDER BY sub.id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.UserUID, &sub.CourseID, &sub.UserEmail); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// CountSubscriptions возвращает число подписок на пару (пользователь, курс).
// Используется в тестах инварианта единственности.
func (s *Storage) CountSubscriptions(ctx context.Context, userUID string, courseID int) (int, error) {
	const op = "storage.CountSubscriptions"
	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE user_uid = $1 AND course_id = $2`,
		userUID, courseID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
