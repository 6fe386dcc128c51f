// Package notify реализует триггер уведомлений об обновлении курса.
//
// При изменении материалов курса сервис решает, прошло ли с прошлого
// обновления достаточно времени, и если да — ставит в очередь по одному
// заданию рассылки на каждого подписчика. Постановка в очередь идёт по
// принципу fire-and-forget: ошибки публикации логируются и не
// возвращаются вызывающей стороне мутации.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

// updateThreshold — минимальный интервал с прошлого обновления курса,
// после которого подписчиков пора уведомлять. Ровно четыре часа ещё не
// повод для рассылки, четыре часа и секунда — уже повод.
const updateThreshold = 4 * time.Hour

// SubscriptionRepository отдаёт подписки на курс вместе с email подписчиков.
type SubscriptionRepository interface {
	ListSubscribers(ctx context.Context, courseID int) ([]*models.Subscription, error)
}

// Publisher описывает исходящий клиент очереди заданий рассылки.
// В продакшене это RabbitMQ, в тестах — запоминающая подмена.
type Publisher interface {
	Publish(message any) error
}

// UpdateJob — задание рассылки об обновлении курса одному подписчику.
type UpdateJob struct {
	Email       string `json:"email"`        // Email подписчика
	CourseTitle string `json:"course_title"` // Название обновлённого курса
}

// Service — триггер уведомлений об обновлении курса.
type Service struct {
	repo      SubscriptionRepository
	publisher Publisher
	log       *slog.Logger
}

// New создает новый триггер уведомлений.
func New(repo SubscriptionRepository, publisher Publisher, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// MaybeNotify проверяет, прошло ли с прошлого обновления курса больше
// четырёх часов, и если да — ставит по одному заданию рассылки на каждого
// подписчика. Возвращает число поставленных заданий; отсутствие
// подписчиков — не ошибка, а ноль заданий.
//
// Интервал сравнивается с точностью до секунды: ровно 4 часа не
// запускают рассылку.
func (s *Service) MaybeNotify(ctx context.Context, course *models.Course, previousUpdatedAt time.Time) (int, error) {
	const op = "notify.MaybeNotify"
	log := s.log.With(slog.String("op", op), slog.Int("course_id", course.ID))

	elapsed := time.Since(previousUpdatedAt).Truncate(time.Second)
	if elapsed <= updateThreshold {
		return 0, nil
	}

	subs, err := s.repo.ListSubscribers(ctx, course.ID)
	if err != nil {
		return 0, err
	}
	if len(subs) == 0 {
		log.Info("course updated, no subscribers to notify")
		return 0, nil
	}

	scheduled := 0
	for _, sub := range subs {
		job := UpdateJob{
			Email:       sub.UserEmail,
			CourseTitle: course.Title,
		}
		if err := s.publisher.Publish(job); err != nil {
			log.Error("failed to publish update job", sl.Err(err), slog.String("email", sub.UserEmail))
			continue
		}
		scheduled++
	}

	log.Info("scheduled course update notifications", slog.Int("count", scheduled))
	return scheduled, nil
}
