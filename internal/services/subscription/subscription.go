// Package subscription реализует переключение подписки пользователя
// на обновления курса.
//
// Пара (пользователь, курс) — двухсостоянный автомат: подписка либо есть,
// либо нет. Оба перехода идемпотентны, но все четыре исхода различимы для
// пользователя, поэтому сервис сначала читает текущее состояние и только
// потом пишет. Гонку двух одновременных подписок окончательно разрешает
// уникальный индекс хранилища, проверка здесь — лишь предварительный фильтр.
package subscription

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

// Outcome — исход переключения подписки, видимый пользователю.
type Outcome int

const (
	// OutcomeCreated — подписка оформлена.
	OutcomeCreated Outcome = iota
	// OutcomeAlreadySubscribed — подписка уже была, ничего не изменилось.
	OutcomeAlreadySubscribed
	// OutcomeRemoved — подписка отменена.
	OutcomeRemoved
	// OutcomeNotSubscribed — подписки и не было, ничего не изменилось.
	OutcomeNotSubscribed
)

// SubscriptionRepository определяет методы работы с подписками в хранилище.
type SubscriptionRepository interface {
	// ReadCourse отдаёт курс по идентификатору либо storage.ErrNotFound.
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
	// FindSubscription проверяет наличие подписки на пару (пользователь, курс).
	FindSubscription(ctx context.Context, userUID string, courseID int) (bool, error)
	// CreateSubscription создаёт подписку, возвращает число вставленных строк.
	CreateSubscription(ctx context.Context, userUID string, courseID int) (int, error)
	// RemoveSubscription удаляет подписку, возвращает число удалённых строк.
	RemoveSubscription(ctx context.Context, userUID string, courseID int) (int, error)
}

// Service реализует бизнес-логику переключения подписки.
type Service struct {
	repo SubscriptionRepository
	log  *slog.Logger
}

// New создает новый сервис подписок.
func New(repo SubscriptionRepository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

// Toggle переводит пару (пользователь, курс) в запрошенное состояние.
// Несуществующий курс — ошибка storage.ErrNotFound, а не запись подписки.
func (s *Service) Toggle(ctx context.Context, userUID string, courseID int, subscribe bool) (Outcome, error) {
	const op = "subscription.Toggle"

	if _, err := s.repo.ReadCourse(ctx, courseID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.repo.FindSubscription(ctx, userUID, courseID)
	if err != nil {
		return 0, err
	}

	if subscribe {
		if exists {
			return OutcomeAlreadySubscribed, nil
		}
		inserted, err := s.repo.CreateSubscription(ctx, userUID, courseID)
		if err != nil {
			return 0, err
		}
		// Вставка могла проиграть гонку конкурентному запросу:
		// уникальный индекс ничего не записал.
		if inserted == 0 {
			return OutcomeAlreadySubscribed, nil
		}
		s.log.Info("subscription created",
			slog.String("user_uid", userUID), slog.Int("course_id", courseID))
		return OutcomeCreated, nil
	}

	if !exists {
		return OutcomeNotSubscribed, nil
	}
	removed, err := s.repo.RemoveSubscription(ctx, userUID, courseID)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return OutcomeNotSubscribed, nil
	}
	s.log.Info("subscription removed",
		slog.String("user_uid", userUID), slog.Int("course_id", courseID))
	return OutcomeRemoved, nil
}
