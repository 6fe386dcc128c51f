// Package user реализует работу с профилями пользователей и плановую
// деактивацию заброшенных учётных записей.
package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

// staleAfter — срок без входа, после которого активная учётная запись
// считается заброшенной и деактивируется сторожем.
const staleAfter = 30 * 24 * time.Hour

// Repository описывает нужные профилям операции хранилища.
type Repository interface {
	GetUserByUID(ctx context.Context, uid string) (*models.User, error)
	UpdateProfile(ctx context.Context, uid string, req models.DummyProfile) (int, error)
	ListStaleActiveUsers(ctx context.Context, before time.Time) ([]*models.User, error)
	DeactivateUser(ctx context.Context, uid string) error
}

// Service — операции над профилями пользователей.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// New создает новый сервис профилей.
func New(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Read отдаёт профиль пользователя по UID.
func (s *Service) Read(ctx context.Context, uid string) (*models.User, error) {
	const op = "user.Read"

	user, err := s.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// UpdateProfile обновляет редактируемые поля профиля пользователя.
func (s *Service) UpdateProfile(ctx context.Context, uid string, req models.DummyProfile) error {
	const op = "user.UpdateProfile"

	if _, err := s.repo.UpdateProfile(ctx, uid, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeactivateStale находит активных пользователей, не входивших больше
// тридцати дней, и деактивирует их. Пользователь, ни разу не входивший,
// не трогается. Возвращает число деактивированных; сбой на одном
// пользователе логируется и не прерывает обход.
func (s *Service) DeactivateStale(ctx context.Context, now time.Time) (int, error) {
	const op = "user.DeactivateStale"
	log := s.log.With(slog.String("op", op))

	stale, err := s.repo.ListStaleActiveUsers(ctx, now.Add(-staleAfter))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	deactivated := 0
	for _, u := range stale {
		if err := s.repo.DeactivateUser(ctx, u.UID); err != nil {
			log.Error("failed to deactivate user", sl.Err(err), slog.String("user_uid", u.UID))
			continue
		}
		log.Info("deactivated stale user", slog.String("user_uid", u.UID), slog.String("email", u.Email))
		deactivated++
	}
	return deactivated, nil
}
