// Package course реализует операции каталога курсов: создание, чтение,
// обновление, удаление и списки с учётом роли запрашивающего.
//
// Обновление курса — единственная мутация каталога с побочным эффектом:
// после записи сервис передаёт курс триггеру уведомлений вместе с прежним
// временем обновления.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/authz"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

// detailTTL — время жизни кешированной карточки курса.
const detailTTL = 10 * time.Minute

// Repository описывает нужные каталогу операции хранилища.
type Repository interface {
	CreateCourse(ctx context.Context, course models.Course) (int, error)
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
	UpdateCourse(ctx context.Context, req models.Course, id int) (int, error)
	RemoveCourse(ctx context.Context, id int) (int, error)
	ListCourses(ctx context.Context, limit, offset int) ([]*models.CourseListItem, error)
	ListCoursesByAuthor(ctx context.Context, authorUID string, limit, offset int) ([]*models.CourseListItem, error)
	CourseAuthorEmail(ctx context.Context, courseID int) (*string, error)
	ListCourseLessonDetails(ctx context.Context, courseID int) ([]models.LessonDetail, error)
	FindSubscription(ctx context.Context, userUID string, courseID int) (bool, error)
}

// Notifier — триггер рассылки об обновлении курса.
type Notifier interface {
	MaybeNotify(ctx context.Context, course *models.Course, previousUpdatedAt time.Time) (int, error)
}

// CacheInterface — кеш карточек курсов. Допускает nil-подмену в тестах
// через NoopCache.
type CacheInterface interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// NoopCache — кеш-заглушка, когда Redis не поднят.
type NoopCache struct{}

func (NoopCache) Get(string, any) (bool, error)            { return false, nil }
func (NoopCache) Set(string, any, time.Duration) error     { return nil }
func (NoopCache) Invalidate(string) error                  { return nil }

// Service — операции каталога курсов.
type Service struct {
	repo     Repository
	notifier Notifier
	cache    CacheInterface
	log      *slog.Logger
}

// New создает новый сервис каталога курсов.
func New(repo Repository, notifier Notifier, cache CacheInterface, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		cache:    cache,
		log:      log,
	}
}

func detailKey(id int) string {
	return fmt.Sprintf("course:detail:%d", id)
}

// Create заводит новый курс от имени requesterUID.
// Модератору создание запрещено.
func (s *Service) Create(ctx context.Context, req models.DummyCourse, requesterUID string, role authz.Role) (int, error) {
	const op = "course.Create"

	if !authz.PermitVerb(role, http.MethodPost) {
		return 0, fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}

	id, err := s.repo.CreateCourse(ctx, models.Course{
		Title:       req.Title,
		Preview:     req.Preview,
		Description: req.Description,
		AuthorUID:   &requesterUID,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает страницу списка курсов. Модератор видит все курсы,
// обычный пользователь — только свои.
func (s *Service) List(ctx context.Context, requesterUID string, role authz.Role, limit, offset int) ([]*models.CourseListItem, error) {
	const op = "course.List"

	if role == authz.RoleModerator {
		items, err := s.repo.ListCourses(ctx, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		return items, nil
	}
	items, err := s.repo.ListCoursesByAuthor(ctx, requesterUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// Read отдаёт развёрнутую карточку курса с уроками и признаком подписки
// запрашивающего. Карточка без признака подписки кешируется; признак
// подписки всегда читается из хранилища, потому что он персональный.
func (s *Service) Read(ctx context.Context, id int, requesterUID string, role authz.Role) (*models.CourseDetail, error) {
	const op = "course.Read"
	log := s.log.With(slog.String("op", op), slog.Int("course_id", id))

	course, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !authz.PermitObject(role, http.MethodGet, requesterUID, course.AuthorUID) {
		return nil, fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}

	subscribed, err := s.repo.FindSubscription(ctx, requesterUID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cached models.CourseDetail
	found, err := s.cache.Get(detailKey(id), &cached)
	if err != nil {
		log.Warn("cache lookup failed", sl.Err(err))
	}
	if found {
		cached.IsSubscribed = subscribed
		return &cached, nil
	}

	authorEmail, err := s.repo.CourseAuthorEmail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lessons, err := s.repo.ListCourseLessonDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	detail := models.AssembleCourseDetail(course, authorEmail, lessons, subscribed)
	if err := s.cache.Set(detailKey(id), detail, detailTTL); err != nil {
		log.Warn("failed to cache course detail", sl.Err(err))
	}
	return &detail, nil
}

// Update обновляет материалы курса и передаёт его триггеру уведомлений
// вместе со временем предыдущего обновления. Ошибка постановки заданий
// рассылки логируется и не отменяет само обновление.
func (s *Service) Update(ctx context.Context, id int, req models.DummyCourse, requesterUID string, role authz.Role) error {
	const op = "course.Update"
	log := s.log.With(slog.String("op", op), slog.Int("course_id", id))

	existing, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !authz.PermitObject(role, http.MethodPut, requesterUID, existing.AuthorUID) {
		return fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}

	previousUpdatedAt := existing.UpdatedAt

	updated := models.Course{
		Title:       req.Title,
		Preview:     req.Preview,
		Description: req.Description,
	}
	if _, err := s.repo.UpdateCourse(ctx, updated, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(detailKey(id)); err != nil {
		log.Warn("failed to invalidate course detail cache", sl.Err(err))
	}

	updated.ID = id
	updated.AuthorUID = existing.AuthorUID
	if _, err := s.notifier.MaybeNotify(ctx, &updated, previousUpdatedAt); err != nil {
		log.Error("failed to schedule update notifications", sl.Err(err))
	}
	return nil
}

// Remove удаляет курс. Модератору удаление запрещено, обычному
// пользователю — только своего курса.
func (s *Service) Remove(ctx context.Context, id int, requesterUID string, role authz.Role) error {
	const op = "course.Remove"

	existing, err := s.repo.ReadCourse(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !authz.PermitObject(role, http.MethodDelete, requesterUID, existing.AuthorUID) {
		return fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}

	if _, err := s.repo.RemoveCourse(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.cache.Invalidate(detailKey(id)); err != nil {
		s.log.Warn("failed to invalidate course detail cache", slog.String("op", op), sl.Err(err))
	}
	return nil
}
