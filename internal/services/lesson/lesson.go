// Package lesson реализует операции над уроками каталога.
//
// Ссылка на видеоматериал проверяется доменным валидатором: разрешены
// только ресурсы youtube.com. Обновление урока, привязанного к курсу,
// обновляет время изменения курса и может запустить рассылку
// подписчикам курса.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/authz"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

// ErrLinkNotAllowed возвращается, когда ссылка урока ведёт не на youtube.com.
// Текст ошибки отдаётся клиенту как есть.
var ErrLinkNotAllowed = errors.New("нельзя размещать ссылки на ресурсы кроме youtube.com")

// Repository описывает нужные урокам операции хранилища.
type Repository interface {
	CreateLesson(ctx context.Context, lesson models.Lesson) (int, error)
	ReadLesson(ctx context.Context, id int) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, req models.Lesson, id int) (int, error)
	UpdateLessonWithCourseRefresh(ctx context.Context, req models.Lesson, id, courseID int) (time.Time, error)
	RemoveLesson(ctx context.Context, id int) (int, error)
	ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error)
	ListLessonsByAuthor(ctx context.Context, authorUID string, limit, offset int) ([]*models.Lesson, error)
	ReadCourse(ctx context.Context, id int) (*models.Course, error)
}

// Notifier — триггер рассылки об обновлении курса.
type Notifier interface {
	MaybeNotify(ctx context.Context, course *models.Course, previousUpdatedAt time.Time) (int, error)
}

// Service — операции над уроками.
type Service struct {
	repo     Repository
	notifier Notifier
	log      *slog.Logger
}

// New создает новый сервис уроков.
func New(repo Repository, notifier Notifier, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
	}
}

// ValidateLink проверяет ссылку урока: пустая ссылка допустима,
// непустая обязана содержать youtube.com. Проверка по подстроке,
// поэтому ссылки без схемы вида www.youtube.com/watch проходят.
func ValidateLink(link *string) error {
	if link == nil || *link == "" {
		return nil
	}
	if !strings.Contains(strings.ToLower(*link), "youtube.com") {
		return ErrLinkNotAllowed
	}
	return nil
}

// Create заводит новый урок от имени requesterUID.
// Модератору создание запрещено.
func (s *Service) Create(ctx context.Context, req models.DummyLesson, requesterUID string, role authz.Role) (int, error) {
	const op = "lesson.Create"

	if !authz.PermitVerb(role, http.MethodPost) {
		return 0, fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}
	if err := ValidateLink(req.Link); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	id, err := s.repo.CreateLesson(ctx, models.Lesson{
		Title:       req.Title,
		Preview:     req.Preview,
		Description: req.Description,
		Link:        req.Link,
		CourseID:    req.CourseID,
		AuthorUID:   &requesterUID,
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// List возвращает страницу списка уроков. Модератор видит все уроки,
// обычный пользователь — только свои.
func (s *Service) List(ctx context.Context, requesterUID string, role authz.Role, limit, offset int) ([]models.LessonListItem, error) {
	const op = "lesson.List"

	var (
		lessons []*models.Lesson
		err     error
	)
	if role == authz.RoleModerator {
		lessons, err = s.repo.ListLessons(ctx, limit, offset)
	} else {
		lessons, err = s.repo.ListLessonsByAuthor(ctx, requesterUID, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.LessonListItem, 0, len(lessons))
	for _, l := range lessons {
		items = append(items, models.AssembleLessonListItem(l))
	}
	return items, nil
}

// Read отдаёт урок по идентификатору с проверкой доступа.
func (s *Service) Read(ctx context.Context, id int, requesterUID string, role authz.Role) (*models.Lesson, error) {
	const op = "lesson.Read"

	lesson, err := s.repo.ReadLesson(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !authz.PermitObject(role, http.MethodGet, requesterUID, lesson.AuthorUID) {
		return nil, fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}
	return lesson, nil
}

// Update обновляет урок. Если урок был привязан к курсу, в одной
// транзакции обновляется и время изменения этого курса, а его подписчики
// могут получить уведомление — в том числе при отвязке или переносе
// урока в другой курс. Урок, не входивший в курс, рассылку не запускает.
func (s *Service) Update(ctx context.Context, id int, req models.DummyLesson, requesterUID string, role authz.Role) error {
	const op = "lesson.Update"
	log := s.log.With(slog.String("op", op), slog.Int("lesson_id", id))

	if err := ValidateLink(req.Link); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.repo.ReadLesson(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !authz.PermitObject(role, http.MethodPut, requesterUID, existing.AuthorUID) {
		return fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}

	updated := models.Lesson{
		Title:       req.Title,
		Preview:     req.Preview,
		Description: req.Description,
		Link:        req.Link,
		CourseID:    req.CourseID,
	}

	// Обновляется и уведомляется курс, в который урок входил до правки.
	if existing.CourseID == nil {
		if _, err := s.repo.UpdateLesson(ctx, updated, id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}

	previousUpdatedAt, err := s.repo.UpdateLessonWithCourseRefresh(ctx, updated, id, *existing.CourseID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	course, err := s.repo.ReadCourse(ctx, *existing.CourseID)
	if err != nil {
		log.Error("failed to load parent course for notifications", sl.Err(err))
		return nil
	}
	if _, err := s.notifier.MaybeNotify(ctx, course, previousUpdatedAt); err != nil {
		log.Error("failed to schedule update notifications", sl.Err(err))
	}
	return nil
}

// Remove удаляет урок. Модератору удаление запрещено, обычному
// пользователю — только своего урока.
func (s *Service) Remove(ctx context.Context, id int, requesterUID string, role authz.Role) error {
	const op = "lesson.Remove"

	existing, err := s.repo.ReadLesson(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !authz.PermitObject(role, http.MethodDelete, requesterUID, existing.AuthorUID) {
		return fmt.Errorf("%s: %w", op, authz.ErrForbidden)
	}

	if _, err := s.repo.RemoveLesson(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
