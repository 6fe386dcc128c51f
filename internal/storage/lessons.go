package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

// CreateLesson вставляет новый урок и возвращает его ID.
func (s *Storage) CreateLesson(ctx context.Context, lesson models.Lesson) (int, error) {
	const op = "storage.CreateLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO lessons (title, preview, description, link, course_id, author_uid)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		lesson.Title, lesson.Preview, lesson.Description, lesson.Link,
		lesson.CourseID, lesson.AuthorUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadLesson возвращает урок по его ID.
func (s *Storage) ReadLesson(ctx context.Context, id int) (*models.Lesson, error) {
	const op = "storage.ReadLesson"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, preview, description, link, course_id, author_uid
			  FROM lessons WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Lesson
	if err := row.Scan(&result.ID, &result.Title, &result.Preview, &result.Description,
		&result.Link, &result.CourseID, &result.AuthorUID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateLesson обновляет поля урока и возвращает количество изменённых строк.
func (s *Storage) UpdateLesson(ctx context.Context, req models.Lesson, id int) (int, error) {
	const op = "storage.UpdateLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE lessons
			  SET title = $1, preview = $2, description = $3, link = $4, course_id = $5
			  WHERE id = $6`
	result, err := s.DB.ExecContext(ctx, query,
		req.Title, req.Preview, req.Description, req.Link, req.CourseID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// UpdateLessonWithCourseRefresh в одной транзакции обновляет урок и
// переставляет updated_at родительского курса в текущее время.
// Возвращает значение updated_at курса до обновления — по нему вызывающая
// сторона решает, пора ли уведомлять подписчиков.
func (s *Storage) UpdateLessonWithCourseRefresh(ctx context.Context, req models.Lesson, id, courseID int) (time.Time, error) {
	const op = "storage.UpdateLessonWithCourseRefresh"
	select {
	case <-ctx.Done():
		return time.Time{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	var previousUpdatedAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT updated_at FROM courses WHERE id = $1 FOR UPDATE`, courseID).
		Scan(&previousUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE courses SET updated_at = now() WHERE id = $1`, courseID)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE lessons
		 SET title = $1, preview = $2, description = $3, link = $4, course_id = $5
		 WHERE id = $6`,
		req.Title, req.Preview, req.Description, req.Link, req.CourseID, id)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", op, err)
	}
	return previousUpdatedAt, nil
}

// RemoveLesson удаляет урок по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveLesson(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM lessons WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListLessons возвращает страницу уроков.
func (s *Storage) ListLessons(ctx context.Context, limit, offset int) ([]*models.Lesson, error) {
	const op = "storage.ListLessons"
	query := `SELECT id, title, preview, description, link, course_id, author_uid
			  FROM lessons ORDER BY id LIMIT $1 OFFSET $2`
	return s.listLessons(ctx, op, query, limit, offset)
}

// ListLessonsByAuthor возвращает страницу уроков заданного автора.
func (s *Storage) ListLessonsByAuthor(ctx context.Context, authorUID string, limit, offset int) ([]*models.Lesson, error) {
	const op = "storage.ListLessonsByAuthor"
	query := `SELECT id, title, preview, description, link, course_id, author_uid
			  FROM lessons WHERE author_uid = $3 ORDER BY id LIMIT $1 OFFSET $2`
	return s.listLessons(ctx, op, query, limit, offset, authorUID)
}

func (s *Storage) listLessons(ctx context.Context, op, query string, limit, offset int, args ...any) ([]*models.Lesson, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	queryArgs := append([]any{limit, offset}, args...)
	rows, err := s.DB.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var lessons []*models.Lesson
	for rows.Next() {
		var lesson models.Lesson
		if err := rows.Scan(&lesson.ID, &lesson.Title, &lesson.Preview, &lesson.Description,
			&lesson.Link, &lesson.CourseID, &lesson.AuthorUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		lessons = append(lessons, &lesson)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lessons, nil
}

// ListCourseLessonDetails возвращает развёрнутые представления уроков курса:
// вместо идентификаторов подставлены email автора и название курса.
func (s *Storage) ListCourseLessonDetails(ctx context.Context, courseID int) ([]models.LessonDetail, error) {
	const op = "storage.ListCourseLessonDetails"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT l.id, l.title, l.preview, l.description, l.link, l.course_id, l.author_uid,
			         u.email, c.title
			  FROM lessons l
			  LEFT JOIN users u ON u.uid = l.author_uid
			  LEFT JOIN courses c ON c.id = l.course_id
			  WHERE l.course_id = $1
			  ORDER BY l.id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var details []models.LessonDetail
	for rows.Next() {
		var lesson models.Lesson
		var authorEmail, courseTitle *string
		if err := rows.Scan(&lesson.ID, &lesson.Title, &lesson.Preview, &lesson.Description,
			&lesson.Link, &lesson.CourseID, &lesson.AuthorUID, &authorEmail, &courseTitle); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		details = append(details, models.AssembleLessonDetail(&lesson, authorEmail, courseTitle))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return details, nil
}
