package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

// CreateCourse вставляет новый курс и возвращает его ID.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (int, error) {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO courses (title, preview, description, author_uid, updated_at)
			  VALUES ($1, $2, $3, $4, now())
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		course.Title, course.Preview, course.Description, course.AuthorUID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadCourse возвращает курс по его ID.
func (s *Storage) ReadCourse(ctx context.Context, id int) (*models.Course, error) {
	const op = "storage.ReadCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, title, preview, description, author_uid, updated_at
			  FROM courses WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Course
	if err := row.Scan(&result.ID, &result.Title, &result.Preview, &result.Description,
		&result.AuthorUID, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// UpdateCourse обновляет поля курса, выставляет updated_at в текущее время
// и возвращает количество изменённых строк.
func (s *Storage) UpdateCourse(ctx context.Context, req models.Course, id int) (int, error) {
	const op = "storage.UpdateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET title = $1, preview = $2, description = $3, updated_at = now()
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, req.Title, req.Preview, req.Description, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveCourse удаляет курс по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveCourse(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM courses WHERE id = $1`
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

// ListCourses возвращает страницу курсов, аннотированных количеством уроков.
func (s *Storage) ListCourses(ctx context.Context, limit, offset int) ([]*models.CourseListItem, error) {
	const op = "storage.ListCourses"
	query := `SELECT c.id, c.title, c.description, c.author_uid, c.updated_at, COUNT(l.id)
			  FROM courses c
			  LEFT JOIN lessons l ON l.course_id = c.id
			  GROUP BY c.id
			  ORDER BY c.id
			  LIMIT $1 OFFSET $2`
	return s.listCourses(ctx, op, query, limit, offset)
}

// ListCoursesByAuthor возвращает страницу курсов заданного автора,
// аннотированных количеством уроков.
func (s *Storage) ListCoursesByAuthor(ctx context.Context, authorUID string, limit, offset int) ([]*models.CourseListItem, error) {
	const op = "storage.ListCoursesByAuthor"
	query := `SELECT c.id, c.title, c.description, c.author_uid, c.updated_at, COUNT(l.id)
			  FROM courses c
			  LEFT JOIN lessons l ON l.course_id = c.id
			  WHERE c.author_uid = $3
			  GROUP BY c.id
			  ORDER BY c.id
			  LIMIT $1 OFFSET $2`
	return s.listCourses(ctx, op, query, limit, offset, authorUID)
}

func (s *Storage) listCourses(ctx context.Context, op, query string, limit, offset int, args ...any) ([]*models.CourseListItem, error) {
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

	var items []*models.CourseListItem
	for rows.Next() {
		var item models.CourseListItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description,
			&item.Author, &item.UpdatedAt, &item.LessonQuantity); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// CourseAuthorEmail возвращает email автора курса или nil, если автора нет.
func (s *Storage) CourseAuthorEmail(ctx context.Context, courseID int) (*string, error) {
	const op = "storage.CourseAuthorEmail"
	query := `SELECT u.email
			  FROM courses c
			  JOIN users u ON u.uid = c.author_uid
			  WHERE c.id = $1`
	var email string
	err := s.DB.QueryRowContext(ctx, query, courseID).Scan(&email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &email, nil
}

// TouchCourse выставляет updated_at курса в текущее время.
func (s *Storage) TouchCourse(ctx context.Context, id int) error {
	const op = "storage.TouchCourse"
	_, err := s.DB.ExecContext(ctx, `UPDATE courses SET updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
