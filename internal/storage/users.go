package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/models"
)

// RegisterUser сохраняет нового пользователя и возвращает его UID.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, password_hash, is_moderator, is_active, phone, city, avatar)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid`
	var uid string
	err := s.DB.QueryRowContext(ctx, query,
		user.UID, user.Email, user.PasswordHash, user.IsModerator, user.IsActive,
		user.Phone, user.City, user.Avatar).Scan(&uid)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByEmail возвращает пользователя по email или ErrNotFound.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	query := `SELECT uid, email, password_hash, is_moderator, is_active, last_login, phone, city, avatar
			  FROM users WHERE email = $1`
	return s.getUser(ctx, op, query, email)
}

// GetUserByUID возвращает пользователя по UID или ErrNotFound.
func (s *Storage) GetUserByUID(ctx context.Context, uid string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	query := `SELECT uid, email, password_hash, is_moderator, is_active, last_login, phone, city, avatar
			  FROM users WHERE uid = $1`
	return s.getUser(ctx, op, query, uid)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	row := s.DB.QueryRowContext(ctx, query, arg)
	var user models.User
	if err := row.Scan(&user.UID, &user.Email, &user.PasswordHash, &user.IsModerator,
		&user.IsActive, &user.LastLogin, &user.Phone, &user.City, &user.Avatar); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// UpdateProfile обновляет необязательные поля профиля пользователя
// и возвращает количество изменённых строк.
func (s *Storage) UpdateProfile(ctx context.Context, uid string, req models.DummyProfile) (int, error) {
	const op = "storage.UpdateProfile"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET phone = $1, city = $2, avatar = $3 WHERE uid = $4`
	result, err := s.DB.ExecContext(ctx, query, req.Phone, req.City, req.Avatar, uid)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// TouchLastLogin выставляет время последнего входа пользователя.
func (s *Storage) TouchLastLogin(ctx context.Context, uid string) error {
	const op = "storage.TouchLastLogin"
	_, err := s.DB.ExecContext(ctx, `UPDATE users SET last_login = now() WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListStaleActiveUsers возвращает активных пользователей, входивших в систему
// последний раз раньше указанного момента.
func (s *Storage) ListStaleActiveUsers(ctx context.Context, before time.Time) ([]*models.User, error) {
	const op = "storage.ListStaleActiveUsers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, email, password_hash, is_moderator, is_active, last_login, phone, city, avatar
			  FROM users
			  WHERE is_active AND last_login IS NOT NULL AND last_login < $1`
	rows, err := s.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.UID, &user.Email, &user.PasswordHash, &user.IsModerator,
			&user.IsActive, &user.LastLogin, &user.Phone, &user.City, &user.Avatar); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// DeactivateUser сбрасывает флаг активности учётной записи.
func (s *Storage) DeactivateUser(ctx context.Context, uid string) error {
	const op = "storage.DeactivateUser"
	_, err := s.DB.ExecContext(ctx, `UPDATE users SET is_active = false WHERE uid = $1`, uid)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
