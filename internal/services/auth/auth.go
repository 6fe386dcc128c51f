// Package auth реализует регистрацию, вход по паролю и проверку токена.
//
// Пароли хранятся только в виде bcrypt-хэшей. Успешный вход обновляет
// время последнего входа пользователя: по нему сторож учётных записей
// находит заброшенные аккаунты.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ovsyanik/course-marketplace/internal/authz"
	"github.com/ovsyanik/course-marketplace/internal/lib/jwt"
	"github.com/ovsyanik/course-marketplace/internal/lib/password"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

// Ошибки входа. Наружу обе отдаются одним сообщением, чтобы не
// раскрывать, существует ли учётная запись.
var (
	ErrInvalidCredentials = errors.New("неверный email или пароль")
	ErrUserInactive       = errors.New("учётная запись деактивирована")
)

// Repository описывает нужные аутентификации операции хранилища.
type Repository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLastLogin(ctx context.Context, uid string) error
}

// Service — регистрация и вход пользователей.
type Service struct {
	repo  Repository
	maker jwt.Maker
	log   *slog.Logger
}

// New создает новый сервис аутентификации.
func New(repo Repository, maker jwt.Maker, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		maker: maker,
		log:   log,
	}
}

// Register заводит нового пользователя и возвращает его UID.
func (s *Service) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	const op = "auth.Register"

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	uid, err := s.repo.RegisterUser(ctx, models.User{
		UID:          uuid.NewString(),
		Email:        req.Email,
		PasswordHash: hash,
		IsActive:     true,
		Phone:        req.Phone,
		City:         req.City,
		Avatar:       req.Avatar,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// Login проверяет пароль пользователя и выдаёт подписанный токен
// вместе с ролью.
// Деактивированная учётная запись войти не может. Успешный вход
// обновляет время последнего входа; сбой этого обновления логируется
// и не мешает входу.
func (s *Service) Login(ctx context.Context, req models.DummyLogin) (string, authz.Role, error) {
	const op = "auth.Login"
	log := s.log.With(slog.String("op", op))

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return "", "", fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return "", "", fmt.Errorf("%s: %w", op, ErrUserInactive)
	}
	if err := password.CompareHash(user.PasswordHash, req.Password); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	role := authz.RoleUser
	if user.IsModerator {
		role = authz.RoleModerator
	}
	token, err := s.maker.GenerateToken(user.Email, string(role), user.UID)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.TouchLastLogin(ctx, user.UID); err != nil {
		log.Error("failed to update last login", sl.Err(err), slog.String("user_uid", user.UID))
	}
	return token, role, nil
}
