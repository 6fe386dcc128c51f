// Команда csu создаёт учётную запись модератора. Запускается вручную
// при развёртывании, email и пароль передаются флагами.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/ovsyanik/course-marketplace/internal/config"
	"github.com/ovsyanik/course-marketplace/internal/lib/password"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

func main() {
	email := flag.String("email", "", "email модератора")
	pass := flag.String("password", "", "пароль модератора")
	flag.Parse()

	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if *email == "" || *pass == "" {
		logger.Error("both -email and -password are required")
		os.Exit(1)
	}

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to storage", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = db.DB.Close()
	}()

	hash, err := password.GetHash(*pass)
	if err != nil {
		logger.Error("failed to hash password", sl.Err(err))
		os.Exit(1)
	}

	uid, err := db.RegisterUser(context.Background(), models.User{
		UID:          uuid.NewString(),
		Email:        *email,
		PasswordHash: hash,
		IsModerator:  true,
		IsActive:     true,
	})
	if err != nil {
		logger.Error("failed to create moderator", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("moderator created", slog.String("uid", uid), slog.String("email", *email))
}
