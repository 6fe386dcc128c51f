package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ovsyanik/course-marketplace/internal/config"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	smtplib "github.com/ovsyanik/course-marketplace/internal/lib/smtp"
	"github.com/ovsyanik/course-marketplace/internal/rabbitmq"
	senderservice "github.com/ovsyanik/course-marketplace/internal/services/sender"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := rabbitmq.Connect(cfg.AmqpConnectionString, 5, 3*time.Second)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn)
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()

	transport := smtplib.NewTransport(cfg.SMTPConnection, logger)
	sender := senderservice.New(transport, logger)

	err = rabbitmq.ConsumerMessage(ctx, ch, rabbitmq.QueueCourseUpdates, logger, sender.SendCourseUpdate)
	if err != nil {
		logger.Error("failed to start consumer", sl.Err(err))
		os.Exit(1)
	}
	logger.Info("consuming course update jobs", slog.String("queue", rabbitmq.QueueCourseUpdates))

	<-ctx.Done()

	logger.Info("notification-sender shutting down gracefully")
}
