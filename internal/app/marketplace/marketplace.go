// Package marketplace собирает HTTP-приложение каталога курсов:
// хранилище, миграции, кеш, очередь рассылки, платёжного провайдера
// и все сервисы с маршрутами.
package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/ovsyanik/course-marketplace/internal/cache"
	"github.com/ovsyanik/course-marketplace/internal/config"
	"github.com/ovsyanik/course-marketplace/internal/lib/jwt"
	"github.com/ovsyanik/course-marketplace/internal/migrations"
	"github.com/ovsyanik/course-marketplace/internal/paymentprovider"
	"github.com/ovsyanik/course-marketplace/internal/rabbitmq"
	authservice "github.com/ovsyanik/course-marketplace/internal/services/auth"
	courseservice "github.com/ovsyanik/course-marketplace/internal/services/course"
	lessonservice "github.com/ovsyanik/course-marketplace/internal/services/lesson"
	notifyservice "github.com/ovsyanik/course-marketplace/internal/services/notify"
	paymentservice "github.com/ovsyanik/course-marketplace/internal/services/payment"
	purchaseservice "github.com/ovsyanik/course-marketplace/internal/services/purchase"
	subservice "github.com/ovsyanik/course-marketplace/internal/services/subscription"
	userservice "github.com/ovsyanik/course-marketplace/internal/services/user"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

// App — собранное HTTP-приложение каталога курсов.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	amqp   *amqp.Connection
}

// New собирает приложение: подключает хранилище, накатывает миграции,
// поднимает кеш, очередь и платёжного провайдера, связывает сервисы
// и маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	amqpConn, err := rabbitmq.Connect(cfg.AmqpConnectionString, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(amqpConn)
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewNotificationPublisher(ch)

	maker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.APIKey, cfg.APIURL, cfg.RequestTimeout)

	notifySvc := notifyservice.New(db, publisher, logger)
	services := Services{
		Auth:     authservice.New(db, maker, logger),
		Course:   courseservice.New(db, notifySvc, cacheRedis, logger),
		Lesson:   lessonservice.New(db, notifySvc, logger),
		Sub:      subservice.New(db, logger),
		Purchase: purchaseservice.New(db, db, providerClient, logger),
		Payment:  paymentservice.New(db, logger),
		User:     userservice.New(db, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, maker, services)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		amqp:   amqpConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.db.DB.Close()
		if closeErr := a.amqp.Close(); closeErr != nil {
			a.logger.Error("failed to close amqp connection", slog.Any("err", closeErr))
		}
		return err
	}
}
