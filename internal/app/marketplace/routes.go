package marketplace

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/ovsyanik/course-marketplace/internal/http/handlers/auth/login"
	"github.com/ovsyanik/course-marketplace/internal/http/handlers/auth/register"
	coursebuy "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/buy"
	coursecreate "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/create"
	courselist "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/list"
	courseread "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/read"
	courseremove "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/remove"
	coursesubscribe "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/subscribe"
	courseupdate "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/update"
	lessoncreate "github.com/ovsyanik/course-marketplace/internal/http/handlers/lesson/create"
	lessonlist "github.com/ovsyanik/course-marketplace/internal/http/handlers/lesson/list"
	lessonread "github.com/ovsyanik/course-marketplace/internal/http/handlers/lesson/read"
	lessonremove "github.com/ovsyanik/course-marketplace/internal/http/handlers/lesson/remove"
	lessonupdate "github.com/ovsyanik/course-marketplace/internal/http/handlers/lesson/update"
	"github.com/ovsyanik/course-marketplace/internal/http/handlers/payment/paymentcreate"
	"github.com/ovsyanik/course-marketplace/internal/http/handlers/payment/paymentlist"
	"github.com/ovsyanik/course-marketplace/internal/http/handlers/user/profileread"
	"github.com/ovsyanik/course-marketplace/internal/http/handlers/user/profileupdate"
	"github.com/ovsyanik/course-marketplace/internal/http/middlewarectx"
	authservice "github.com/ovsyanik/course-marketplace/internal/services/auth"
	courseservice "github.com/ovsyanik/course-marketplace/internal/services/course"
	lessonservice "github.com/ovsyanik/course-marketplace/internal/services/lesson"
	paymentservice "github.com/ovsyanik/course-marketplace/internal/services/payment"
	purchaseservice "github.com/ovsyanik/course-marketplace/internal/services/purchase"
	subservice "github.com/ovsyanik/course-marketplace/internal/services/subscription"
	userservice "github.com/ovsyanik/course-marketplace/internal/services/user"
)

// Services — сервисы приложения, которые разводятся по маршрутам.
type Services struct {
	Auth     *authservice.Service
	Course   *courseservice.Service
	Lesson   *lessonservice.Service
	Sub      *subservice.Service
	Purchase *purchaseservice.Service
	Payment  *paymentservice.Service
	User     *userservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, maker middlewarectx.TokenParser, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
		r.Post("/login", login.New(logger, s.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/courses", courselist.New(logger, s.Course).ServeHTTP)
			r.Post("/courses", coursecreate.New(logger, s.Course).ServeHTTP)
			r.Get("/courses/{id}", courseread.New(logger, s.Course).ServeHTTP)
			r.Put("/courses/{id}", courseupdate.New(logger, s.Course).ServeHTTP)
			r.Patch("/courses/{id}", courseupdate.New(logger, s.Course).ServeHTTP)
			r.Delete("/courses/{id}", courseremove.New(logger, s.Course).ServeHTTP)
			r.Post("/courses/{id}/subscribe", coursesubscribe.New(logger, s.Sub).ServeHTTP)
			r.Post("/courses/{id}/buy", coursebuy.New(logger, s.Purchase).ServeHTTP)

			r.Get("/lessons", lessonlist.New(logger, s.Lesson).ServeHTTP)
			r.Get("/lessons/{id}", lessonread.New(logger, s.Lesson).ServeHTTP)
			r.Post("/lessons_create", lessoncreate.New(logger, s.Lesson).ServeHTTP)
			r.Put("/lessons_update/{id}", lessonupdate.New(logger, s.Lesson).ServeHTTP)
			r.Patch("/lessons_update/{id}", lessonupdate.New(logger, s.Lesson).ServeHTTP)
			r.Delete("/lessons_delete/{id}", lessonremove.New(logger, s.Lesson).ServeHTTP)

			r.Get("/payments", paymentlist.New(logger, s.Payment).ServeHTTP)
			r.Post("/payments", paymentcreate.New(logger, s.Payment).ServeHTTP)

			r.Get("/users/{uid}", profileread.New(logger, s.User).ServeHTTP)
			r.Put("/users/{uid}", profileupdate.New(logger, s.User).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
