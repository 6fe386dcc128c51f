// Package paymentlist реализует HTTP-обработчик выборки журнала платежей
// с фильтрами по курсу, уроку и способу оплаты.
package paymentlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	courselist "github.com/ovsyanik/course-marketplace/internal/http/handlers/course/list"
	"github.com/ovsyanik/course-marketplace/internal/http/middlewarectx"
	"github.com/ovsyanik/course-marketplace/internal/http/response"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

// Handler обрабатывает HTTP-запросы выборки журнала платежей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выборки журнала.
type Service interface {
	List(ctx context.Context, filter models.FilterPayments) ([]models.PaymentInfo, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Журнал платежей
// @Description Возвращает страницу журнала платежей, свежие записи первыми. Фильтры по курсу, уроку и способу оплаты опциональны.
// @Tags Payments
// @Produce  json
// @Param course query int false "Фильтр по курсу"
// @Param lesson query int false "Фильтр по уроку"
// @Param way query string false "Фильтр по способу оплаты" Enums(cash, external-transaction)
// @Param order query string false "Порядок по дате оплаты" Enums(asc, desc)
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.OKResponse "Записи журнала"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if _, _, ok := middlewarectx.Identity(r.Context()); !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	filter := models.FilterPayments{}
	filter.Limit, filter.Offset = courselist.ParsePagination(r)

	query := r.URL.Query()
	if v, err := strconv.Atoi(query.Get("course")); err == nil {
		filter.CourseID = &v
	}
	if v, err := strconv.Atoi(query.Get("lesson")); err == nil {
		filter.LessonID = &v
	}
	if way := query.Get("way"); way == models.PayWayCash || way == models.PayWayTransaction {
		filter.Way = &way
	}
	if query.Get("order") == "asc" {
		filter.OldestFirst = true
	}

	infos, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list payments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list payments"))
		return
	}

	log.Info("payments listed", slog.Int("count", len(infos)))
	render.JSON(w, r, response.OKWithData(infos))
}
