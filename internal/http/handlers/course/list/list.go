// Package list реализует HTTP-обработчик списка курсов с пагинацией.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/ovsyanik/course-marketplace/internal/authz"
	"github.com/ovsyanik/course-marketplace/internal/http/middlewarectx"
	"github.com/ovsyanik/course-marketplace/internal/http/response"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
)

const defaultLimit = 20

// Handler обрабатывает HTTP-запросы списка курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка курсов.
type Service interface {
	List(ctx context.Context, requesterUID string, role authz.Role, limit, offset int) ([]*models.CourseListItem, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ParsePagination извлекает limit и offset из query-параметров запроса.
// Отрицательные и некорректные значения заменяются умолчаниями.
func ParsePagination(r *http.Request) (int, int) {
	limit := defaultLimit
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// ServeHTTP godoc
// @Summary Список курсов
// @Description Возвращает страницу списка курсов с количеством уроков. Модератор видит все курсы, пользователь — только свои.
// @Tags Courses
// @Produce  json
// @Param limit query int false "Размер страницы"
// @Param offset query int false "Смещение"
// @Success 200 {object} response.OKResponse "Список курсов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /courses [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, role, ok := middlewarectx.Identity(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	limit, offset := ParsePagination(r)

	items, err := h.service.List(r.Context(), uid, role, limit, offset)
	if err != nil {
		log.Error("failed to list courses", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list courses"))
		return
	}

	log.Info("courses listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(items))
}
