// Package subscribe реализует HTTP-обработчик переключения подписки
// на обновления курса.
//
// Тело запроса несёт явный флаг subscribe; каждый из четырёх исходов
// переключения отвечает своим сообщением: оформление — 201, остальные,
// включая повторную подписку и отмену несуществующей, — 204.
package subscribe

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/ovsyanik/course-marketplace/internal/http/middlewarectx"
	"github.com/ovsyanik/course-marketplace/internal/http/response"
	"github.com/ovsyanik/course-marketplace/internal/lib/sl"
	"github.com/ovsyanik/course-marketplace/internal/models"
	"github.com/ovsyanik/course-marketplace/internal/services/subscription"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

// Сообщения контракта по исходам переключения.
const (
	MsgCreated           = "Подписка на обновления курса оформлена!!"
	MsgAlreadySubscribed = "Вы уже подписаны на обновления этого курса!!"
	MsgRemoved           = "Подписка на обновления курса отменена!!"
	MsgNotSubscribed     = "Вы ещё не подписаны на обновления данного курса!!"
)

// Handler обрабатывает HTTP-запросы переключения подписки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики переключения подписки.
type Service interface {
	Toggle(ctx context.Context, userUID string, courseID int, subscribe bool) (subscription.Outcome, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Переключить подписку на курс
// @Description Оформляет или отменяет подписку на обновления курса. Повторное оформление и отмена несуществующей подписки — корректные запросы со своими сообщениями.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Param id path int true "ID курса"
// @Param request body models.DummySubscribe true "Флаг подписки"
// @Success 201 {object} response.MessageResponse "Подписка оформлена"
// @Success 204 {object} response.MessageResponse "Исход без изменения состояния"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /courses/{id}/subscribe [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.subscribe"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid, _, ok := middlewarectx.Identity(r.Context())
	if !ok {
		log.Error("user identification missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	courseID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("invalid id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	var req models.DummySubscribe
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	outcome, err := h.service.Toggle(r.Context(), uid, courseID, *req.Subscribe)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Error("course not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		log.Error("failed to toggle subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to toggle subscription"))
		return
	}

	status := http.StatusNoContent
	var msg string
	switch outcome {
	case subscription.OutcomeCreated:
		status = http.StatusCreated
		msg = MsgCreated
	case subscription.OutcomeAlreadySubscribed:
		msg = MsgAlreadySubscribed
	case subscription.OutcomeRemoved:
		msg = MsgRemoved
	case subscription.OutcomeNotSubscribed:
		msg = MsgNotSubscribed
	}

	log.Info("subscription toggled", slog.Int("course_id", courseID), slog.String("message", msg))
	w.WriteHeader(status)
	render.JSON(w, r, response.Message(msg))
}
