// Package buy реализует HTTP-обработчик разовой покупки курса картой.
//
// Успешная оплата отвечает 201, отклонённая провайдером — 204; в обоих
// случаях запись об оплате уже занесена в журнал платежей.
package buy

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
	"github.com/ovsyanik/course-marketplace/internal/paymentprovider"
	"github.com/ovsyanik/course-marketplace/internal/services/purchase"
	"github.com/ovsyanik/course-marketplace/internal/storage"
)

// Handler обрабатывает HTTP-запросы покупки курса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики покупки курса.
type Service interface {
	Buy(ctx context.Context, courseID int, payerUID string, card paymentprovider.Card) (*purchase.Result, error)
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
// @Summary Купить курс
// @Description Проводит разовую оплату курса картой через внешнего провайдера. Попытка оплаты фиксируется в журнале независимо от исхода.
// @Tags Courses
// @Accept  json
// @Produce  json
// @Param id path int true "ID курса"
// @Param request body models.DummyBuy true "Данные карты"
// @Success 201 {object} response.MessageResponse "Оплата выполнена"
// @Success 204 {object} response.MessageResponse "Оплата отклонена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /courses/{id}/buy [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.course.buy"

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

	var req models.DummyBuy
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

	card := paymentprovider.Card{
		Number:   req.CardNumber,
		ExpMonth: req.ExpMonth,
		ExpYear:  req.ExpYear,
		CVC:      req.CVC,
	}

	result, err := h.service.Buy(r.Context(), courseID, uid, card)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Error("course not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("course not found"))
			return
		}
		log.Error("failed to process purchase", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to process purchase"))
		return
	}

	status := http.StatusNoContent
	if result.Outcome == purchase.OutcomeSucceeded {
		status = http.StatusCreated
	}

	log.Info("purchase processed", slog.Int("course_id", courseID), slog.String("message", result.Message))
	w.WriteHeader(status)
	render.JSON(w, r, response.Message(result.Message))
}
