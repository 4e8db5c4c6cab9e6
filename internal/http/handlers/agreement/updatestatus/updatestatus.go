// Package updatestatus реализует HTTP-обработчик перевода соглашения
// в новое состояние. Допустимость перехода проверяет бизнес-логика.
package updatestatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/monyorojoseph/money-lock/internal/http/response"
	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/agreement"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики перевода статуса соглашения.
type Service interface {
	UpdateStatus(ctx context.Context, uid string, next models.AgreementStatus) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Перевести соглашение в новый статус
// @Description Выполняет переход статуса соглашения. Недопустимый переход отклоняется с 409.
// @Tags Agreements
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID соглашения"
// @Param request body models.DummyStatusUpdate true "Новый статус"
// @Success 200 {object} response.Response "Статус обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Соглашение не найдено"
// @Failure 409 {object} response.ErrorResponse "Недопустимый переход статуса"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /agreements/{uid}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.agreement.updatestatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		log.Error("missing agreement uid in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing agreement uid"))
		return
	}

	var req models.DummyStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
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

	err := h.service.UpdateStatus(r.Context(), uid, models.AgreementStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, agreement.ErrNotFound):
			log.Error("agreement not found", slog.String("uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("agreement not found"))
		case errors.Is(err, agreement.ErrIllegalTransition):
			log.Error("illegal status transition",
				slog.String("uid", uid), slog.String("next", req.Status))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("illegal status transition"))
		default:
			log.Error("failed to update agreement status", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update agreement status"))
		}
		return
	}

	log.Info("agreement status updated",
		slog.String("uid", uid), slog.String("status", req.Status))
	render.JSON(w, r, response.OK())
}
