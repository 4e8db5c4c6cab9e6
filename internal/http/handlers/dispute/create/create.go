// Package create реализует HTTP-обработчик открытия спора по соглашению.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/monyorojoseph/money-lock/internal/http/middlewarectx"
	"github.com/monyorojoseph/money-lock/internal/http/response"
	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/dispute"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики открытия спора.
type Service interface {
	Open(ctx context.Context, raisedByUID string, req models.DummyDispute) (string, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Открыть спор по соглашению
// @Description Открывает спор по активному соглашению и переводит соглашение в disputed. Возвращает UID спора.
// @Tags Disputes
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyDispute true "Данные нового спора"
// @Success 200 {object} map[string]any "Спор открыт"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Соглашение не найдено"
// @Failure 409 {object} response.ErrorResponse "Соглашение не в активном состоянии"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /disputes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dispute.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyDispute
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	uid, err := h.service.Open(r.Context(), userUID, req)
	if err != nil {
		switch {
		case errors.Is(err, dispute.ErrAgreementNotFound):
			log.Error("agreement not found", slog.String("agreement_uid", req.AgreementUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("agreement not found"))
		case errors.Is(err, dispute.ErrNotDisputable):
			log.Error("agreement is not active", slog.String("agreement_uid", req.AgreementUID))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("agreement is not active"))
		default:
			log.Error("failed to open dispute", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not open dispute"))
		}
		return
	}

	log.Info("dispute opened", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid": uid,
	}))
}
