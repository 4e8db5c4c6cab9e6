package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/monyorojoseph/money-lock/internal/http/response"
	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/models"
	"github.com/monyorojoseph/money-lock/internal/services/agreement"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения соглашения.
type Service interface {
	Read(ctx context.Context, uid string) (*models.PaymentAgreement, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить соглашение по UID
// @Description Возвращает платёжное соглашение по его UID.
// @Tags Agreements
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID соглашения"
// @Success 200 {object} response.Response "Найденное соглашение"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Соглашение не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /agreements/{uid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.agreement.read"
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

	a, err := h.service.Read(r.Context(), uid)
	if err != nil {
		if errors.Is(err, agreement.ErrNotFound) {
			log.Error("agreement not found", slog.String("uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("agreement not found"))
			return
		}
		log.Error("failed to read agreement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read agreement"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(a))
}
