// Package resolve реализует HTTP-обработчик разрешения спора.
package resolve

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
	"github.com/monyorojoseph/money-lock/internal/services/dispute"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики разрешения спора.
type Service interface {
	Resolve(ctx context.Context, uid string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Разрешить спор
// @Description Переводит спор из open в resolved.
// @Tags Disputes
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID спора"
// @Success 200 {object} response.Response "Спор разрешён"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Спор не найден"
// @Failure 409 {object} response.ErrorResponse "Спор уже разрешён"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /disputes/{uid}/resolve [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dispute.resolve"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		log.Error("missing dispute uid in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing dispute uid"))
		return
	}

	if err := h.service.Resolve(r.Context(), uid); err != nil {
		switch {
		case errors.Is(err, dispute.ErrNotFound):
			log.Error("dispute not found", slog.String("uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("dispute not found"))
		case errors.Is(err, dispute.ErrAlreadyResolved):
			log.Error("dispute already resolved", slog.String("uid", uid))
			w.WriteHeader(http.StatusConflict)
			render.JSON(w, r, response.Error("dispute already resolved"))
		default:
			log.Error("failed to resolve dispute", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not resolve dispute"))
		}
		return
	}

	log.Info("dispute resolved", slog.String("uid", uid))
	render.JSON(w, r, response.OK())
}
