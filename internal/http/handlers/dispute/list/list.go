package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/monyorojoseph/money-lock/internal/http/response"
	"github.com/monyorojoseph/money-lock/internal/lib/sl"
	"github.com/monyorojoseph/money-lock/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики листинга споров.
type Service interface {
	ListByAgreement(ctx context.Context, agreementUID string) ([]*models.Dispute, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить споры по соглашению
// @Description Возвращает споры указанного соглашения от новых к старым.
// @Tags Disputes
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "UID соглашения"
// @Success 200 {object} response.Response "Список споров"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /agreements/{uid}/disputes [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dispute.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	agreementUID := chi.URLParam(r, "uid")
	if agreementUID == "" {
		log.Error("missing agreement uid in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing agreement uid"))
		return
	}

	res, err := h.service.ListByAgreement(r.Context(), agreementUID)
	if err != nil {
		log.Error("failed to list disputes", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list"))
		return
	}

	log.Info("list disputes", "count", len(res))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(res),
		"disputes":   res,
	}))
}
