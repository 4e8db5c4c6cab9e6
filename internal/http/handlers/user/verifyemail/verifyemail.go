// Package verifyemail реализует HTTP-обработчик перехода по ссылке
// подтверждения почты. UID пользователя и токен приходят в пути запроса.
package verifyemail

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
	"github.com/monyorojoseph/money-lock/internal/services/user"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения почты.
type Service interface {
	VerifyEmail(ctx context.Context, userUID, token string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить почту по токену
// @Description Деактивирует токен и помечает почту пользователя подтверждённой.
// @Tags Users
// @Produce  json
// @Param userUID path string true "UID пользователя"
// @Param token path string true "Токен подтверждения"
// @Success 200 {object} response.Response "Почта подтверждена"
// @Failure 400 {object} response.ErrorResponse "Токен неверен или истёк"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /verification/verify_email/{userUID}/{token} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.verifyemail"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userUID")
	token := chi.URLParam(r, "token")
	if userUID == "" || token == "" {
		log.Error("missing user uid or token in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid verification link"))
		return
	}

	if err := h.service.VerifyEmail(r.Context(), userUID, token); err != nil {
		if errors.Is(err, user.ErrInvalidToken) {
			log.Error("invalid or expired verification token", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid or expired verification token"))
			return
		}
		log.Error("failed to verify email", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to verify email"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "email verified successfully",
	}))
}
