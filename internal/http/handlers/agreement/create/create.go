// Package create реализует HTTP-обработчик для создания платёжных соглашений.
//
// Handler принимает JSON-запрос с данными соглашения, валидирует их, извлекает
// UID продавца из контекста, вызывает бизнес-логику создания соглашения
// через сервис и возвращает UID созданной записи в JSON-формате.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
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
	"github.com/monyorojoseph/money-lock/internal/services/agreement"
)

// Handler управляет HTTP-запросами на создание соглашений.
//
// Использует логгер для записи операций и ошибок,
// сервис бизнес-логики для создания соглашения,
// а также валидатор для проверки структуры входных данных.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики для создания соглашений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания соглашения.
type Service interface {
	Create(ctx context.Context, sellerUID string, req models.DummyAgreement) (string, error)
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
// @Summary Создать новое соглашение
// @Description Создает платёжное соглашение от имени текущего пользователя как продавца. Возвращает UID созданной записи.
// @Tags Agreements
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyAgreement true "Данные нового соглашения"
// @Success 200 {object} map[string]any "Успешное создание соглашения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при создании соглашения"
// @Router /agreements [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.agreement.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAgreement
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("name", req.Name))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	sellerUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || sellerUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	uid, err := h.service.Create(r.Context(), sellerUID, req)
	if err != nil {
		if errors.Is(err, agreement.ErrInvalidAmount) {
			log.Error("invalid amount", slog.String("amount", req.Amount))
			w.WriteHeader(http.StatusUnprocessableEntity)
			render.JSON(w, r, response.Error("amount must be a non-negative decimal"))
			return
		}
		log.Error("failed to create agreement", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create agreement"))
		return
	}

	log.Info("success to create agreement", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid": uid,
	}))
}
